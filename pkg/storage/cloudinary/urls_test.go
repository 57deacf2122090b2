package cloudinary

import "testing"

func TestTransformURLInjectsFillCrop(t *testing.T) {
	in := "https://res.cloudinary.com/demo/image/upload/tablemate/abc.png"
	got := TransformURL(in, 320, 240)
	want := "https://res.cloudinary.com/demo/image/upload/w_320,h_240,c_fill/tablemate/abc.png"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestTransformURLLeavesForeignURLs(t *testing.T) {
	in := "https://example.com/avatar.png"
	if got := TransformURL(in, 100, 100); got != in {
		t.Fatalf("foreign url changed: %q", got)
	}
	if got := TransformURL(in, 0, 0); got != in {
		t.Fatalf("zero dimensions changed url: %q", got)
	}
}

func TestPublicIDFromURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/tablemate/abc.png", "tablemate/abc"},
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/tablemate/abc.png", "tablemate/abc"},
		{"https://res.cloudinary.com/demo/image/upload/w_320,h_240,c_fill/tablemate/abc.png", "tablemate/abc"},
		{"https://example.com/avatar.png", ""},
	}
	for _, tc := range cases {
		if got := PublicIDFromURL(tc.in); got != tc.want {
			t.Fatalf("PublicIDFromURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
