package cloudinary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testClient(apiBase string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		cloudName:  "demo",
		apiKey:     "key",
		apiSecret:  "secret",
		folder:     "tablemate",
		apiBase:    apiBase,
		now:        func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func TestSignParamsSortsKeys(t *testing.T) {
	a := signParams(map[string]string{"timestamp": "1", "folder": "f"}, "secret")
	b := signParams(map[string]string{"folder": "f", "timestamp": "1"}, "secret")
	if a != b {
		t.Fatalf("signature should not depend on map order: %s vs %s", a, b)
	}
	if len(a) != 40 {
		t.Fatalf("expected sha1 hex signature, got %q", a)
	}
}

func TestUploadPostsSignedMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/image/upload" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("api_key") != "key" {
			t.Errorf("missing api_key field")
		}
		if r.FormValue("signature") == "" {
			t.Errorf("missing signature field")
		}
		if r.FormValue("folder") != "tablemate" {
			t.Errorf("missing folder field")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"tablemate/abc","secure_url":"https://res.cloudinary.com/demo/image/upload/tablemate/abc.png","width":800,"height":600,"format":"png","bytes":1234}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	result, err := c.Upload(context.Background(), "avatar.png", strings.NewReader("not-a-real-png"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.PublicID != "tablemate/abc" {
		t.Fatalf("unexpected public id %q", result.PublicID)
	}
	if result.Width != 800 || result.Height != 600 {
		t.Fatalf("unexpected dimensions %dx%d", result.Width, result.Height)
	}
}

func TestDestroyAcceptsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/demo/image/destroy" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("public_id") != "tablemate/abc" {
			t.Errorf("missing public_id")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"not found"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if err := c.Destroy(context.Background(), "tablemate/abc"); err != nil {
		t.Fatalf("destroy: %v", err)
	}
}

func TestDestroyRejectsUnknownResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"error"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if err := c.Destroy(context.Background(), "tablemate/abc"); err == nil {
		t.Fatalf("expected destroy error")
	}
}

func TestDeliveryURL(t *testing.T) {
	c := testClient(apiBase)
	plain := c.DeliveryURL("tablemate/abc", 0, 0)
	if plain != "https://res.cloudinary.com/demo/image/upload/tablemate/abc" {
		t.Fatalf("unexpected url %q", plain)
	}
	sized := c.DeliveryURL("tablemate/abc", 320, 240)
	if sized != "https://res.cloudinary.com/demo/image/upload/w_320,h_240,c_fill/tablemate/abc" {
		t.Fatalf("unexpected url %q", sized)
	}
}
