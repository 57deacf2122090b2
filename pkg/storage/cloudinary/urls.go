package cloudinary

import (
	"fmt"
	"strings"
)

const uploadSegment = "/image/upload/"

// TransformURL injects a fill-crop transformation into a delivery URL. URLs
// that are not Cloudinary delivery URLs, and zero dimensions, come back
// unchanged.
func TransformURL(rawURL string, width, height int) string {
	if width <= 0 || height <= 0 {
		return rawURL
	}
	idx := strings.Index(rawURL, uploadSegment)
	if idx < 0 {
		return rawURL
	}
	prefix := rawURL[:idx+len(uploadSegment)]
	rest := rawURL[idx+len(uploadSegment):]
	return fmt.Sprintf("%sw_%d,h_%d,c_fill/%s", prefix, width, height, rest)
}

// PublicIDFromURL extracts the asset public id from a delivery URL so the
// asset can be destroyed. Returns "" for foreign URLs.
func PublicIDFromURL(rawURL string) string {
	idx := strings.Index(rawURL, uploadSegment)
	if idx < 0 {
		return ""
	}
	rest := rawURL[idx+len(uploadSegment):]

	// Skip a leading transformation segment (contains commas or starts with
	// a version marker like v1234).
	if slash := strings.Index(rest, "/"); slash > 0 {
		head := rest[:slash]
		if strings.Contains(head, ",") || (strings.HasPrefix(head, "v") && isDigits(head[1:])) {
			rest = rest[slash+1:]
		}
	}

	if dot := strings.LastIndex(rest, "."); dot > strings.LastIndex(rest, "/") {
		rest = rest[:dot]
	}
	return rest
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
