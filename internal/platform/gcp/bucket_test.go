package gcp

import (
	"testing"

	"github.com/elemephant/backend/internal/platform/logger"
)

func TestPublicURLDefaultsToGCS(t *testing.T) {
	bs := &bucketService{log: logger.NewNop(), bucketName: "elemephant-media"}
	got := bs.PublicURL("H-123-trunk.jpg")
	want := "https://storage.googleapis.com/elemephant-media/H-123-trunk.jpg"
	if got != want {
		t.Fatalf("public url: want=%q got=%q", want, got)
	}
}

func TestPublicURLPrefersCDNDomain(t *testing.T) {
	bs := &bucketService{log: logger.NewNop(), bucketName: "elemephant-media", cdnDomain: "media.elemephant.dev"}
	got := bs.PublicURL("He-456-balloon.png")
	want := "https://media.elemephant.dev/He-456-balloon.png"
	if got != want {
		t.Fatalf("public url: want=%q got=%q", want, got)
	}
}

func TestPublicURLEmulatorMediaLink(t *testing.T) {
	bs := &bucketService{log: logger.NewNop(), bucketName: "elemephant-media", emulatorHost: "http://fake-gcs:4443"}
	got := bs.PublicURL("o-1-ox.png")
	want := "http://fake-gcs:4443/storage/v1/b/elemephant-media/o/o-1-ox.png?alt=media"
	if got != want {
		t.Fatalf("public url: want=%q got=%q", want, got)
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"H-1-a.jpg":          "image/jpeg",
		"H-1-a.JPEG":         "image/jpeg",
		"He-2-b.png":         "image/png",
		"li-3-c.webp":        "image/webp",
		"be-4-d.gif":         "image/gif",
		"b-5-e.svg":          "image/svg+xml",
		"c-6-f.png?x=1":      "image/png",
		"n-7-noextension":    "",
		"":                   "",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}
