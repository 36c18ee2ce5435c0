package utils

import (
	"encoding/base64"
	"testing"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestDecodeMediaPayloadDataURL(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	data, ext, err := DecodeMediaPayload(payload)
	if err != nil {
		t.Fatalf("DecodeMediaPayload: %v", err)
	}
	if ext != "png" {
		t.Fatalf("extension = %q, want png", ext)
	}
	if len(data) != len(pngBytes) {
		t.Fatalf("decoded %d bytes, want %d", len(data), len(pngBytes))
	}
}

func TestDecodeMediaPayloadSniffsBarePayload(t *testing.T) {
	// No data URL wrapper, the extension has to come from the bytes.
	payload := base64.StdEncoding.EncodeToString(pngBytes)

	_, ext, err := DecodeMediaPayload(payload)
	if err != nil {
		t.Fatalf("DecodeMediaPayload: %v", err)
	}
	if ext != "png" {
		t.Fatalf("extension = %q, want png", ext)
	}
}

func TestDecodeMediaPayloadRejections(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"data url without base64 marker", "data:image/png,rawbytes"},
		{"invalid base64", "not-base64!!"},
		{"empty data url payload", "data:image/png;base64,"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := DecodeMediaPayload(tc.payload); err == nil {
				t.Fatalf("expected error for %q", tc.payload)
			}
		})
	}
}

func TestExtensionFromMime(t *testing.T) {
	cases := []struct {
		mimeType string
		want     string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpg"},
		{"image/jpg", "jpg"},
		{"image/webp", "webp"},
		{"IMAGE/GIF", "gif"},
		{"image/png; charset=utf-8", "png"},
		{"application/pdf", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtensionFromMime(tc.mimeType); got != tc.want {
			t.Errorf("ExtensionFromMime(%q) = %q, want %q", tc.mimeType, got, tc.want)
		}
	}
}

func TestSplitDataURL(t *testing.T) {
	if mimeType, payload := SplitDataURL("data:image/webp;base64,AAAA"); mimeType != "image/webp" || payload != "AAAA" {
		t.Fatalf("got (%q, %q)", mimeType, payload)
	}
	if mimeType, payload := SplitDataURL("AAAA"); mimeType != "" || payload != "AAAA" {
		t.Fatalf("bare payload: got (%q, %q)", mimeType, payload)
	}
}
