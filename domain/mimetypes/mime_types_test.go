package mimetypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Minimal valid headers are enough for magic-number sniffing.
var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		want  MIME
		image bool
	}{
		{"PNG", pngHeader, ImagePNG, true},
		{"GIF", gifHeader, ImageGIF, true},
		{"JPEG", jpegHeader, ImageJPEG, true},
		{"Empty content", nil, OctetStream, false},
		{"Plain text", []byte("hello there"), MIME("text/plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got := Detect(tt.data)
			req.Equal(tt.want, got)
			req.Equal(tt.image, got.IsImage())
		})
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"PNG", "image/png", ImagePNG, true},
		{"JPEG", "image/jpeg", ImageJPEG, true},
		{"GIF", "image/gif", ImageGIF, true},
		{"Parameters are ignored", "image/svg+xml; charset=utf-8", ImageSVG, true},
		{"Mismatch", "image/png", ImageGIF, false},
		{"Invalid MIME", "not a mime", ImagePNG, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Matches(tt.detected, tt.expected)
			require.Equal(t, tt.want, ok)
		})
	}
}
