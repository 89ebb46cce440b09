package mimetypes

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown     MIME = "unknown"
	OctetStream MIME = "application/octet-stream"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWebP MIME = "image/webp"
	ImageSVG  MIME = "image/svg+xml"
)

// Detect sniffs the content type from the leading bytes of data.
func Detect(data []byte) MIME {
	if len(data) == 0 {
		return OctetStream
	}
	return ToMIME(mimetype.Detect(data).String())
}

// ToMIME drops media type parameters such as charset.
func ToMIME(detected string) MIME {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown
	}
	return MIME(mt)
}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt := ToMIME(detected)
	if mt == Unknown {
		return Unknown, false
	}
	return expected, mt == expected
}

func (m MIME) IsImage() bool {
	return strings.HasPrefix(string(m), "image/")
}

func (m MIME) String() string {
	return string(m)
}
