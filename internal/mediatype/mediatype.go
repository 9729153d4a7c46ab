// Package mediatype decides whether an uploaded object is a video the
// transcoder should pick up.
package mediatype

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/pathinfo"
)

const Unknown = "application/octet-stream"

// SniffLen is how many leading bytes of an object Detect needs.
const SniffLen = 3072

var byExtension = map[string]string{
	"mp4":  "video/mp4",
	"m4v":  "video/x-m4v",
	"mov":  "video/quicktime",
	"qt":   "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"webm": "video/webm",
	"mpg":  "video/mpeg",
	"mpeg": "video/mpeg",
	"3gp":  "video/3gpp",
	"flv":  "video/x-flv",
	"ts":   "video/mp2t",
	"m2ts": "video/mp2t",
	"wmv":  "video/x-ms-wmv",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
	"txt":  "text/plain",
	"json": "application/json",
	"pdf":  "application/pdf",
	"m3u8": "application/vnd.apple.mpegurl",
}

// ByExtension maps the extension of key to a MIME type.
func ByExtension(key string) string {
	ext := strings.ToLower(pathinfo.Extension(key))
	if mt, ok := byExtension[ext]; ok {
		return mt
	}
	return Unknown
}

// Detect sniffs the MIME type from the first SniffLen bytes of r.
func Detect(r io.Reader) (string, error) {
	m, err := mimetype.DetectReader(io.LimitReader(r, SniffLen))
	if err != nil {
		return "", fmt.Errorf("detect media type: %w", err)
	}
	// mimetype appends parameters for text types ("text/plain; charset=utf-8").
	mt, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(mt), nil
}

// AllowList is the set of MIME types eligible for conversion.
type AllowList map[string]struct{}

var defaultVideoMIMEs = []string{
	"video/mp4",
	"video/quicktime",
	"video/x-msvideo",
	"video/x-matroska",
	"video/webm",
	"video/mpeg",
	"video/x-m4v",
	"video/3gpp",
	"video/x-flv",
	"video/mp2t",
}

func NewAllowList(mimes ...string) AllowList {
	l := make(AllowList, len(mimes))
	for _, m := range mimes {
		l[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return l
}

// DefaultAllowList returns the video types MediaConvert accepts as input.
func DefaultAllowList() AllowList {
	return NewAllowList(defaultVideoMIMEs...)
}

func (l AllowList) Allowed(mimeType string) bool {
	_, ok := l[strings.ToLower(mimeType)]
	return ok
}
