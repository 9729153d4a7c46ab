// Package pathinfo decomposes "/" separated object keys. Nothing here
// touches the filesystem.
package pathinfo

import (
	"path"
	"strings"
)

// extDot returns the index of the extension dot in base, or -1.
// A leading dot (".env") does not start an extension.
func extDot(base string) int {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return -1
	}
	return i
}

func base(p string) string {
	b := path.Base(p)
	if b == "." || b == "/" {
		return ""
	}
	return b
}

// Dir returns everything but the last element of p ("." when p has no
// directory part).
func Dir(p string) string {
	return path.Dir(p)
}

// Filename returns the last element of p without its extension.
func Filename(p string) string {
	b := base(p)
	if i := extDot(b); i >= 0 {
		return b[:i]
	}
	return b
}

// Extension returns the extension of p without the leading dot.
func Extension(p string) string {
	b := base(p)
	if i := extDot(b); i >= 0 {
		return b[i+1:]
	}
	return ""
}

// WithoutExtension strips the extension from p and keeps the directory part
// byte for byte, so "a//b.mp4" becomes "a//b".
func WithoutExtension(p string) string {
	trimmed := strings.TrimRight(p, "/")
	b := base(trimmed)
	i := extDot(b)
	if i < 0 {
		return trimmed
	}
	return trimmed[:len(trimmed)-len(b)+i]
}
