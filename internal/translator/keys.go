package translator

import (
	"fmt"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/pathinfo"
)

// DeriveKey maps a source key to the output key prefix for mode.
//
//	unchanged        a/b.mp4 -> a/b.mp4
//	strip-extension  a/b.mp4 -> a/b
//	stem             a/b.mp4 -> b
func DeriveKey(mode, key string) (string, error) {
	switch mode {
	case config.KeyModeUnchanged:
		return key, nil
	case config.KeyModeStripExtension:
		return pathinfo.WithoutExtension(key), nil
	case config.KeyModeStem:
		return pathinfo.Filename(key), nil
	default:
		return "", fmt.Errorf("unknown output key mode %q", mode)
	}
}
