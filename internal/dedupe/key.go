package dedupe

import (
	"crypto/sha1"
	"encoding/base64"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/entities"
)

// RecordID identifies a notification. The sequencer changes for every write
// of a key, so overwriting an object yields a new ID.
func RecordID(r entities.StorageRecord) string {
	sum := sha1.Sum([]byte(r.Bucket + "\x00" + r.Key + "\x00" + r.Sequencer))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
