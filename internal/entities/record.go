package entities

import "time"

// StorageRecord is one object-created notification, already unwrapped from
// any SNS envelope.
type StorageRecord struct {
	EventName    string    `json:"event_name"`
	EventVersion string    `json:"event_version"`
	EventTime    time.Time `json:"event_time"`
	AWSRegion    string    `json:"aws_region"`
	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"` // URL-decoded
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	Sequencer    string    `json:"sequencer,omitempty"`
}

// URI returns the s3:// location of the object.
func (r StorageRecord) URI() string {
	return S3URI(r.Bucket, r.Key)
}

func S3URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
