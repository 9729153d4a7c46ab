// Package event turns Lambda payloads into storage records. Payloads are
// either S3 event notifications or SNS notifications whose Message holds an
// S3 event notification.
package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/assert"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/entities"
)

const (
	snsEventSource = "aws:sns"
	s3TestEvent    = "s3:TestEvent"
)

// envelope is decoded first to tell S3 records from SNS records.
type envelope struct {
	Records []json.RawMessage `json:"Records"`
}

type recordProbe struct {
	EventSource      string          `json:"EventSource"`
	EventSourceLower string          `json:"eventSource"`
	SNS              json.RawMessage `json:"Sns"`
}

// messageProbe tells an S3 notification apart from other messages published
// to the same topic. Records stays nil when the key is absent.
type messageProbe struct {
	Event   string            `json:"Event"`
	Records []json.RawMessage `json:"Records"`
}

func (p recordProbe) isSNS() bool {
	return len(p.SNS) > 0 || p.EventSource == snsEventSource || p.EventSourceLower == snsEventSource
}

// Decode parses a raw Lambda payload. A nil or "null" payload is a
// precondition violation; a payload without records decodes to none.
func Decode(raw []byte) ([]entities.StorageRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, assert.NotNil(nil, "event is required")
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", assert.IsTrue(false, err.Error()))
	}

	var out []entities.StorageRecord
	for i, rawRecord := range env.Records {
		var probe recordProbe
		if err := json.Unmarshal(rawRecord, &probe); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, assert.IsTrue(false, err.Error()))
		}

		if probe.isSNS() {
			var rec events.SNSEventRecord
			if err := json.Unmarshal(rawRecord, &rec); err != nil {
				return nil, fmt.Errorf("decode sns record %d: %w", i, assert.IsTrue(false, err.Error()))
			}
			inner, err := Unwrap(rec.SNS)
			if err != nil {
				return nil, fmt.Errorf("sns record %d: %w", i, err)
			}
			out = append(out, inner...)
			continue
		}

		var rec events.S3EventRecord
		if err := json.Unmarshal(rawRecord, &rec); err != nil {
			return nil, fmt.Errorf("decode s3 record %d: %w", i, assert.IsTrue(false, err.Error()))
		}
		out = append(out, FromS3Record(rec))
	}
	return out, nil
}

// Unwrap decodes the S3 event notification carried in an SNS message.
func Unwrap(msg events.SNSEntity) ([]entities.StorageRecord, error) {
	if err := assert.NotEmpty(strings.TrimSpace(msg.Message), "sns message is empty"); err != nil {
		return nil, err
	}

	var probe messageProbe
	if err := json.Unmarshal([]byte(msg.Message), &probe); err != nil {
		return nil, fmt.Errorf("sns message is not an s3 event: %w", assert.IsTrue(false, err.Error()))
	}
	if probe.Event == s3TestEvent {
		return nil, nil
	}
	if err := assert.IsTrue(probe.Records != nil, "sns message is not an s3 event"); err != nil {
		return nil, err
	}

	var inner events.S3Event
	if err := json.Unmarshal([]byte(msg.Message), &inner); err != nil {
		return nil, fmt.Errorf("sns message is not an s3 event: %w", assert.IsTrue(false, err.Error()))
	}
	return FromS3Event(inner), nil
}

func FromS3Event(e events.S3Event) []entities.StorageRecord {
	out := make([]entities.StorageRecord, 0, len(e.Records))
	for _, rec := range e.Records {
		out = append(out, FromS3Record(rec))
	}
	return out
}

// FromS3Record copies the fields the translator needs. Keys arrive
// URL-encoded in notifications; the decoded form is preferred.
func FromS3Record(rec events.S3EventRecord) entities.StorageRecord {
	key := rec.S3.Object.URLDecodedKey
	if key == "" {
		key = rec.S3.Object.Key
	}
	return entities.StorageRecord{
		EventName:    rec.EventName,
		EventVersion: rec.EventVersion,
		EventTime:    rec.EventTime,
		AWSRegion:    rec.AWSRegion,
		Bucket:       rec.S3.Bucket.Name,
		Key:          key,
		Size:         rec.S3.Object.Size,
		ETag:         rec.S3.Object.ETag,
		Sequencer:    rec.S3.Object.Sequencer,
	}
}

// IsObjectCreated reports whether name is an S3 object-created event. S3
// sends "ObjectCreated:Put"; configurations and test fixtures often carry the
// "s3:" prefix.
func IsObjectCreated(name string) bool {
	name = strings.TrimPrefix(name, "s3:")
	return strings.HasPrefix(name, "ObjectCreated:")
}
