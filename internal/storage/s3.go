package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

var ErrEmptyObject = errors.New("object is empty")

// S3 reads the leading bytes of source objects so their media type can be
// sniffed without downloading whole videos.
type S3 struct {
	Downloader *manager.Downloader
	log        zerolog.Logger
}

func NewStorage(awsCfg aws.Config, log zerolog.Logger) *S3 {
	return NewWithAPI(s3.NewFromConfig(awsCfg), log)
}

// NewWithAPI wraps any GetObject implementation, which lets tests avoid S3.
func NewWithAPI(api manager.DownloadAPIClient, log zerolog.Logger) *S3 {
	return &S3{
		// A ranged download is always a single GET.
		Downloader: manager.NewDownloader(api, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
		log: log.With().Str("component", "s3-storage").Logger(),
	}
}

// ReadHead returns at most n leading bytes of bucket/key.
func (s *S3) ReadHead(ctx context.Context, bucket, key string, n int64) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("read head of %q: invalid length %d", key, n)
	}

	buf := manager.NewWriteAtBuffer(make([]byte, 0, n))
	written, err := s.Downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=0-%d", n-1)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download head of %q: %w", key, err)
	}
	if written == 0 {
		return nil, fmt.Errorf("read head of %q: %w", key, ErrEmptyObject)
	}

	head := buf.Bytes()
	if int64(len(head)) > n {
		head = head[:n]
	}
	s.log.Debug().Str("bucket", bucket).Str("key", key).Int("bytes", len(head)).Msg("read object head")
	return head, nil
}
