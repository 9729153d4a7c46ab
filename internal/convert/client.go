// Package convert submits transcoding jobs to AWS Elemental MediaConvert.
package convert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/mediaconvert"
	"github.com/rs/zerolog"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/entities"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/metrics"
)

var ErrNoJob = errors.New("mediaconvert returned no job")

// API is the subset of *mediaconvert.Client the submitter calls.
type API interface {
	CreateJob(ctx context.Context, params *mediaconvert.CreateJobInput, optFns ...func(*mediaconvert.Options)) (*mediaconvert.CreateJobOutput, error)
}

type Client struct {
	api API
	log zerolog.Logger
}

// NewClient builds a MediaConvert client. endpoint is the account specific
// endpoint; when empty the SDK resolves the regional one.
func NewClient(awsCfg aws.Config, endpoint string, log zerolog.Logger) *Client {
	api := mediaconvert.NewFromConfig(awsCfg, func(o *mediaconvert.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewWithAPI(api, log)
}

func NewWithAPI(api API, log zerolog.Logger) *Client {
	return &Client{
		api: api,
		log: log.With().Str("component", "mediaconvert").Logger(),
	}
}

// Submit creates a job and returns its ID.
func (c *Client) Submit(ctx context.Context, req entities.JobRequest) (string, error) {
	start := time.Now()
	out, err := c.api.CreateJob(ctx, BuildCreateJobInput(req))
	elapsed := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordSubmit("error", elapsed)
		return "", fmt.Errorf("create job for %s: %w", req.InputURI, err)
	}
	if out == nil || out.Job == nil {
		metrics.RecordSubmit("error", elapsed)
		return "", fmt.Errorf("create job for %s: %w", req.InputURI, ErrNoJob)
	}
	metrics.RecordSubmit("ok", elapsed)

	jobID := aws.ToString(out.Job.Id)
	c.log.Info().
		Str("job_id", jobID).
		Str("input", req.InputURI).
		Str("destination", req.Destination).
		Dur("elapsed", time.Since(start)).
		Msg("job submitted")
	return jobID, nil
}
