// Package translator turns S3 object-created records into MediaConvert jobs.
package translator

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/assert"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/dedupe"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/entities"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/event"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/mediatype"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/metrics"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/reporting"
)

// ExpectedEventVersion is the S3 notification schema version the
// translator was written against. Other versions are processed with a
// warning.
const ExpectedEventVersion = "2.2"

type Submitter interface {
	Submit(ctx context.Context, req entities.JobRequest) (string, error)
}

type HeadReader interface {
	ReadHead(ctx context.Context, bucket, key string, n int64) ([]byte, error)
}

type Guard interface {
	Claim(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
}

type Option func(*Translator)

// WithHeadReader enables content sniffing through r.
func WithHeadReader(r HeadReader) Option {
	return func(t *Translator) { t.heads = r }
}

// WithGuard enables duplicate suppression through g.
func WithGuard(g Guard) Option {
	return func(t *Translator) { t.guard = g }
}

func WithReporter(r reporting.Reporter) Option {
	return func(t *Translator) { t.reporter = r }
}

type Translator struct {
	role         string
	jobTemplate  string
	queue        string
	inputBucket  string
	outputBucket string
	keyMode      string

	filter    bool
	sniff     bool
	allowList mediatype.AllowList

	submitter Submitter
	heads     HeadReader
	guard     Guard
	reporter  reporting.Reporter
	log       zerolog.Logger
}

// New checks the configuration once; Handle never re-reads it.
func New(cfg *config.Config, submitter Submitter, log zerolog.Logger, opts ...Option) (*Translator, error) {
	if err := assert.NotNil(cfg, "config is required"); err != nil {
		return nil, err
	}
	if err := assert.NotNil(submitter, "submitter is required"); err != nil {
		return nil, err
	}
	checks := []struct{ value, name string }{
		{cfg.MediaConvert.RoleARN, "MEDIA_CONVERT_EXECUTION_ROLE_ARN"},
		{cfg.MediaConvert.JobTemplate, "MEDIA_CONVERT_JOB_TEMPLATE_NAME"},
		{cfg.Buckets.Input, "INPUT_S3_BUCKET_NAME"},
		{cfg.Buckets.Output, "OUTPUT_S3_BUCKET_NAME"},
	}
	for _, c := range checks {
		if err := assert.NotEmpty(c.value, c.name+" is required"); err != nil {
			return nil, err
		}
	}
	if _, err := DeriveKey(cfg.Buckets.OutputKeyMode, "probe.mp4"); err != nil {
		return nil, assert.IsTrue(false, err.Error())
	}

	allow := mediatype.DefaultAllowList()
	if len(cfg.Filter.AllowList) > 0 {
		allow = mediatype.NewAllowList(cfg.Filter.AllowList...)
	}

	t := &Translator{
		role:         cfg.MediaConvert.RoleARN,
		jobTemplate:  cfg.MediaConvert.JobTemplate,
		queue:        cfg.MediaConvert.Queue,
		inputBucket:  cfg.Buckets.Input,
		outputBucket: cfg.Buckets.Output,
		keyMode:      cfg.Buckets.OutputKeyMode,
		filter:       cfg.Filter.Enabled,
		sniff:        cfg.Filter.SniffContent,
		allowList:    allow,
		submitter:    submitter,
		reporter:     reporting.Nop{},
		log:          log.With().Str("component", "translator").Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.sniff && t.heads == nil {
		return nil, assert.IsTrue(false, "MEDIA_TYPE_SNIFF needs an object reader")
	}
	return t, nil
}

// Handle processes records in order. Submission failures are recorded in
// the report and do not stop the loop; a precondition violation (a record
// from an unexpected bucket) aborts and is returned with the partial report.
func (t *Translator) Handle(ctx context.Context, records []entities.StorageRecord) (Report, error) {
	var report Report
	for _, rec := range records {
		res, err := t.handleRecord(ctx, rec)
		if err != nil {
			t.reporter.Report(ctx, err, map[string]string{"bucket": rec.Bucket, "key": rec.Key})
			return report, err
		}
		metrics.RecordOutcome(string(res.Outcome), res.Reason)
		report.add(res)
	}

	t.log.Info().
		Int("records", len(records)).
		Int("submitted", report.Submitted).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("records handled")
	return report, nil
}

func (t *Translator) handleRecord(ctx context.Context, rec entities.StorageRecord) (Result, error) {
	log := t.log.With().Str("bucket", rec.Bucket).Str("key", rec.Key).Logger()
	res := Result{Bucket: rec.Bucket, Key: rec.Key}

	if !event.IsObjectCreated(rec.EventName) {
		log.Debug().Str("event_name", rec.EventName).Msg("skipping non object-created event")
		res.Outcome, res.Reason = OutcomeSkipped, ReasonNotCreated
		return res, nil
	}

	if rec.EventVersion != ExpectedEventVersion {
		metrics.RecordVersionMismatch(rec.EventVersion)
		log.Warn().
			Str("expected", ExpectedEventVersion).
			Str("actual", rec.EventVersion).
			Msg("processing an event with an unexpected S3 event version; consider supporting it")
	}

	if err := assert.NotEmpty(rec.Bucket, "record has no bucket name"); err != nil {
		return res, err
	}
	if err := assert.NotEmpty(rec.Key, "record has no object key"); err != nil {
		return res, err
	}

	// The extension check runs before the bucket assertion so an ineligible
	// object is skipped wherever it came from. Sniffing reads the object and
	// waits until the bucket is known to be ours.
	if t.filter {
		res.MediaType = mediatype.ByExtension(rec.Key)
		if !t.sniff && !t.allowList.Allowed(res.MediaType) {
			return t.skipMediaType(res, log), nil
		}
	}

	if err := assert.IsTrue(rec.Bucket == t.inputBucket,
		fmt.Sprintf("event bucket %q does not match input bucket %q", rec.Bucket, t.inputBucket)); err != nil {
		return res, err
	}

	if t.filter && t.sniff {
		res.MediaType = t.sniffMediaType(ctx, rec, res.MediaType, log)
		if !t.allowList.Allowed(res.MediaType) {
			return t.skipMediaType(res, log), nil
		}
	}

	req, err := t.buildRequest(rec)
	if err != nil {
		return res, err
	}
	res.Destination = req.Destination

	var claimID string
	if t.guard != nil {
		id := dedupe.RecordID(rec)
		claimed, err := t.guard.Claim(ctx, id)
		switch {
		case err != nil:
			// ClientRequestToken still makes a resubmission within MediaConvert's window a no-op.
			log.Warn().Err(err).Msg("dedupe claim failed; submitting anyway")
		case !claimed:
			log.Info().Msg("skipping duplicate notification")
			res.Outcome, res.Reason = OutcomeSkipped, ReasonDuplicate
			return res, nil
		default:
			claimID = id
		}
	}

	jobID, err := t.submitter.Submit(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("job submission failed")
		t.reporter.Report(ctx, err, map[string]string{"bucket": rec.Bucket, "key": rec.Key})
		if claimID != "" {
			if relErr := t.guard.Release(ctx, claimID); relErr != nil {
				log.Warn().Err(relErr).Msg("failed to release dedupe claim")
			}
		}
		res.Outcome, res.Err = OutcomeFailed, err
		return res, nil
	}

	res.Outcome, res.JobID = OutcomeSubmitted, jobID
	return res, nil
}

func (t *Translator) skipMediaType(res Result, log zerolog.Logger) Result {
	log.Info().Str("media_type", res.MediaType).Msg("skipping object not eligible for conversion")
	res.Outcome, res.Reason = OutcomeSkipped, ReasonMediaType
	return res
}

func (t *Translator) sniffMediaType(ctx context.Context, rec entities.StorageRecord, fallback string, log zerolog.Logger) string {
	if rec.Size == 0 {
		return fallback
	}
	head, err := t.heads.ReadHead(ctx, rec.Bucket, rec.Key, mediatype.SniffLen)
	if err != nil {
		log.Warn().Err(err).Msg("content sniffing failed; using extension")
		return fallback
	}
	mt, err := mediatype.Detect(bytes.NewReader(head))
	if err != nil || mt == mediatype.Unknown {
		return fallback
	}
	return mt
}

func (t *Translator) buildRequest(rec entities.StorageRecord) (entities.JobRequest, error) {
	outKey, err := DeriveKey(t.keyMode, rec.Key)
	if err != nil {
		return entities.JobRequest{}, err
	}
	if outKey == "" {
		return entities.JobRequest{}, assert.IsTrue(false, fmt.Sprintf("derived output key for %q is empty", rec.Key))
	}

	return entities.JobRequest{
		Role:        t.role,
		JobTemplate: t.jobTemplate,
		Queue:       t.queue,
		InputURI:    rec.URI(),
		Destination: entities.S3URI(t.outputBucket, outKey),
		Token:       RequestToken(rec),
		Metadata: map[string]string{
			"source_bucket": rec.Bucket,
			"source_key":    rec.Key,
		},
	}, nil
}

// RequestToken is a stable ClientRequestToken for rec, so redelivered
// notifications map onto the same MediaConvert request.
func RequestToken(rec entities.StorageRecord) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(rec.URI()+"#"+rec.Sequencer)).String()
}
