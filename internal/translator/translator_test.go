package translator

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	preconditions "github.com/ytakada1021/video-convert-aws-lambda/internal/assert"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/entities"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeSubmitter struct {
	requests []entities.JobRequest
	errFor   map[string]error // keyed by input URI
}

func (f *fakeSubmitter) Submit(_ context.Context, req entities.JobRequest) (string, error) {
	f.requests = append(f.requests, req)
	if err, ok := f.errFor[req.InputURI]; ok {
		return "", err
	}
	return "job-" + req.InputURI, nil
}

type fakeHeads struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeHeads) ReadHead(_ context.Context, _, _ string, _ int64) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type fakeGuard struct {
	claimed  map[string]bool
	err      error
	released []string
}

func (g *fakeGuard) Claim(_ context.Context, id string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.claimed[id] {
		return false, nil
	}
	g.claimed[id] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, id string) error {
	g.released = append(g.released, id)
	delete(g.claimed, id)
	return nil
}

type fakeReporter struct {
	errs []error
}

func (r *fakeReporter) Report(_ context.Context, err error, _ map[string]string) {
	r.errs = append(r.errs, err)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func testConfig(mode string) *config.Config {
	cfg := &config.Config{}
	cfg.MediaConvert.Region = "ap-northeast-1"
	cfg.MediaConvert.RoleARN = "arn:aws:iam::123456789012:role/MediaConvertRole"
	cfg.MediaConvert.JobTemplate = "hls-360p"
	cfg.Buckets.Input = "in-bucket"
	cfg.Buckets.Output = "out-bucket"
	cfg.Buckets.OutputKeyMode = mode
	cfg.Filter.Enabled = true
	return cfg
}

func record(key string) entities.StorageRecord {
	return entities.StorageRecord{
		EventName:    "ObjectCreated:Put",
		EventVersion: ExpectedEventVersion,
		Bucket:       "in-bucket",
		Key:          key,
		Size:         1024,
		Sequencer:    "0062E99A88DC407460",
	}
}

func newTranslator(t *testing.T, cfg *config.Config, sub Submitter, opts ...Option) *Translator {
	t.Helper()
	tr, err := New(cfg, sub, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return tr
}

// ── New ───────────────────────────────────────────────────────────────────────

func TestNew_Preconditions(t *testing.T) {
	_, err := New(nil, &fakeSubmitter{}, zerolog.Nop())
	assert.ErrorIs(t, err, preconditions.ErrPrecondition)

	_, err = New(testConfig(config.KeyModeUnchanged), nil, zerolog.Nop())
	assert.ErrorIs(t, err, preconditions.ErrPrecondition)

	var nilSubmitter *fakeSubmitter
	_, err = New(testConfig(config.KeyModeUnchanged), nilSubmitter, zerolog.Nop())
	assert.ErrorIs(t, err, preconditions.ErrPrecondition)

	for _, mutate := range []func(*config.Config){
		func(c *config.Config) { c.MediaConvert.RoleARN = "" },
		func(c *config.Config) { c.MediaConvert.JobTemplate = "" },
		func(c *config.Config) { c.Buckets.Input = "" },
		func(c *config.Config) { c.Buckets.Output = "" },
		func(c *config.Config) { c.Buckets.OutputKeyMode = "filename" },
	} {
		cfg := testConfig(config.KeyModeUnchanged)
		mutate(cfg)
		_, err := New(cfg, &fakeSubmitter{}, zerolog.Nop())
		assert.ErrorIs(t, err, preconditions.ErrPrecondition)
	}
}

func TestNew_SniffNeedsReader(t *testing.T) {
	cfg := testConfig(config.KeyModeUnchanged)
	cfg.Filter.SniffContent = true

	_, err := New(cfg, &fakeSubmitter{}, zerolog.Nop())
	assert.ErrorIs(t, err, preconditions.ErrPrecondition)

	_, err = New(cfg, &fakeSubmitter{}, zerolog.Nop(), WithHeadReader(&fakeHeads{}))
	assert.NoError(t, err)
}

// ── Handle ────────────────────────────────────────────────────────────────────

func TestHandle_NoRecords(t *testing.T) {
	sub := &fakeSubmitter{}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub)

	report, err := tr.Handle(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, sub.requests)
	assert.Empty(t, report.Results)
}

func TestHandle_SkipsNonCreatedEvents(t *testing.T) {
	sub := &fakeSubmitter{}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub)

	rec := record("a/b.mp4")
	rec.EventName = "ObjectRemoved:Delete"

	report, err := tr.Handle(context.Background(), []entities.StorageRecord{rec})
	require.NoError(t, err)
	assert.Empty(t, sub.requests)
	require.Len(t, report.Results, 1)
	assert.Equal(t, OutcomeSkipped, report.Results[0].Outcome)
	assert.Equal(t, ReasonNotCreated, report.Results[0].Reason)
	assert.Equal(t, 1, report.Skipped)
}

func TestHandle_VersionMismatchStillSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub)

	rec := record("a/b.mp4")
	rec.EventVersion = "2.1"

	report, err := tr.Handle(context.Background(), []entities.StorageRecord{rec})
	require.NoError(t, err)
	require.Len(t, sub.requests, 1)
	assert.Equal(t, 1, report.Submitted)
}

func TestHandle_DestinationByKeyMode(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{mode: config.KeyModeStripExtension, want: "s3://out-bucket/a/b"},
		{mode: config.KeyModeUnchanged, want: "s3://out-bucket/a/b.mp4"},
		{mode: config.KeyModeStem, want: "s3://out-bucket/b"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			sub := &fakeSubmitter{}
			tr := newTranslator(t, testConfig(tt.mode), sub)

			report, err := tr.Handle(context.Background(), []entities.StorageRecord{record("a/b.mp4")})
			require.NoError(t, err)
			require.Len(t, sub.requests, 1)

			req := sub.requests[0]
			assert.Equal(t, tt.want, req.Destination)
			assert.Equal(t, "s3://in-bucket/a/b.mp4", req.InputURI)
			assert.Equal(t, "arn:aws:iam::123456789012:role/MediaConvertRole", req.Role)
			assert.Equal(t, "hls-360p", req.JobTemplate)
			assert.Equal(t, "a/b.mp4", req.Metadata["source_key"])
			assert.NotEmpty(t, req.Token)

			require.Len(t, report.Results, 1)
			assert.Equal(t, OutcomeSubmitted, report.Results[0].Outcome)
			assert.Equal(t, tt.want, report.Results[0].Destination)
			assert.Equal(t, "job-s3://in-bucket/a/b.mp4", report.Results[0].JobID)
		})
	}
}

func TestHandle_MediaTypeFilter(t *testing.T) {
	cfg := testConfig(config.KeyModeUnchanged)
	cfg.Filter.AllowList = []string{"video/quicktime"}
	sub := &fakeSubmitter{}
	tr := newTranslator(t, cfg, sub)

	report, err := tr.Handle(context.Background(), []entities.StorageRecord{
		record("in/clip.mov"),
		record("in/readme.txt"),
	})
	require.NoError(t, err)

	require.Len(t, sub.requests, 1)
	assert.Equal(t, "s3://in-bucket/in/clip.mov", sub.requests[0].InputURI)

	require.Len(t, report.Results, 2)
	assert.Equal(t, OutcomeSubmitted, report.Results[0].Outcome)
	assert.Equal(t, "video/quicktime", report.Results[0].MediaType)
	assert.Equal(t, OutcomeSkipped, report.Results[1].Outcome)
	assert.Equal(t, ReasonMediaType, report.Results[1].Reason)
	assert.Equal(t, "text/plain", report.Results[1].MediaType)
}

func TestHandle_FilterDisabled(t *testing.T) {
	cfg := testConfig(config.KeyModeUnchanged)
	cfg.Filter.Enabled = false
	sub := &fakeSubmitter{}
	tr := newTranslator(t, cfg, sub)

	_, err := tr.Handle(context.Background(), []entities.StorageRecord{record("in/readme.txt")})
	require.NoError(t, err)
	assert.Len(t, sub.requests, 1)
}

func TestHandle_BucketMismatchAborts(t *testing.T) {
	sub := &fakeSubmitter{}
	rep := &fakeReporter{}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub, WithReporter(rep))

	wrong := record("a/c.mp4")
	wrong.Bucket = "other-bucket"

	report, err := tr.Handle(context.Background(), []entities.StorageRecord{
		record("a/b.mp4"),
		wrong,
		record("a/d.mp4"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, preconditions.ErrPrecondition)
	assert.Contains(t, err.Error(), "other-bucket")

	assert.Len(t, sub.requests, 1, "records after the violation are not processed")
	assert.Equal(t, 1, report.Submitted)
	assert.Len(t, rep.errs, 1)
}

func TestHandle_IneligibleObjectSkippedBeforeBucketCheck(t *testing.T) {
	sub := &fakeSubmitter{}
	rep := &fakeReporter{}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub, WithReporter(rep))

	stray := record("notes/readme.txt")
	stray.Bucket = "other-bucket"

	report, err := tr.Handle(context.Background(), []entities.StorageRecord{stray, record("a/b.mp4")})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, OutcomeSkipped, report.Results[0].Outcome)
	assert.Equal(t, ReasonMediaType, report.Results[0].Reason)
	assert.Equal(t, OutcomeSubmitted, report.Results[1].Outcome)
	require.Len(t, sub.requests, 1)
	assert.Equal(t, "s3://in-bucket/a/b.mp4", sub.requests[0].InputURI)
	assert.Empty(t, rep.errs)
}

func TestHandle_SniffWaitsForBucketCheck(t *testing.T) {
	cfg := testConfig(config.KeyModeUnchanged)
	cfg.Filter.SniffContent = true
	heads := &fakeHeads{data: []byte("hello")}
	tr := newTranslator(t, cfg, &fakeSubmitter{}, WithHeadReader(heads))

	stray := record("uploads/clip.mp4")
	stray.Bucket = "other-bucket"

	_, err := tr.Handle(context.Background(), []entities.StorageRecord{stray})
	assert.ErrorIs(t, err, preconditions.ErrPrecondition)
	assert.Zero(t, heads.calls)
}

func TestHandle_EmptyKeyAborts(t *testing.T) {
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), &fakeSubmitter{})

	_, err := tr.Handle(context.Background(), []entities.StorageRecord{record("")})
	assert.ErrorIs(t, err, preconditions.ErrPrecondition)
}

func TestHandle_SubmitFailureContinues(t *testing.T) {
	apiErr := errors.New("TooManyRequestsException")
	sub := &fakeSubmitter{errFor: map[string]error{"s3://in-bucket/a/1.mp4": apiErr}}
	rep := &fakeReporter{}
	tr := newTranslator(t, testConfig(config.KeyModeStripExtension), sub, WithReporter(rep))

	report, err := tr.Handle(context.Background(), []entities.StorageRecord{
		record("a/1.mp4"),
		record("a/2.mp4"),
	})
	require.NoError(t, err)

	assert.Len(t, sub.requests, 2)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, OutcomeFailed, report.Results[0].Outcome)
	assert.ErrorIs(t, report.Results[0].Err, apiErr)
	assert.Equal(t, "TooManyRequestsException", report.Results[0].Error)
	assert.Equal(t, []string{"job-s3://in-bucket/a/2.mp4"}, report.JobIDs())
	assert.Equal(t, []error{apiErr}, rep.errs)
}

func TestHandle_Dedupe(t *testing.T) {
	sub := &fakeSubmitter{}
	guard := &fakeGuard{claimed: map[string]bool{}}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub, WithGuard(guard))

	rec := record("a/b.mp4")
	report, err := tr.Handle(context.Background(), []entities.StorageRecord{rec, rec})
	require.NoError(t, err)

	assert.Len(t, sub.requests, 1)
	assert.Equal(t, OutcomeSkipped, report.Results[1].Outcome)
	assert.Equal(t, ReasonDuplicate, report.Results[1].Reason)

	overwrite := rec
	overwrite.Sequencer = "0062E99A88DC407499"
	_, err = tr.Handle(context.Background(), []entities.StorageRecord{overwrite})
	require.NoError(t, err)
	assert.Len(t, sub.requests, 2, "a new write of the same key is not a duplicate")
}

func TestHandle_DedupeReleasedOnFailure(t *testing.T) {
	sub := &fakeSubmitter{errFor: map[string]error{"s3://in-bucket/a/b.mp4": errors.New("boom")}}
	guard := &fakeGuard{claimed: map[string]bool{}}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub, WithGuard(guard))

	_, err := tr.Handle(context.Background(), []entities.StorageRecord{record("a/b.mp4")})
	require.NoError(t, err)
	assert.Len(t, guard.released, 1)
	assert.Empty(t, guard.claimed)
}

func TestHandle_DedupeUnavailableSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	guard := &fakeGuard{err: errors.New("connection refused")}
	tr := newTranslator(t, testConfig(config.KeyModeUnchanged), sub, WithGuard(guard))

	report, err := tr.Handle(context.Background(), []entities.StorageRecord{record("a/b.mp4")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Submitted)
}

func TestHandle_Sniffing(t *testing.T) {
	mp4Head := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm',
		0x00, 0x00, 0x02, 0x00, 'i', 's', 'o', 'm', 'i', 's', 'o', '2'}

	cfg := testConfig(config.KeyModeUnchanged)
	cfg.Filter.SniffContent = true

	t.Run("content wins over extension", func(t *testing.T) {
		sub := &fakeSubmitter{}
		heads := &fakeHeads{data: mp4Head}
		tr := newTranslator(t, cfg, sub, WithHeadReader(heads))

		report, err := tr.Handle(context.Background(), []entities.StorageRecord{record("uploads/no-extension")})
		require.NoError(t, err)
		assert.Equal(t, 1, heads.calls)
		assert.Equal(t, "video/mp4", report.Results[0].MediaType)
		assert.Len(t, sub.requests, 1)
	})

	t.Run("text content is skipped", func(t *testing.T) {
		sub := &fakeSubmitter{}
		tr := newTranslator(t, cfg, sub, WithHeadReader(&fakeHeads{data: []byte("hello")}))

		report, err := tr.Handle(context.Background(), []entities.StorageRecord{record("uploads/fake.mp4")})
		require.NoError(t, err)
		assert.Empty(t, sub.requests)
		assert.Equal(t, ReasonMediaType, report.Results[0].Reason)
	})

	t.Run("read failure falls back to extension", func(t *testing.T) {
		sub := &fakeSubmitter{}
		tr := newTranslator(t, cfg, sub, WithHeadReader(&fakeHeads{err: errors.New("AccessDenied")}))

		_, err := tr.Handle(context.Background(), []entities.StorageRecord{record("uploads/clip.mov")})
		require.NoError(t, err)
		assert.Len(t, sub.requests, 1)
	})

	t.Run("empty object is not read", func(t *testing.T) {
		heads := &fakeHeads{data: mp4Head}
		tr := newTranslator(t, cfg, &fakeSubmitter{}, WithHeadReader(heads))

		rec := record("uploads/clip.mov")
		rec.Size = 0
		_, err := tr.Handle(context.Background(), []entities.StorageRecord{rec})
		require.NoError(t, err)
		assert.Zero(t, heads.calls)
	})
}

func TestRequestToken(t *testing.T) {
	a := record("a/b.mp4")
	b := a
	b.Sequencer = "other"

	assert.Equal(t, RequestToken(a), RequestToken(a))
	assert.NotEqual(t, RequestToken(a), RequestToken(b))
	assert.Len(t, RequestToken(a), 36)
}
