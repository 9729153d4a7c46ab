package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/assert"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/entities"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/event"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/reporting"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/translator"
)

const (
	maxEventBytes = 1 << 20
	flushTimeout  = 2 * time.Second
)

type Translator interface {
	Handle(ctx context.Context, records []entities.StorageRecord) (translator.Report, error)
}

type Handler struct {
	translator Translator
	reporter   reporting.Reporter
	log        zerolog.Logger
}

func New(tr Translator, reporter reporting.Reporter, log zerolog.Logger) *Handler {
	if reporter == nil {
		reporter = reporting.Nop{}
	}
	return &Handler{
		translator: tr,
		reporter:   reporter,
		log:        log.With().Str("component", "handler").Logger(),
	}
}

// Transcode is the Lambda entry point. It accepts either an S3 event or an
// SNS event wrapping one. Only precondition violations are returned as
// errors; per-record submission failures live in the report.
func (h *Handler) Transcode(ctx context.Context, raw json.RawMessage) (translator.Report, error) {
	defer reporting.Flush(h.reporter, flushTimeout)

	records, err := event.Decode(raw)
	if err != nil {
		h.log.Error().Err(err).Msg("rejecting event")
		h.reporter.Report(ctx, err, map[string]string{"stage": "decode"})
		return translator.Report{}, err
	}

	report, err := h.translator.Handle(ctx, records)
	if err != nil {
		h.log.Error().Err(err).Int("handled", len(report.Results)).Msg("event aborted")
		return report, err
	}

	h.log.Info().
		Strs("job_ids", report.JobIDs()).
		Int("failed", report.Failed).
		Msg("event handled")
	return report, nil
}

// ServeEvents runs Transcode on a raw event posted to the dev server.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		writeBodyError(w, err)
		return
	}

	report, err := h.Transcode(r.Context(), body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, assert.ErrPrecondition) {
			status = http.StatusUnprocessableEntity
		}
		writeJSONError(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
