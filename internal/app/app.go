package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/convert"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/dedupe"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/reporting"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/storage"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/transport/handler"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/transport/router"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/translator"
)

type App struct {
	Handler *handler.Handler

	cfg   *config.Config
	log   zerolog.Logger
	redis redis.UniversalClient
}

// New builds every client once; Lambda reuses them across warm invocations.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	reporter, err := reporting.New(&cfg.Sentry)
	if err != nil {
		return nil, err
	}

	awsCfg, err := cfg.LoadAWS(ctx)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log}
	opts := []translator.Option{translator.WithReporter(reporter)}

	if cfg.Filter.SniffContent {
		opts = append(opts, translator.WithHeadReader(storage.NewStorage(awsCfg, log)))
	}

	if cfg.Redis.Enabled() {
		rc, err := dedupe.Build(ctx, &cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; duplicate suppression disabled")
		} else {
			a.redis = rc
			opts = append(opts, translator.WithGuard(dedupe.NewGuard(cfg.Redis.Namespace, cfg.Redis.DedupeTTL, rc)))
		}
	}

	submitter := convert.NewClient(awsCfg, cfg.MediaConvert.Endpoint, log)
	tr, err := translator.New(cfg, submitter, log, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Handler = handler.New(tr, reporter, log)
	return a, nil
}

// Server returns the dev HTTP server.
func (a *App) Server() *http.Server {
	return &http.Server{
		Handler:      router.NewRouter(a.Handler),
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
}

func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn().Err(err).Msg("closing redis client")
		}
	}
}
