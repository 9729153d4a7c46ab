package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/assert"
)

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// FromMap reads the configuration from vars instead of the process
// environment.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Buckets.Input = strings.TrimSpace(cfg.Buckets.Input)
	cfg.Buckets.Output = strings.TrimSpace(cfg.Buckets.Output)
	cfg.Buckets.OutputKeyMode = strings.ToLower(strings.TrimSpace(cfg.Buckets.OutputKeyMode))
	cfg.MediaConvert.Endpoint = strings.TrimSpace(cfg.MediaConvert.Endpoint)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values once so handlers never re-check them per
// record. Failures wrap assert.ErrPrecondition.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	fields := validationErrorsToMap(verrs)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+fields[name])
	}
	return fmt.Errorf("invalid config: %w", assert.IsTrue(false, strings.Join(parts, "; ")))
}

func validationErrorsToMap(verrs validator.ValidationErrors) map[string]string {
	errs := map[string]string{}
	for _, e := range verrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			errs[field] = "is required"
		case "oneof":
			errs[field] = fmt.Sprintf("must be one of [%s]", e.Param())
		case "url":
			errs[field] = "must be a URL"
		default:
			errs[field] = "invalid value"
		}
	}
	return errs
}
