package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/app"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
	"github.com/ytakada1021/video-convert-aws-lambda/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg := logger.New(cfg, "transcoder")

	a, err := app.New(context.Background(), cfg, lg)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to initialise")
	}

	lambda.Start(a.Handler.Transcode)
}
