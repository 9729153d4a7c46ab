package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/transport/handler"
)

func main() {
	lambda.Start(handler.Hello)
}
