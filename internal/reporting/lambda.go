package reporting

import (
	"context"

	"github.com/aws/aws-lambda-go/lambdacontext"
)

func requestID(ctx context.Context) (string, bool) {
	lc, ok := lambdacontext.FromContext(ctx)
	if !ok || lc.AwsRequestID == "" {
		return "", false
	}
	return lc.AwsRequestID, true
}
