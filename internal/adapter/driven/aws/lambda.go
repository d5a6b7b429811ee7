package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/go-faster/errors"

	"github.com/photoflow/photoflow-api/internal/core/port"
)

// LambdaAPI is the subset of the Lambda client used by LambdaTransport
type LambdaAPI interface {
	Invoke(ctx context.Context, in *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// LambdaTransport implements port.WorkerTransport with synchronous Lambda
// invocations. The client is shared by all requests.
type LambdaTransport struct {
	client LambdaAPI
}

// NewLambdaTransport creates a new Lambda transport
func NewLambdaTransport(client LambdaAPI) *LambdaTransport {
	return &LambdaTransport{client: client}
}

// Invoke calls a function with RequestResponse semantics
func (t *LambdaTransport) Invoke(ctx context.Context, function string, payload []byte) (*port.InvokeResult, error) {
	out, err := t.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(function),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invoke %s", function)
	}

	return &port.InvokeResult{
		StatusCode:    int(out.StatusCode),
		FunctionError: aws.ToString(out.FunctionError),
		Payload:       out.Payload,
	}, nil
}
