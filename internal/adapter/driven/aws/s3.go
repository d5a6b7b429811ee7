package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/observability"
)

// Function names served in-process by ObjectFunctions
const (
	FunctionDeleteObject    = "s3:delete-object"
	FunctionDeleteThumbnail = "s3:delete-thumbnail"
)

// S3API is the subset of the S3 client used by ObjectFunctions
type S3API interface {
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ObjectFunctions serves the storage delete steps without a remote worker.
// It speaks the same request and response envelopes as the worker functions,
// so the invoker cannot tell the difference.
type ObjectFunctions struct {
	client        S3API
	photoBucket   string
	resizedBucket string
}

// NewObjectFunctions creates in-process delete functions over two buckets
func NewObjectFunctions(client S3API, photoBucket, resizedBucket string) *ObjectFunctions {
	return &ObjectFunctions{
		client:        client,
		photoBucket:   photoBucket,
		resizedBucket: resizedBucket,
	}
}

// Invoke implements port.WorkerTransport. Delete failures are reported in
// the envelope, not as transport errors.
func (f *ObjectFunctions) Invoke(ctx context.Context, function string, payload []byte) (*port.InvokeResult, error) {
	key, err := requestKey(payload)
	if err != nil {
		return nil, errors.Wrap(err, "decode request")
	}

	var bucket, object string
	switch function {
	case FunctionDeleteObject:
		bucket, object = f.photoBucket, key.Key
	case FunctionDeleteThumbnail:
		bucket, object = f.resizedBucket, key.ThumbnailKey()
	default:
		return nil, errors.Wrapf(domain.ErrWorkerUnavailable, "unknown function %q", function)
	}

	logger := observability.WithContext(ctx).With("bucket", bucket, "object", object)

	_, err = f.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		logger.Error("delete object failed", "error", err)
		return &port.InvokeResult{
			StatusCode: 200,
			Payload:    responseEnvelope(500, fmt.Sprintf("Error deleting %s from %s: %v", object, bucket, err)),
		}, nil
	}

	logger.Info("object deleted")
	return &port.InvokeResult{
		StatusCode: 200,
		Payload:    responseEnvelope(200, fmt.Sprintf("Deleted %s from %s", object, bucket)),
	}, nil
}

// requestKey extracts the key from {"body": "<json with key>"}
func requestKey(payload []byte) (domain.ResourceKey, error) {
	var body string
	if err := jx.DecodeBytes(payload).ObjBytes(func(d *jx.Decoder, k []byte) error {
		if string(k) != "body" {
			return d.Skip()
		}
		s, err := d.Str()
		body = s
		return err
	}); err != nil {
		return domain.ResourceKey{}, err
	}

	var key domain.ResourceKey
	if err := jx.DecodeStr(body).ObjBytes(func(d *jx.Decoder, k []byte) error {
		if string(k) != "key" {
			return d.Skip()
		}
		s, err := d.Str()
		key.Key = s
		return err
	}); err != nil {
		return domain.ResourceKey{}, err
	}

	if key.IsEmpty() {
		return domain.ResourceKey{}, domain.ErrMissingKey
	}
	return key, nil
}

func responseEnvelope(status int, body string) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("statusCode", func(e *jx.Encoder) { e.Int(status) })
		e.Field("body", func(e *jx.Encoder) { e.Str(body) })
		e.Field("headers", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("Content-Type", func(e *jx.Encoder) { e.Str("text/plain") })
			})
		})
	})
	return e.Bytes()
}
