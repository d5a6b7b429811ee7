package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoflow/photoflow-api/internal/config"
	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/internal/core/service"
	"github.com/photoflow/photoflow-api/internal/core/service/mocks"
)

type fakeS3 struct {
	deleted [][2]string
	err     error
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, [2]string{aws.ToString(in.Bucket), aws.ToString(in.Key)})
	return &s3.DeleteObjectOutput{}, nil
}

type fakeLambda struct {
	input *lambda.InvokeInput
	out   *lambda.InvokeOutput
	err   error
}

func (f *fakeLambda) Invoke(ctx context.Context, in *lambda.InvokeInput, _ ...func(*lambda.Options)) (*lambda.InvokeOutput, error) {
	f.input = in
	return f.out, f.err
}

type fakeSSM struct {
	value *string
	err   error
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Name: in.Name, Value: f.value}}, nil
}

func deletePayload(t *testing.T, key string) []byte {
	t.Helper()
	payload, err := service.NewRequestEnvelope(domain.NewDeleteRequest(key, "alice@example.com", "token"))
	require.NoError(t, err)
	return payload
}

func TestObjectFunctions_Invoke(t *testing.T) {
	t.Run("deletes the original object", func(t *testing.T) {
		client := &fakeS3{}
		f := NewObjectFunctions(client, "photos", "photos-resized")

		res, err := f.Invoke(context.Background(), FunctionDeleteObject, deletePayload(t, "cat.png"))

		require.NoError(t, err)
		assert.Equal(t, [][2]string{{"photos", "cat.png"}}, client.deleted)
		assert.True(t, service.ClassifyResponse(res, false).IsSuccess())
	})

	t.Run("deletes the resized copy", func(t *testing.T) {
		client := &fakeS3{}
		f := NewObjectFunctions(client, "photos", "photos-resized")

		res, err := f.Invoke(context.Background(), FunctionDeleteThumbnail, deletePayload(t, "cat.png"))

		require.NoError(t, err)
		assert.Equal(t, [][2]string{{"photos-resized", "resized-cat.png"}}, client.deleted)
		assert.True(t, service.ClassifyResponse(res, false).IsSuccess())
	})

	t.Run("reports delete errors in the envelope", func(t *testing.T) {
		client := &fakeS3{err: errors.New("AccessDenied")}
		f := NewObjectFunctions(client, "photos", "photos-resized")

		res, err := f.Invoke(context.Background(), FunctionDeleteObject, deletePayload(t, "cat.png"))

		require.NoError(t, err)
		assert.True(t, service.ClassifyResponse(res, false).IsFailure())
	})

	t.Run("rejects unknown functions", func(t *testing.T) {
		f := NewObjectFunctions(&fakeS3{}, "photos", "photos-resized")

		_, err := f.Invoke(context.Background(), "s3:rename", deletePayload(t, "cat.png"))

		assert.ErrorIs(t, err, domain.ErrWorkerUnavailable)
	})

	t.Run("rejects payload without key", func(t *testing.T) {
		f := NewObjectFunctions(&fakeS3{}, "photos", "photos-resized")

		_, err := f.Invoke(context.Background(), FunctionDeleteObject, []byte(`{"body":"{}"}`))

		assert.ErrorIs(t, err, domain.ErrMissingKey)
	})
}

func TestRouter_Invoke(t *testing.T) {
	remote := mocks.NewMockWorkerTransport()
	local := mocks.NewMockWorkerTransport()
	r := NewRouter(remote).Route(FunctionDeleteObject, local)

	_, err := r.Invoke(context.Background(), FunctionDeleteObject, []byte(`{}`))
	require.NoError(t, err)
	_, err = r.Invoke(context.Background(), "delete-photo-db", []byte(`{}`))
	require.NoError(t, err)

	assert.Contains(t, local.Payloads, FunctionDeleteObject)
	assert.Contains(t, remote.Payloads, "delete-photo-db")
	assert.NotContains(t, remote.Payloads, FunctionDeleteObject)

	t.Run("without fallback", func(t *testing.T) {
		_, err := NewRouter(nil).Invoke(context.Background(), "anything", nil)

		assert.ErrorIs(t, err, domain.ErrWorkerUnavailable)
	})
}

func TestLambdaTransport_Invoke(t *testing.T) {
	t.Run("maps invocation output", func(t *testing.T) {
		client := &fakeLambda{out: &lambda.InvokeOutput{
			StatusCode:    200,
			FunctionError: aws.String("Unhandled"),
			Payload:       []byte(`{"errorMessage":"boom"}`),
		}}
		transport := NewLambdaTransport(client)

		res, err := transport.Invoke(context.Background(), "add-photo-db", []byte(`{}`))

		require.NoError(t, err)
		assert.Equal(t, &port.InvokeResult{StatusCode: 200, FunctionError: "Unhandled", Payload: []byte(`{"errorMessage":"boom"}`)}, res)
		assert.Equal(t, "add-photo-db", aws.ToString(client.input.FunctionName))
		assert.Equal(t, "RequestResponse", string(client.input.InvocationType))
	})

	t.Run("wraps client errors", func(t *testing.T) {
		transport := NewLambdaTransport(&fakeLambda{err: errors.New("throttled")})

		_, err := transport.Invoke(context.Background(), "add-photo-db", nil)

		assert.ErrorContains(t, err, "invoke add-photo-db")
	})
}

func TestParameterStore_Get(t *testing.T) {
	t.Run("returns decrypted value", func(t *testing.T) {
		store := NewParameterStore(&fakeSSM{value: aws.String("s3cret")})

		value, err := store.Get(context.Background(), "keytokenhash")

		require.NoError(t, err)
		assert.Equal(t, "s3cret", value)
	})

	t.Run("missing value", func(t *testing.T) {
		store := NewParameterStore(&fakeSSM{})

		_, err := store.Get(context.Background(), "keytokenhash")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("client error", func(t *testing.T) {
		store := NewParameterStore(&fakeSSM{err: errors.New("ParameterNotFound")})

		_, err := store.Get(context.Background(), "keytokenhash")

		assert.Error(t, err)
	})
}

func TestWorkers(t *testing.T) {
	clients := NewClients(aws.Config{Region: "us-east-1"})

	t.Run("lambda mode keeps configured names", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Mode = config.StorageModeLambda
		cfg.Workers.DeleteObject = "delete-objects"

		_, names := Workers(clients, cfg)

		assert.Equal(t, "delete-objects", names[domain.WorkerDeleteObject])
	})

	t.Run("s3 mode serves object deletes in-process", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Mode = config.StorageModeS3
		cfg.Workers.DeleteObject = "delete-objects"
		cfg.Workers.DeleteRecord = "delete-photo-db"

		_, names := Workers(clients, cfg)

		assert.Equal(t, FunctionDeleteObject, names[domain.WorkerDeleteObject])
		assert.Equal(t, FunctionDeleteThumbnail, names[domain.WorkerDeleteThumbnail])
		assert.Equal(t, "delete-photo-db", names[domain.WorkerDeleteRecord])
	})
}
