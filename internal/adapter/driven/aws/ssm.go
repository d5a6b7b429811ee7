package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/go-faster/errors"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

// SSMAPI is the subset of the SSM client used by ParameterStore
type SSMAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParameterStore implements port.SecretStore on SSM Parameter Store
type ParameterStore struct {
	client SSMAPI
}

// NewParameterStore creates a new parameter store
func NewParameterStore(client SSMAPI) *ParameterStore {
	return &ParameterStore{client: client}
}

// Get reads a decrypted parameter value
func (s *ParameterStore) Get(ctx context.Context, name string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", errors.Wrapf(err, "get parameter %q", name)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", errors.Wrapf(domain.ErrNotFound, "parameter %q", name)
	}
	return aws.ToString(out.Parameter.Value), nil
}
