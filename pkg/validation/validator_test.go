package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoflow/photoflow-api/pkg/apperror"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(v *Validator)
		wantMsg string
	}{
		{
			name:    "missing field",
			fn:      func(v *Validator) { v.Required("email", "") },
			wantMsg: "missing 'email' field",
		},
		{
			name:    "absolute object key",
			fn:      func(v *Validator) { v.ObjectKey("key", "/etc/passwd") },
			wantMsg: "key must be a relative object key",
		},
		{
			name:    "parent traversal",
			fn:      func(v *Validator) { v.ObjectKey("key", "a/../b.png") },
			wantMsg: "key must be a relative object key",
		},
		{
			name:    "non-base64 content",
			fn:      func(v *Validator) { v.Base64("content", "***") },
			wantMsg: "content must be base64 encoded",
		},
		{
			name:    "malformed email",
			fn:      func(v *Validator) { v.Email("email", "alice") },
			wantMsg: "email must be a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fn)

			appErr, ok := apperror.GetAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestValidate_EmptyOptionalValuesPass(t *testing.T) {
	err := Validate(func(v *Validator) {
		v.ObjectKey("key", "").
			Base64("content", "").
			Email("email", "").
			MaxLength("description", "", 10)
	})

	assert.NoError(t, err)
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(func(v *Validator) {
		v.Required("email", "").Required("token", "")
	})

	appErr, ok := apperror.GetAppError(err)
	require.True(t, ok)
	assert.Equal(t, "validation failed", appErr.Message)
	assert.Equal(t, map[string]string{
		"email": "missing 'email' field",
		"token": "missing 'token' field",
	}, appErr.Details["fields"])
}
