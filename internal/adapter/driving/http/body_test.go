package http

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	plain := `{"key":"cat.png","email":"alice@example.com"}`
	encoded := base64.StdEncoding.EncodeToString([]byte(plain))

	tests := []struct {
		name     string
		raw      string
		expected DecodeKind
	}{
		{name: "plain json", raw: plain, expected: DecodeParsed},
		{name: "base64 json", raw: encoded, expected: DecodeParsed},
		{name: "gateway wrapper", raw: `{"httpMethod":"POST","body":"{\"key\":\"cat.png\"}"}`, expected: DecodeParsed},
		{name: "gateway wrapper with base64 body", raw: `{"httpMethod":"POST","isBase64Encoded":true,"body":"` + encoded + `"}`, expected: DecodeParsed},
		{name: "gateway wrapper with empty body", raw: `{"httpMethod":"POST","body":"{}"}`, expected: DecodeNotJSON},
		{name: "base64 of text", raw: base64.StdEncoding.EncodeToString([]byte("hello")), expected: DecodeNotJSON},
		{name: "garbage", raw: "not json!", expected: DecodeNotBase64},
		{name: "empty", raw: "", expected: DecodeNotJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := DecodeBody([]byte(tt.raw))

			assert.Equal(t, tt.expected, decoded.Kind, decoded.Kind.String())
		})
	}
}

func TestParseActionBody(t *testing.T) {
	t.Run("unwraps and binds fields", func(t *testing.T) {
		raw := `{"httpMethod":"DELETE","body":"{\"key\":\"cat.png\",\"email\":\"alice@example.com\",\"token\":\"abc\"}"}`

		body, err := parseActionBody([]byte(raw))

		require.NoError(t, err)
		assert.Equal(t, "cat.png", body.Key)
		assert.Equal(t, "alice@example.com", body.Email)
		assert.Equal(t, "abc", body.Token)
	})

	t.Run("rejects undecodable bodies", func(t *testing.T) {
		_, err := parseActionBody([]byte("%%%"))

		assert.Error(t, err)
	})
}
