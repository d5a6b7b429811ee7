package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/go-faster/jx"

	"github.com/photoflow/photoflow-api/internal/core/domain"
)

// DecodeKind tags the result of decoding a request body
type DecodeKind int

const (
	// DecodeParsed means the body yielded a JSON object
	DecodeParsed DecodeKind = iota
	// DecodeNotJSON means base64 decoding worked but produced no JSON object
	DecodeNotJSON
	// DecodeNotBase64 means the body was neither JSON nor base64
	DecodeNotBase64
)

func (k DecodeKind) String() string {
	switch k {
	case DecodeParsed:
		return "parsed"
	case DecodeNotJSON:
		return "not_json"
	default:
		return "not_base64"
	}
}

// Decoded is a request body after the attempt list ran
type Decoded struct {
	Kind    DecodeKind
	Payload []byte
}

// maxUnwrap bounds how many gateway wrappers are peeled off
const maxUnwrap = 2

// DecodeBody tries, in order: the body as a JSON object, then the body as
// base64 text of a JSON object. A gateway wrapper {"httpMethod", "body"} is
// unwrapped, honoring its isBase64Encoded flag.
func DecodeBody(raw []byte) Decoded {
	return decodeBody(bytes.TrimSpace(raw), 0)
}

func decodeBody(raw []byte, depth int) Decoded {
	payload, kind := firstObject(raw)
	if kind != DecodeParsed {
		return Decoded{Kind: kind}
	}

	if depth >= maxUnwrap {
		return Decoded{Kind: DecodeParsed, Payload: payload}
	}
	inner, wrapped := unwrapGateway(payload)
	if !wrapped {
		return Decoded{Kind: DecodeParsed, Payload: payload}
	}
	if len(bytes.TrimSpace(inner)) == 0 || string(bytes.TrimSpace(inner)) == "{}" {
		return Decoded{Kind: DecodeNotJSON}
	}
	return decodeBody(bytes.TrimSpace(inner), depth+1)
}

// firstObject runs the attempt list and returns the first JSON object found
func firstObject(raw []byte) ([]byte, DecodeKind) {
	if isObject(raw) {
		return raw, DecodeParsed
	}

	decoded, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, DecodeNotBase64
	}
	decoded = bytes.TrimSpace(decoded)
	if !isObject(decoded) {
		return nil, DecodeNotJSON
	}
	return decoded, DecodeParsed
}

func isObject(b []byte) bool {
	return len(b) > 0 && b[0] == '{' && jx.Valid(b)
}

// unwrapGateway returns the inner body of {"httpMethod": ..., "body": ...}
func unwrapGateway(payload []byte) ([]byte, bool) {
	var (
		body        string
		hasBody     bool
		hasMethod   bool
		isBase64Enc bool
	)

	err := jx.DecodeBytes(payload).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "httpMethod":
			hasMethod = true
			return d.Skip()
		case "body":
			if d.Next() != jx.String {
				raw, err := d.Raw()
				if err != nil {
					return err
				}
				body, hasBody = raw.String(), true
				return nil
			}
			s, err := d.Str()
			if err != nil {
				return err
			}
			body, hasBody = s, true
		case "isBase64Encoded":
			if d.Next() != jx.Bool {
				return d.Skip()
			}
			v, err := d.Bool()
			if err != nil {
				return err
			}
			isBase64Enc = v
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil || !hasMethod || !hasBody {
		return nil, false
	}

	if isBase64Enc {
		if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
			return decoded, true
		}
	}
	return []byte(body), true
}

// actionBody is the caller payload shared by the photo and token endpoints
type actionBody struct {
	Action      string `json:"action"`
	Key         string `json:"key"`
	Email       string `json:"email"`
	Token       string `json:"token"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// parseActionBody decodes a request body into its fields
func parseActionBody(raw []byte) (actionBody, error) {
	var body actionBody

	decoded := DecodeBody(raw)
	if decoded.Kind != DecodeParsed {
		return body, domain.ErrInvalidBody
	}
	if err := json.Unmarshal(decoded.Payload, &body); err != nil {
		return body, domain.ErrInvalidBody
	}
	return body, nil
}
