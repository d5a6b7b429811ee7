package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-faster/jx"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
)

// responseEnvelope is what a worker returns: {statusCode, body, headers}
type responseEnvelope struct {
	statusCode  int
	hasStatus   bool
	body        string
	hasBody     bool
	failureHint string
}

// ClassifyResponse turns a raw invocation result into a step outcome.
//
// A step fails when the invocation reports a worker fault, a non-2xx
// invocation status, a non-2xx envelope statusCode, or an explicit failure
// payload ({"error": ...}, {"success": false} or {"status": "failed"}).
// Responses that are not JSON are malformed.
func ClassifyResponse(res *port.InvokeResult, legacyMarkers bool) domain.StepOutcome {
	if res == nil {
		return domain.Failure(domain.ErrMalformedResponse.Error() + ": empty result")
	}
	if res.FunctionError != "" {
		return domain.Failure(fmt.Sprintf("worker fault (%s): %s", res.FunctionError, snippet(res.Payload)))
	}
	if res.StatusCode != 0 && !is2xx(res.StatusCode) {
		return domain.Failure(fmt.Sprintf("invocation status %d", res.StatusCode))
	}

	payload := bytes.TrimSpace(res.Payload)
	if len(payload) == 0 || !jx.Valid(payload) {
		return domain.Failure(fmt.Sprintf("%v: %s", domain.ErrMalformedResponse, snippet(payload)))
	}

	env, err := decodeEnvelope(payload)
	if err != nil {
		return domain.Failure(fmt.Sprintf("%v: %v", domain.ErrMalformedResponse, err))
	}

	body := env.body
	if !env.hasBody {
		body = string(payload)
	}

	if env.hasStatus && !is2xx(env.statusCode) {
		return domain.Failure(fmt.Sprintf("worker status %d: %s", env.statusCode, body))
	}
	if env.failureHint != "" {
		return domain.Failure(env.failureHint)
	}
	if hint := explicitFailure([]byte(body)); hint != "" {
		return domain.Failure(hint)
	}
	if legacyMarkers && (strings.Contains(body, "Error") || strings.Contains(body, "Failed")) {
		return domain.Failure(body)
	}

	return domain.Success(body)
}

func decodeEnvelope(payload []byte) (responseEnvelope, error) {
	var env responseEnvelope

	d := jx.DecodeBytes(payload)
	switch d.Next() {
	case jx.Object:
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return env, err
		}
		env.body, env.hasBody = s, true
		return env, nil
	default:
		return env, nil
	}

	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "statusCode":
			n, err := d.Int()
			if err != nil {
				return err
			}
			env.statusCode, env.hasStatus = n, true
		case "body":
			if d.Next() == jx.String {
				s, err := d.Str()
				if err != nil {
					return err
				}
				env.body = s
			} else {
				raw, err := d.Raw()
				if err != nil {
					return err
				}
				env.body = raw.String()
			}
			env.hasBody = true
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return env, err
	}

	// Without a body the envelope fields are the payload itself.
	if !env.hasBody {
		env.failureHint = explicitFailure(payload)
	}
	return env, nil
}

// explicitFailure inspects a JSON object body for a structured failure flag
func explicitFailure(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' || !jx.Valid(body) {
		return ""
	}

	var hint string
	d := jx.DecodeBytes(body)
	_ = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "error":
			if d.Next() == jx.Null {
				return d.Skip()
			}
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			hint = "worker error: " + strings.Trim(raw.String(), `"`)
		case "success":
			if d.Next() != jx.Bool {
				return d.Skip()
			}
			ok, err := d.Bool()
			if err != nil {
				return err
			}
			if !ok && hint == "" {
				hint = "worker reported success=false"
			}
		case "status":
			if d.Next() != jx.String {
				return d.Skip()
			}
			s, err := d.Str()
			if err != nil {
				return err
			}
			if (strings.EqualFold(s, "failed") || strings.EqualFold(s, "error")) && hint == "" {
				hint = "worker reported status " + s
			}
		default:
			return d.Skip()
		}
		return nil
	})
	return hint
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}

func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
