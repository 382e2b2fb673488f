package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"sort"

	"github.com/fivetwenty-io/superset-client/internal/constants"
	"github.com/fivetwenty-io/superset-client/pkg/superset"
)

// encodeBody returns the request body and its content type. A JSON payload
// wins over form fields; with neither the body is nil.
func encodeBody(req *superset.TransportRequest) ([]byte, string, error) {
	if req.JSONPayload != nil {
		body, err := json.Marshal(req.JSONPayload)
		if err != nil {
			return nil, "", fmt.Errorf("encoding JSON payload: %w", err)
		}

		return body, constants.ContentTypeJSON, nil
	}

	if req.Payload == nil {
		return nil, "", nil
	}

	return encodeForm(req.Payload, req.Stringify)
}

// encodeForm writes payload as multipart/form-data with fields in key order.
func encodeForm(payload map[string]interface{}, stringify bool) ([]byte, string, error) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for _, key := range keys {
		value, err := formValue(payload[key], stringify)
		if err != nil {
			return nil, "", fmt.Errorf("encoding form field %q: %w", key, err)
		}

		err = writer.WriteField(key, value)
		if err != nil {
			return nil, "", fmt.Errorf("writing form field %q: %w", key, err)
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func formValue(value interface{}, stringify bool) (string, error) {
	if stringify {
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", err
		}

		return string(encoded), nil
	}

	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(v), nil
	}
}
