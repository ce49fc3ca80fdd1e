package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is a decoded JSON object. Numbers are kept as json.Number.
type Document = map[string]any

// apiErrorBody is the error envelope returned by Google APIs.
type apiErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
			Domain  string `json:"domain"`
		} `json:"errors"`
	} `json:"error"`
}

// Load turns a raw response into a Document or a typed failure.
// It only classifies; whether a failure is fatal is up to the caller.
func Load(statusCode int, body []byte) (Document, error) {
	if statusCode < 200 || statusCode > 299 {
		return nil, newHTTPError(statusCode, body)
	}

	doc, err := decodeDocument(body)
	if err != nil {
		return nil, &DecodeError{StatusCode: statusCode, Err: err}
	}
	return doc, nil
}

func decodeDocument(body []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON document")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", v)
	}
	return obj, nil
}

// newHTTPError builds an HTTPError, pulling reason codes out of the
// structured error body when there is one.
func newHTTPError(statusCode int, body []byte) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: statusCode,
		ErrorClass: classifyStatus(statusCode),
	}

	var payload apiErrorBody
	if err := json.Unmarshal(body, &payload); err == nil {
		httpErr.Message = payload.Error.Message
		for _, e := range payload.Error.Errors {
			if e.Reason != "" {
				httpErr.Reasons = append(httpErr.Reasons, e.Reason)
			}
		}
	}

	httpErr.Kind = classifyReasons(statusCode, httpErr.Reasons)
	if httpErr.Kind == KindQuotaExceeded && httpErr.ErrorClass == ErrorClassClient {
		httpErr.ErrorClass = ErrorClassRateLimit
	}
	return httpErr
}
