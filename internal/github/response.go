package github

import (
	"bytes"
	"encoding/json"
	"errors"
)

// GraphQLError is one entry of a response's errors list.
type GraphQLError struct {
	Type       string         `json:"type,omitempty"`
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string { return e.Message }

var errNoData = errors.New("response has no data")

// decode checks one exchange and returns its data object, raw and decoded.
// A body that is not JSON, a non-200 status, an errors key or a missing
// data object all fail with KindQueryFailed.
func decode(resp *response, text string) (json.RawMessage, map[string]any, error) {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return nil, nil, queryFailed(resp, text, err)
	}
	if resp.status != 200 {
		return nil, nil, queryFailed(resp, text, nil)
	}
	if raw, ok := env["errors"]; ok {
		e := queryFailed(resp, text, nil)
		_ = json.Unmarshal(raw, &e.Errors)
		if len(e.Errors) > 0 {
			e.Err = e.Errors[0]
		}
		return nil, nil, e
	}
	raw, ok := env["data"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil, queryFailed(resp, text, errNoData)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, nil, queryFailed(resp, text, err)
	}
	return raw, data, nil
}

func queryFailed(resp *response, text string, err error) *Error {
	return &Error{
		Kind:       KindQueryFailed,
		StatusCode: resp.status,
		Query:      text,
		Path:       resp.path,
		Body:       string(resp.body),
		Err:        err,
	}
}
