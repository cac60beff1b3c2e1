package cerr

import (
	"encoding/json"
	"io"
	"net/http"
)

// wireBody is the error body shared by the server writer and the client
// decoder: {"error":{"code":...,"message":...,"details":...}}.
type wireBody struct {
	Error wireError `json:"error"`
}

type wireError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// DecodeResponse turns a non-success HTTP response into an *Error. The
// server-supplied message is preserved verbatim; if the body can't be
// decoded, the code is derived from the HTTP status instead.
func DecodeResponse(resp *http.Response) *Error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return NewError(CodeFromHTTPStatus(resp.StatusCode), http.StatusText(resp.StatusCode), err)
	}
	var wire wireBody
	if err := json.Unmarshal(body, &wire); err != nil || wire.Error.Message == "" {
		return NewError(CodeFromHTTPStatus(resp.StatusCode), http.StatusText(resp.StatusCode), err)
	}
	return NewErrorWithDetails(CodeFromString(wire.Error.Code), wire.Error.Message, nil, wire.Error.Details)
}
