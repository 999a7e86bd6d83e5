package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

// maxErrorBody bounds how much of an error response ends up in messages.
const maxErrorBody = 512

// RequestBuilder builds backend URLs.
type RequestBuilder struct {
	base *url.URL
}

// NewRequestBuilder creates a request builder for a base URL such as
// "https://api.vyfood.vn/v1".
func NewRequestBuilder(baseURL string) (*RequestBuilder, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewValidationError("backend_url", baseURL, "must be an absolute http(s) URL")
	}
	return &RequestBuilder{base: u}, nil
}

// BaseURL returns the base URL.
func (rb *RequestBuilder) BaseURL() string {
	return rb.base.String()
}

// URL joins path segments onto the base URL, escaping each segment, and
// attaches the query.
func (rb *RequestBuilder) URL(query url.Values, segments ...string) string {
	raw := make([]string, 0, len(segments))
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		raw = append(raw, s)
		escaped = append(escaped, url.PathEscape(s))
	}
	u := *rb.base
	u.RawPath = strings.TrimRight(rb.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(raw, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// DecodeResponse decodes a JSON response into the target structure. Non-2xx
// statuses become *errors.APIError carrying the backend's message. A nil
// target discards the body.
func DecodeResponse(resp *http.Response, target any) error {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			Service:    "unknown",
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body, resp.Status),
		}
	}

	if target == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}

// errorMessage extracts a message from common error body shapes:
// {"error":"..."}, {"message":"..."} and {"error":{"message":"..."}}.
func errorMessage(body []byte, status string) string {
	var shaped struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &shaped) == nil {
		var s string
		if json.Unmarshal(shaped.Error, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(shaped.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		if shaped.Message != "" {
			return shaped.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return status
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}
