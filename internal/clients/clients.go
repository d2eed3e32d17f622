package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTP is a thin client for the model services the pipeline calls out to.
type HTTP struct{ c *http.Client }

// NewHTTP returns a client whose requests time out after timeout. Zero means
// the 60 second default.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}

// StatusError is returned when a service answers with a non-200 status.
type StatusError struct {
	Service string
	Status  string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Service, e.Status, e.Body)
}

func (h *HTTP) do(ctx context.Context, service string, req *http.Request) (*http.Response, error) {
	resp, err := h.c.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{
			Service: service,
			Status:  resp.Status,
			Code:    resp.StatusCode,
			Body:    strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
