package pubky

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 1 << 10

// checkResponse maps a homeserver status to an error. 404 becomes
// ErrNotFound; the body of a failed response is drained and closed.
func checkResponse(op string, resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	defer resp.Body.Close()
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(msg))
	if detail == "" {
		detail = http.StatusText(resp.StatusCode)
	}
	err := fmt.Errorf("%s %s: status %d: %s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, detail)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Kind: KindAuthentication, Op: op, Err: err}
	case http.StatusBadRequest:
		return &Error{Kind: KindParse, Op: op, Err: err}
	case http.StatusRequestEntityTooLarge:
		return &Error{Kind: KindBuild, Op: op, Err: err}
	default:
		return &Error{Kind: KindRequest, Op: op, Err: err}
	}
}
