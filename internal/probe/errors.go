package probe

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrInvalidProxyURL is returned when the proxy is not a socks5:// URL
	// with a host and port.
	ErrInvalidProxyURL = errors.New("invalid proxy url: expected socks5://host:port")

	// ErrUnsupportedScheme is returned for URLs that are not http or https.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

// StatusError is a non-success HTTP answer.
type StatusError struct {
	Code int
}

// Error renders the status as "HTTP 404 Not Found".
func (e *StatusError) Error() string {
	if text := http.StatusText(e.Code); text != "" {
		return fmt.Sprintf("HTTP %d %s", e.Code, text)
	}
	return fmt.Sprintf("HTTP %d", e.Code)
}
