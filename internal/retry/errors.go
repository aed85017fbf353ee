package retry

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/spetersoncode/mediagen"
)

// statusCoder is an interface for errors that have an HTTP status code.
type statusCoder interface {
	StatusCode() int
}

// providerMessager is implemented by errors relaying the provider's own
// error text. Only that text is checked for status codes; transport errors
// carry URLs and never implement it.
type providerMessager interface {
	ProviderMessage() string
}

// terminalStatusCodes are malformed-request and credential failures.
// Retrying them cannot succeed.
var terminalStatusCodes = []int{
	http.StatusBadRequest,
	http.StatusUnauthorized,
	http.StatusForbidden,
}

// IsTransient determines if an error should be retried.
// Categorized errors decide by category, except that a transient error
// whose provider message mentions HTTP 400, 401 or 403 is terminal.
// Uncategorized errors are transient unless they carry, or their message
// mentions, one of those statuses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce mediagen.CategorizedError
	if errors.As(err, &ce) {
		if ce.Category() != mediagen.ErrorTransient {
			return false
		}
		var pm providerMessager
		return !errors.As(err, &pm) || !MentionsTerminalStatus(pm.ProviderMessage())
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var sc statusCoder
	if errors.As(err, &sc) && isTerminalStatusCode(sc.StatusCode()) {
		return false
	}

	return !MentionsTerminalStatus(err.Error())
}

// isTerminalStatusCode checks if an HTTP status code must not be retried.
func isTerminalStatusCode(code int) bool {
	for _, c := range terminalStatusCodes {
		if code == c {
			return true
		}
	}
	return false
}

// MentionsTerminalStatus reports whether msg mentions HTTP 400, 401 or 403.
func MentionsTerminalStatus(msg string) bool {
	for _, c := range terminalStatusCodes {
		if strings.Contains(msg, strconv.Itoa(c)) {
			return true
		}
	}
	return false
}
