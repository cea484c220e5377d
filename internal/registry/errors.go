package registry

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for registry failure classification. Adapters tag every
// failure with one of these so the scheduler can decide between row-scoped
// recovery and whole-run abort.
var (
	// ErrAuth marks rejected credentials or an expired session.
	ErrAuth = errors.New("registry authentication failed")
	// ErrNetwork marks transport failures and timeouts.
	ErrNetwork = errors.New("registry network error")
	// ErrParse marks responses whose HTML did not have the expected shape.
	ErrParse = errors.New("registry parse error")
)

// Wrap builds an error carrying operation context while tagging it with the
// provided sentinel for later classification.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrNetwork
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "registry failure"
	}
	return strings.Join(parts, ": ")
}
