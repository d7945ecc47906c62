package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/storefront-auth/internal/pkg/ctxlog"
)

// ErrorMapping maps a sentinel error to a response status.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, uses err.Error()
}

// HandleError writes the first mapping matching err via errors.Is.
// Unmapped errors are logged with the full chain and answered with a
// generic 500, so store or hashing details never reach the client.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	for _, m := range mappings {
		if !errors.Is(err, m.Error) {
			continue
		}
		msg := m.Message
		if msg == "" {
			msg = m.Error.Error()
		}
		ctxlog.FromContext(ctx).Debug("request rejected", "status", m.Status, "error", err)
		Error(w, m.Status, msg)
		return
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
