package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/medivault/internal/config"
	"github.com/set-night/medivault/internal/domain"
)

func (h *Handler) logError(err error, where string, chatID int64) {
	slog.Error(where, "error", err, "chat_id", chatID)
	h.ops.LogError(err, fmt.Sprintf("%s (chat %d)", where, chatID))
}

// uploadErrorText turns an upload failure into the message shown to the user.
func uploadErrorText(err error) string {
	var failed *domain.UploadFailedError
	switch {
	case errors.Is(err, domain.ErrSizeLimitExceeded):
		return "❌ File too large: " + sizeLimitDetail(err)
	case errors.Is(err, domain.ErrUploadTimeout):
		return "❌ Upload timed out. Please try again."
	case errors.As(err, &failed):
		return fmt.Sprintf("❌ Upload failed: %d - %s", failed.Status, domain.BodyText(failed.Body))
	case errors.Is(err, domain.ErrNetworkUnreachable):
		return "❌ Cannot reach the document storage. Check your connection and try again."
	default:
		return "❌ Failed to upload document. Please try again."
	}
}

// sizeLimitDetail returns the sizes reported with a size limit error.
func sizeLimitDetail(err error) string {
	msg := err.Error()
	prefix := domain.ErrSizeLimitExceeded.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return fmt.Sprintf("maximum size is %dMB", config.MaxUploadSize/(1024*1024))
}
