package ai

import (
	"context"
	"errors"
	"fmt"
	"net"

	"ga-assistant-backend/models"
)

// wrapTimeout maps deadline and network-timeout failures onto the retryable
// ErrExternalTimeout sentinel; other errors pass through unchanged.
func wrapTimeout(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", models.ErrExternalTimeout, op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s: %v", models.ErrExternalTimeout, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
