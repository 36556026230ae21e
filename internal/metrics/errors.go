package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// ClassifyError maps a send error to a stable bucket label for the
// aggregate error breakdown.
func ClassifyError(err error) string {
	if err == nil {
		return "none"
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline exceeded"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "destination unreachable"
	case errors.Is(err, syscall.EHOSTUNREACH), errors.Is(err, syscall.ENETUNREACH):
		return "network unreachable"
	case errors.Is(err, syscall.ENOBUFS), errors.Is(err, syscall.EAGAIN):
		return "buffer exhausted"
	case errors.Is(err, syscall.EMSGSIZE):
		return "message too long"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "send timeout"
	}

	label := fmt.Sprintf("%T", err)
	if len(label) > 30 {
		label = label[len(label)-30:]
	}
	return label
}
