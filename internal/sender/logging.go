package sender

import "context"

// FailureLogger logs failed sends.
type FailureLogger interface {
	LogFailure(err error)
}

// loggingSender wraps a Sender with failure logging.
type loggingSender struct {
	inner  Sender
	logger FailureLogger
}

// WithLogging wraps a Factory so every sender it produces logs failures.
func WithLogging(factory Factory, logger FailureLogger) Factory {
	if logger == nil {
		return factory
	}
	return func(ctx context.Context, worker int) (Sender, error) {
		snd, err := factory(ctx, worker)
		if err != nil {
			logger.LogFailure(err)
			return nil, err
		}
		return &loggingSender{inner: snd, logger: logger}, nil
	}
}

func (l *loggingSender) Send(p []byte) (int, error) {
	n, err := l.inner.Send(p)
	if err != nil && l.logger != nil {
		l.logger.LogFailure(err)
	}
	return n, err
}

func (l *loggingSender) Close() error {
	return l.inner.Close()
}
