package sender

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Sender is the outbound channel resource a worker owns for the lifetime of
// its send loop. Send must not block indefinitely; a failed send is reported
// through the returned error and never terminates the worker.
type Sender interface {
	Send(p []byte) (int, error)
	Close() error
}

// Factory creates the sender for one worker. Acquisition failures are local
// to that worker and must not abort the run.
type Factory func(ctx context.Context, worker int) (Sender, error)

// UDP returns a Factory that dials the destination once per worker.
// Each worker gets its own socket so sends never serialize on a shared fd.
func UDP(address string, port int, writeTimeout time.Duration) Factory {
	target := net.JoinHostPort(address, strconv.Itoa(port))
	return func(ctx context.Context, worker int) (Sender, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "udp", target)
		if err != nil {
			return nil, fmt.Errorf("worker %d: dial %s: %w", worker, target, err)
		}
		return &udpSender{conn: conn.(*net.UDPConn), writeTimeout: writeTimeout}, nil
	}
}

type udpSender struct {
	conn         *net.UDPConn
	writeTimeout time.Duration
}

func (s *udpSender) Send(p []byte) (int, error) {
	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return 0, err
		}
	}
	return s.conn.Write(p)
}

func (s *udpSender) Close() error {
	return s.conn.Close()
}
