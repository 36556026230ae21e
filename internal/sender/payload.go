package sender

import "math/rand"

// Payload sizes accepted for a single UDP datagram.
const (
	MinPayloadSize = 64
	MaxPayloadSize = 1500
)

// Payload returns a buffer of the given size filled with random bytes.
// The content is opaque filler; workers build one buffer at startup and
// reuse it for every send.
func Payload(size int) []byte {
	buf := make([]byte, size)
	// rand.Read never returns an error.
	_, _ = rand.Read(buf)
	return buf
}
