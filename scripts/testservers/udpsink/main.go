// Command udpsink is a throwaway receive-side counterpart for local runs.
// It binds a UDP port, drains every datagram, and prints a per-second
// summary of what arrived so sender-side numbers can be compared against
// what the network actually delivered.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"
)

func main() {
	port := flag.Int("port", 0, "Listening UDP port")
	quiet := flag.Bool("quiet", false, "Suppress the per-second summary line")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}

	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	log.Printf("udpsink listening on %s", conn.LocalAddr())

	var packets, bytes atomic.Int64

	go func() {
		buf := make([]byte, 65535)
		for {
			n, _, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			packets.Add(1)
			bytes.Add(int64(n))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastPackets, lastBytes int64
	start := time.Now()
	for {
		select {
		case <-ticker.C:
			p, b := packets.Load(), bytes.Load()
			if !*quiet {
				log.Printf("recv: %d pps | %.2f Mbit/s | total %d packets",
					p-lastPackets,
					float64(b-lastBytes)*8/1e6,
					p,
				)
			}
			lastPackets, lastBytes = p, b
		case <-sig:
			elapsed := time.Since(start)
			p, b := packets.Load(), bytes.Load()
			log.Printf("done: %d packets, %d bytes in %s (%.2f pps)",
				p, b, elapsed.Round(time.Second), float64(p)/elapsed.Seconds())
			return
		}
	}
}
