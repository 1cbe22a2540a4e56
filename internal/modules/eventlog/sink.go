// README: Append-only event sink; in-memory ring with optional Redis mirror.
package eventlog

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const mirrorKey = "taxipark:events"

// Sink collects human-readable progress lines from the core. Collaborators
// (GUI, dashboards) may read or drop them; the core never blocks on a slow
// reader.
type Sink struct {
	mu   sync.Mutex
	ring []string
	head int
	size int

	mirror chan string
	done   chan struct{}
}

func New(capacity int) *Sink {
	if capacity <= 0 {
		capacity = 256
	}
	return &Sink{ring: make([]string, capacity)}
}

// NewWithMirror additionally tails every event into a capped Redis list so
// external dashboards can follow the run. Mirroring is asynchronous and
// lossy under backpressure.
func NewWithMirror(capacity int, client *redis.Client) *Sink {
	s := New(capacity)
	s.mirror = make(chan string, 512)
	s.done = make(chan struct{})
	go s.runMirror(client)
	return s
}

func (s *Sink) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	log.Print(line)

	s.mu.Lock()
	s.ring[s.head] = time.Now().Format("15:04:05.000") + " " + line
	s.head = (s.head + 1) % len(s.ring)
	if s.size < len(s.ring) {
		s.size++
	}
	s.mu.Unlock()

	if s.mirror != nil {
		select {
		case s.mirror <- line:
		default:
		}
	}
}

// Recent returns up to n of the latest events, oldest first.
func (s *Sink) Recent(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > s.size {
		n = s.size
	}
	out := make([]string, 0, n)
	for i := s.size - n; i < s.size; i++ {
		idx := (s.head - s.size + i + 2*len(s.ring)) % len(s.ring)
		out = append(out, s.ring[idx])
	}
	return out
}

func (s *Sink) runMirror(client *redis.Client) {
	ctx := context.Background()
	for {
		select {
		case line := <-s.mirror:
			pipe := client.Pipeline()
			pipe.RPush(ctx, mirrorKey, line)
			pipe.LTrim(ctx, mirrorKey, -1024, -1)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Printf("eventlog: redis mirror: %v", err)
			}
		case <-s.done:
			return
		}
	}
}

// Close stops the Redis mirror goroutine, if any.
func (s *Sink) Close() {
	if s.done != nil {
		close(s.done)
	}
}
