package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// remoteQueueSize bounds the lines waiting for the push endpoint; beyond it lines are dropped.
const remoteQueueSize = 1024

type remoteEntry struct {
	level   string
	message string
	attrs   []slog.Attr
	at      time.Time
}

type remoteSink struct {
	uri     string
	client  *http.Client
	queue   chan remoteEntry
	dropped atomic.Int64
}

var (
	sink     *remoteSink
	sinkOnce sync.Once
)

// remote returns the push sink, or nil when REMOTE_LOG_HTTP_URI is unset.
func remote() *remoteSink {
	sinkOnce.Do(func() {
		uri := os.Getenv("REMOTE_LOG_HTTP_URI")
		if uri == "" {
			return
		}
		sink = &remoteSink{
			uri:    uri,
			client: &http.Client{Timeout: 5 * time.Second},
			queue:  make(chan remoteEntry, remoteQueueSize),
		}
		go sink.run()
	})
	return sink
}

// sendLog queues the line for the remote endpoint without blocking the caller.
func sendLog(level, message string, attrs []slog.Attr) {
	s := remote()
	if s == nil {
		return
	}
	select {
	case s.queue <- remoteEntry{level: level, message: message, attrs: attrs, at: time.Now()}:
	default:
		if n := s.dropped.Add(1); n%100 == 1 {
			fmt.Fprintf(os.Stderr, "Remote log queue full, %d lines dropped so far\n", n)
		}
	}
}

func (s *remoteSink) run() {
	for e := range s.queue {
		if err := s.push(e); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to send to remote log: %v\n", err)
		}
	}
}

func (s *remoteSink) push(e remoteEntry) error {
	payload, err := json.Marshal(buildLogEntryAt(e.at, e.level, e.message, e.attrs))
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.uri, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
