package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Checker-Finance/product-explorer/pkg/eventbus"
	"github.com/Checker-Finance/product-explorer/pkg/model"
)

const (
	streamBuffer = 64

	// DefaultKeepAlive keeps idle streams visibly alive to proxies and clients.
	DefaultKeepAlive = 5 * time.Second
)

// EventSource is the subscription side of the event bus.
type EventSource interface {
	Subscribe(eventType any, handler eventbus.Handler) eventbus.Subscription
	Unsubscribe(sub eventbus.Subscription)
}

// SnapshotSource supplies what a dashboard needs to catch up on connect.
type SnapshotSource interface {
	State() model.State
	Logs() []model.APILog
}

type streamEvent struct {
	name string
	data any
}

type streamSnapshot struct {
	State model.State    `json:"state"`
	Logs  []model.APILog `json:"logs"`
}

// Streamer pushes request log and state changes to dashboards over Server-Sent Events.
type Streamer struct {
	logger    *zap.Logger
	source    EventSource
	snapshot  SnapshotSource
	keepAlive time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewStreamer creates a Streamer. snapshot supplies the state and request log
// sent on connect; a non-positive keepAlive uses DefaultKeepAlive.
func NewStreamer(logger *zap.Logger, source EventSource, snapshot SnapshotSource, keepAlive time.Duration) *Streamer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &Streamer{
		logger:    logger,
		source:    source,
		snapshot:  snapshot,
		keepAlive: keepAlive,
		done:      make(chan struct{}),
	}
}

// Close ends every open stream. Call it before shutting the server down.
func (s *Streamer) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Stream handles GET /api/v1/stream.
func (s *Streamer) Stream(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, subs := s.subscribe()
	snap := streamSnapshot{State: s.snapshot.State(), Logs: s.snapshot.Logs()}
	conn := c.Context().Conn()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer s.unsubscribe(subs)

		ticker := time.NewTicker(s.keepAlive)
		defer ticker.Stop()

		fw := &frameWriter{w: w, conn: conn}
		if err := fw.event("snapshot", snap); err != nil {
			return
		}
		n := pump(fw, events, s.done, ticker.C)
		s.logger.Debug("api.stream.closed", zap.Int("events_sent", n))
	}))
	return nil
}

// subscribe registers non-blocking handlers; a slow client misses events rather than stalling callers.
func (s *Streamer) subscribe() (<-chan streamEvent, []eventbus.Subscription) {
	ch := make(chan streamEvent, streamBuffer)
	forward := func(name string, data func(ev any) any) eventbus.Handler {
		return func(ev any) {
			select {
			case ch <- streamEvent{name: name, data: data(ev)}:
			default:
			}
		}
	}
	subs := []eventbus.Subscription{
		s.source.Subscribe(model.LogAppended{}, forward("log", func(ev any) any { return ev.(model.LogAppended).Entry })),
		s.source.Subscribe(model.LogCleared{}, forward("clear", func(ev any) any { return ev })),
		s.source.Subscribe(model.StateChanged{}, forward("state", func(ev any) any { return ev.(model.StateChanged).State })),
	}
	return ch, subs
}

func (s *Streamer) unsubscribe(subs []eventbus.Subscription) {
	for _, sub := range subs {
		s.source.Unsubscribe(sub)
	}
}

// pump writes events until done closes or the client goes away, and returns
// the number of events written.
func pump(fw *frameWriter, events <-chan streamEvent, done <-chan struct{}, keepAlive <-chan time.Time) int {
	sent := 0
	for {
		select {
		case <-done:
			return sent
		case ev := <-events:
			if err := fw.event(ev.name, ev.data); err != nil {
				return sent
			}
			sent++
		case <-keepAlive:
			if err := fw.ping(); err != nil {
				return sent
			}
		}
	}
}

// frameWriter writes flushed SSE frames. The server arms a single write
// deadline for the whole response, so every frame lifts it from the
// underlying connection first.
type frameWriter struct {
	w    *bufio.Writer
	conn net.Conn
}

func (f *frameWriter) event(name string, data any) error {
	f.clearDeadline()
	if err := encodeEvent(f.w, name, data); err != nil {
		return err
	}
	return f.w.Flush()
}

func (f *frameWriter) ping() error {
	f.clearDeadline()
	if _, err := f.w.WriteString(": ping\n\n"); err != nil {
		return err
	}
	return f.w.Flush()
}

func (f *frameWriter) clearDeadline() {
	if f.conn != nil {
		_ = f.conn.SetWriteDeadline(time.Time{})
	}
}

func encodeEvent(w io.Writer, name string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", name, err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}
