// Package httpapi exposes the event bus over the SSE wire framing, adapted
// from the refyne-api streaming handler's raw http.ResponseWriter/Flusher
// style onto the teacher's pkg/fx/echo RouteRegistrar convention.
package httpapi

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jaye773/summarizer-core/internal/eventbus"
	"github.com/jaye773/summarizer-core/internal/logging"
)

// Handler registers the event stream endpoint as an Echo RouteRegistrar,
// matching the shape of pkg/fx/echo.RouteRegistrar.
type Handler struct {
	bus   *eventbus.Bus
	log   logging.StandardLogger
	clock func() time.Time
}

// New constructs a Handler over bus.
func New(bus *eventbus.Bus, log logging.StandardLogger) *Handler {
	if log == nil {
		log = &logging.DiscardLogger{}
	}
	return &Handler{bus: bus, log: log, clock: time.Now}
}

// RegisterRoutes implements pkg/fx/echo.RouteRegistrar.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/events", h.stream)
}

var allEventTypes = []eventbus.EventType{
	eventbus.EventConnected, eventbus.EventHeartbeat,
	eventbus.EventJobStarted, eventbus.EventJobProgress, eventbus.EventJobRetry,
	eventbus.EventJobComplete, eventbus.EventJobFailed, eventbus.EventSystem,
}

func parseSubscriptions(raw string) []eventbus.EventType {
	if raw == "" {
		return allEventTypes
	}
	parts := strings.Split(raw, ",")
	out := make([]eventbus.EventType, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, eventbus.EventType(p))
		}
	}
	return out
}

// stream is the raw SSE handler: it disables proxy buffering, registers a
// connection, and drains its outgoing queue onto the response until the
// request context is cancelled or the connection is reaped.
func (h *Handler) stream(c echo.Context) error {
	req := c.Request()
	w := c.Response().Writer

	clientID := c.RealIP()
	subscriberKey := c.QueryParam("subscriber_key")
	subs := parseSubscriptions(c.QueryParam("subscribe"))

	conn, err := h.bus.Register(clientID, subscriberKey, subs)
	if err != nil {
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	}
	defer h.bus.Unregister(conn.ID)

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	if rc := http.NewResponseController(w); rc != nil {
		_ = rc.SetWriteDeadline(time.Time{})
	}

	flusher, _ := w.(http.Flusher)

	for {
		select {
		case <-req.Context().Done():
			return nil
		case ev, ok := <-conn.Outgoing:
			if !ok {
				return nil
			}
			if err := h.writeEvent(w, ev); err != nil {
				h.log.Warnw("sse write failed, closing connection", "conn_id", conn.ID, "err", err)
				return nil
			}
			if flusher != nil {
				flusher.Flush()
			}
			if conn.State() == eventbus.StateClosing {
				_ = h.writeEvent(w, eventbus.Event{Type: eventbus.EventSystem, Data: map[string]any{"reason": "closing"}})
				if flusher != nil {
					flusher.Flush()
				}
				return nil
			}
		}
	}
}

// writeEvent serializes one event per the SSE framing convention:
// "event: <type>\ndata: <json>\n\n". Payloads above the compression
// threshold are gzipped and base64-wrapped under a "_z"-suffixed type so
// unaware clients can ignore them.
func (h *Handler) writeEvent(w http.ResponseWriter, ev eventbus.Event) error {
	payload := map[string]any{"timestamp": ev.Timestamp.Format(time.RFC3339Nano)}
	for k, v := range ev.Data {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	eventType := string(ev.Type)
	if len(body) > h.bus.CompressionThreshold() {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(body); err != nil {
			return fmt.Errorf("gzip event: %w", err)
		}
		if err := gz.Close(); err != nil {
			return fmt.Errorf("gzip close: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
		body, err = json.Marshal(encoded)
		if err != nil {
			return fmt.Errorf("marshal compressed event: %w", err)
		}
		eventType += "_z"
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, body)
	return err
}
