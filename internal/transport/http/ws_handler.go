package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"quiz-report-service/internal/app"
	"quiz-report-service/internal/domain"
)

// Options tunes the presentation timing shared by the WebSocket and REST handlers.
type Options struct {
	DefaultBankID string
	// RevealDelay is how long the correct answer stays highlighted before "next" advances.
	RevealDelay time.Duration
	// ResetDelay is how long after a successful send the session is reset.
	ResetDelay time.Duration
}

var errAdvancePending = fmt.Errorf("%w: advance already pending", domain.ErrPrecondition)

type WSHandler struct {
	quizzes  *app.QuizService
	reports  *app.ReportService
	opts     Options
	upgrader websocket.Upgrader
}

func NewWSHandler(quizzes *app.QuizService, reports *app.ReportService, opts Options) *WSHandler {
	return &WSHandler{
		quizzes: quizzes,
		reports: reports,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	bankID := r.URL.Query().Get("bankId")
	if bankID == "" {
		bankID = h.opts.DefaultBankID
	}
	if bankID == "" {
		http.Error(w, "missing bankId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	snap, err := h.quizzes.CreateSession(ctx, bankID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: newErrorPayload(err)})
		return
	}
	sessionID := snap.SessionID
	defer func() {
		if err := h.quizzes.Close(context.Background(), sessionID); err != nil {
			log.Printf("close session %s: %v", sessionID, err)
		}
	}()

	c := &wsConn{
		send:         make(chan outboundMessage[any], 16),
		closeSignals: make(chan struct{}),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-c.send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-c.closeSignals:
				return
			}
		}
	}()

	c.push("state", snap)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		h.dispatch(ctx, c, sessionID, inbound)
	}

	close(c.closeSignals)
	c.pending.Wait()
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, c *wsConn, sessionID string, inbound inboundMessage) {
	switch inbound.Type {
	case "select", "advance", "next", "reset":
		// The pending advance owns progression until it fires.
		if c.advancing.Load() {
			c.pushError(errAdvancePending)
			return
		}
	}

	switch inbound.Type {
	case "start":
		c.pushSnapshot(h.quizzes.Start(ctx, sessionID))
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Choice == nil {
			c.pushError(fmt.Errorf("%w: invalid select payload", domain.ErrValidation))
			return
		}
		c.pushSnapshot(h.quizzes.Select(ctx, sessionID, *payload.Choice))
	case "advance":
		c.pushSnapshot(h.quizzes.Advance(ctx, sessionID))
	case "next":
		h.next(ctx, c, sessionID)
	case "reset":
		c.pushSnapshot(h.quizzes.Reset(ctx, sessionID))
	case "state":
		c.pushSnapshot(h.quizzes.State(ctx, sessionID))
	case "score":
		snap, err := h.quizzes.State(ctx, sessionID)
		if err != nil {
			c.pushError(err)
			return
		}
		c.push("score", scorePayload{Score: snap.Score, Total: snap.Total})
	case "report":
		report, err := h.quizzes.Report(ctx, sessionID)
		if err != nil {
			c.pushError(err)
			return
		}
		c.push("report", report)
	case "send":
		var payload sendPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.pushError(fmt.Errorf("%w: invalid send payload", domain.ErrValidation))
			return
		}
		h.send(ctx, c, sessionID, domain.Recipient{Name: payload.Name, Email: payload.Email})
	default:
		c.pushError(fmt.Errorf("%w: unsupported message type %q", domain.ErrValidation, inbound.Type))
	}
}

// next highlights the correct answer and advances once RevealDelay has passed.
func (h *WSHandler) next(ctx context.Context, c *wsConn, sessionID string) {
	if !c.advancing.CompareAndSwap(false, true) {
		c.pushError(errAdvancePending)
		return
	}
	reveal, err := h.quizzes.Reveal(ctx, sessionID)
	if err != nil {
		c.advancing.Store(false)
		c.pushError(err)
		return
	}
	c.push("reveal", reveal)
	c.after(h.opts.RevealDelay, func() {
		snap, err := h.quizzes.Advance(ctx, sessionID)
		c.advancing.Store(false)
		c.pushSnapshot(snap, err)
	})
}

// send validates locally, dispatches in the background and resets the
// session ResetDelay after a successful send. A failed send keeps the session.
func (h *WSHandler) send(ctx context.Context, c *wsConn, sessionID string, recipient domain.Recipient) {
	report, err := h.quizzes.Report(ctx, sessionID)
	if err != nil {
		c.pushError(err)
		return
	}
	recipient, err = app.NormalizeRecipient(recipient)
	if err != nil {
		c.pushError(err)
		return
	}

	c.push("status", statusPayload{Message: "Sending..."})
	outcome := h.reports.SendAsync(ctx, recipient, report)

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := <-outcome; err != nil {
			c.pushError(err)
			return
		}
		c.push("sent", statusPayload{Message: "Sent!"})
		c.after(h.opts.ResetDelay, func() {
			// The client may already have reset and started over.
			if snap, err := h.quizzes.State(ctx, sessionID); err == nil && snap.Phase != domain.PhaseCompleted {
				return
			}
			c.pushSnapshot(h.quizzes.Reset(ctx, sessionID))
		})
	}()
}

// wsConn serializes outbound frames through the writer goroutine and tracks
// deferred callbacks so none outlive the connection.
type wsConn struct {
	send         chan outboundMessage[any]
	closeSignals chan struct{}
	pending      sync.WaitGroup
	advancing    atomic.Bool
}

func (c *wsConn) push(typ string, payload any) {
	select {
	case c.send <- outboundMessage[any]{Type: typ, Payload: payload}:
	case <-c.closeSignals:
	}
}

func (c *wsConn) pushError(err error) {
	c.push("error", newErrorPayload(err))
}

func (c *wsConn) pushSnapshot(snap domain.Snapshot, err error) {
	if err != nil {
		c.pushError(err)
		return
	}
	c.push("state", snap)
}

func (c *wsConn) after(delay time.Duration, fn func()) {
	c.pending.Add(1)
	time.AfterFunc(delay, func() {
		defer c.pending.Done()
		select {
		case <-c.closeSignals:
			return
		default:
		}
		fn()
	})
}
