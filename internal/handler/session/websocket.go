package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// greetSentinel short-circuits resolution to a plain greeting reply.
const greetSentinel = "__greet__"

const readTimeout = 60 * time.Second

// Resolver produces one reply per input; it never fails.
type Resolver interface {
	Resolve(ctx context.Context, input string) string
	Greeting() string
}

// Synthesizer renders text to audio; nil means unavailable or failed.
type Synthesizer interface {
	Synthesize(ctx context.Context, engineID, text, voiceID string) []byte
}

// Handler owns one websocket connection per client. Messages are handled
// sequentially: each inbound message completes before the next is read, so
// replies leave in receive order.
type Handler struct {
	resolver      Resolver
	synth         Synthesizer
	defaultEngine string
	upgrader      websocket.Upgrader
}

// New creates the session handler.
func New(resolver Resolver, synth Synthesizer, defaultEngine string) *Handler {
	return &Handler{
		resolver:      resolver,
		synth:         synth,
		defaultEngine: defaultEngine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Engine  string `json:"engine,omitempty"`
	VoiceID string `json:"voice_id,omitempty"`
}

type audioMessage struct {
	Type   string `json:"type"`
	Engine string `json:"engine"`
	Audio  string `json:"audio"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[session] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log.Printf("[session] new connection session=%s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[session] read error session=%s: %v", sessionID, err)
				}
				log.Printf("[session] closed session=%s", sessionID)
				return
			}

			conn.SetReadDeadline(time.Now().Add(readTimeout))
			h.handleMessage(ctx, conn, sessionID, &msg)
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, conn *websocket.Conn, sessionID string, msg *inboundMessage) {
	engine := msg.Engine
	if engine == "" {
		engine = h.defaultEngine
	}

	if msg.Text == greetSentinel {
		h.sendText(conn, h.resolver.Greeting())
		return
	}

	switch msg.Type {
	case "chat":
		h.handleChat(ctx, conn, sessionID, msg.Text, engine, msg.VoiceID)
	case "tts":
		h.handleTTS(ctx, conn, msg.Text, engine, msg.VoiceID)
	default:
		h.sendError(conn, "unsupported message type: "+msg.Type)
	}
}

// handleChat resolves a reply, sends it as plain text, then renders it to
// audio best-effort. A failed rendering never fails the chat turn.
func (h *Handler) handleChat(ctx context.Context, conn *websocket.Conn, sessionID, text, engine, voiceID string) {
	reply := h.resolver.Resolve(ctx, text)
	h.sendText(conn, reply)

	audio := h.synth.Synthesize(ctx, engine, reply, voiceID)
	if len(audio) == 0 {
		log.Printf("[session] voice rendering skipped session=%s engine=%s", sessionID, engine)
		return
	}
	h.sendAudio(conn, engine, audio)
}

// handleTTS renders the given text. An empty result is protocol-visible as
// a structured error, never a connection failure.
func (h *Handler) handleTTS(ctx context.Context, conn *websocket.Conn, text, engine, voiceID string) {
	audio := h.synth.Synthesize(ctx, engine, text, voiceID)
	if len(audio) == 0 {
		h.sendError(conn, fmt.Sprintf("engine '%s' unavailable", engine))
		return
	}
	h.sendAudio(conn, engine, audio)
}

func (h *Handler) sendText(conn *websocket.Conn, text string) {
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		log.Printf("[session] write text failed: %v", err)
	}
}

func (h *Handler) sendAudio(conn *websocket.Conn, engine string, audio []byte) {
	msg := audioMessage{
		Type:   "tts_result",
		Engine: engine,
		Audio:  base64.StdEncoding.EncodeToString(audio),
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[session] write audio failed: %v", err)
	}
}

func (h *Handler) sendError(conn *websocket.Conn, message string) {
	msg := errorMessage{Type: "error", Message: message}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[session] write error failed: %v", err)
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
