package session

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/codepair/codepair/internal/executor"
)

// Runner executes untrusted source under a deadline and always returns a
// normal result. Satisfied by *executor.Sandbox.
type Runner interface {
	Run(ctx context.Context, sourceText, languageTag string) executor.Result
}

// Hub routes every inbound event to its audience, with room isolation as the
// only access-control boundary. Handlers are safe under concurrent invocation
// from independent connections; only the registry lock is shared, and no
// handler blocks on a slow peer or an in-flight execution.
type Hub struct {
	registry *Registry
	runner   Runner
	validate *validator.Validate
}

// NewHub creates a Hub routing through a fresh registry.
func NewHub(runner Runner) *Hub {
	return &Hub{
		registry: NewRegistry(),
		runner:   runner,
		validate: validator.New(),
	}
}

// Registry exposes the membership table.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Dispatch parses and routes one raw inbound message. Malformed envelopes and
// payloads failing validation are dropped with a log line; they never tear
// down the connection.
func (h *Hub) Dispatch(c *Client, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Warn().Err(err).Str("socketId", c.ID).Msg("dropping malformed message")
		return
	}

	switch envelope.Event {
	case EventJoin:
		dispatchPayload(h, c, envelope, h.handleJoin)
	case EventCodeChange:
		dispatchPayload(h, c, envelope, h.handleCodeChange)
	case EventSyncCode:
		dispatchPayload(h, c, envelope, h.handleSyncCode)
	case EventAddComment:
		dispatchPayload(h, c, envelope, h.handleAddComment)
	case EventChatMessage:
		dispatchPayload(h, c, envelope, h.handleChatMessage)
	case EventLanguageChange:
		dispatchPayload(h, c, envelope, h.handleLanguageChange)
	case EventExecuteCode:
		dispatchPayload(h, c, envelope, h.handleExecuteCode)
	default:
		log.Warn().Str("socketId", c.ID).Str("event", envelope.Event).Msg("dropping unknown event")
	}
}

// dispatchPayload decodes and validates the envelope payload before invoking
// the handler.
func dispatchPayload[T any](h *Hub, c *Client, envelope Envelope, handler func(*Client, T)) {
	var payload T
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		log.Warn().Err(err).Str("socketId", c.ID).Str("event", envelope.Event).Msg("dropping undecodable payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		log.Warn().Err(err).Str("socketId", c.ID).Str("event", envelope.Event).Msg("dropping invalid payload")
		return
	}
	handler(c, payload)
}

func (h *Hub) handleJoin(c *Client, p JoinPayload) {
	h.registry.Join(p.RoomID, p.Username, c)
	log.Info().Str("socketId", c.ID).Str("roomId", p.RoomID).Str("username", p.Username).Msg("participant joined")

	members := h.registry.MembersOf(p.RoomID)
	payload := JoinedPayload{
		Clients:  members,
		Username: p.Username,
		SocketID: c.ID,
	}
	for _, member := range h.registry.participantsIn(p.RoomID) {
		member.Client.send(EventJoined, payload)
	}
}

func (h *Hub) handleCodeChange(c *Client, p CodeChangePayload) {
	h.broadcast(p.RoomID, c.ID, EventCodeChange, CodeChangePayload{Code: p.Code})
}

// handleSyncCode delivers the current buffer to exactly one connection, never
// the room.
func (h *Hub) handleSyncCode(c *Client, p SyncCodePayload) {
	target, ok := h.registry.Get(p.SocketID)
	if !ok {
		log.Warn().Str("socketId", p.SocketID).Msg("sync-code target not connected")
		return
	}
	target.Client.send(EventCodeChange, CodeChangePayload{Code: p.Code})
}

// handleAddComment echoes to the whole room, sender included; the echo is the
// author's acceptance confirmation. The server stores nothing and does not
// deduplicate ids.
func (h *Hub) handleAddComment(c *Client, p AddCommentPayload) {
	log.Info().Str("roomId", p.RoomID).Int64("commentId", p.Comment.ID).Msg("comment received")
	h.broadcast(p.RoomID, "", EventAddComment, AddCommentPayload{Comment: p.Comment})
}

// handleChatMessage fans out to whichever room the sender currently belongs
// to, sender included.
func (h *Hub) handleChatMessage(c *Client, p ChatMessagePayload) {
	roomID, ok := h.registry.RoomOf(c.ID)
	if !ok {
		log.Warn().Str("socketId", c.ID).Msg("chat-message from connection outside any room")
		return
	}
	h.broadcast(roomID, "", EventChatMessage, p)
}

func (h *Hub) handleLanguageChange(c *Client, p LanguageChangePayload) {
	h.broadcast(p.RoomID, c.ID, EventLanguageChange, LanguageChangePayload{NewLanguage: p.NewLanguage})
}

// handleExecuteCode hands the request to the sandbox off the event path and
// broadcasts exactly one result to the room when the run completes. Concurrent
// requests for the same room run independently; each yields its own result.
func (h *Hub) handleExecuteCode(c *Client, p ExecuteCodePayload) {
	log.Info().Str("roomId", p.RoomID).Str("language", p.Language).Msg("executing code")

	go func() {
		result := h.runner.Run(context.Background(), p.Code, p.Language)
		// Audience is resolved after the run: members who left mid-run are
		// gone, whoever remains still gets the result.
		h.broadcast(p.RoomID, "", EventExecutionResult, ExecutionResultPayload{
			Result:  result.Output,
			Success: result.Success,
		})
	}()
}

// Disconnect synthesizes the departure broadcast for a closed connection and
// removes it from the registry. Called for graceful and abrupt closes alike;
// calling it for an unregistered connection is a no-op.
func (h *Hub) Disconnect(c *Client) {
	p, ok := h.registry.Get(c.ID)
	if !ok {
		return
	}

	h.broadcast(p.RoomID, c.ID, EventDisconnected, DisconnectedPayload{
		SocketID: c.ID,
		Username: p.Username,
	})
	h.registry.Leave(c.ID)
	log.Info().Str("socketId", c.ID).Str("roomId", p.RoomID).Msg("participant disconnected")
}

// broadcast fans one event out to the room, excluding exceptID when set.
func (h *Hub) broadcast(roomID, exceptID, event string, data any) {
	for _, p := range h.registry.participantsIn(roomID) {
		if p.ID == exceptID {
			continue
		}
		p.Client.send(event, data)
	}
}
