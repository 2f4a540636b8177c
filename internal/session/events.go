package session

import "encoding/json"

// Event names shared with the front-end protocol.
const (
	EventJoin            = "join"
	EventJoined          = "joined"
	EventDisconnected    = "disconnected"
	EventCodeChange      = "code-change"
	EventSyncCode        = "sync-code"
	EventAddComment      = "add-comment"
	EventChatMessage     = "chat-message"
	EventLanguageChange  = "language-change"
	EventExecuteCode     = "execute-code"
	EventExecutionResult = "code-execution-result"
)

// Envelope is the wire framing for every websocket message: one event name
// and its JSON payload.
type Envelope struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data"`
}

// Message is an outbound event queued on a client's send buffer.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// ClientInfo identifies one room member in join broadcasts.
type ClientInfo struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

// JoinPayload registers the sender in a room.
type JoinPayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// JoinedPayload is broadcast to every room member, including the joiner, and
// carries the full current member list.
type JoinedPayload struct {
	Clients  []ClientInfo `json:"clients"`
	Username string       `json:"username"`
	SocketID string       `json:"socketId"`
}

// DisconnectedPayload is synthesized when a connection closes.
type DisconnectedPayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

// CodeChangePayload carries the full buffer state. Inbound messages name the
// room; the rebroadcast carries only the code.
type CodeChangePayload struct {
	RoomID string `json:"roomId,omitempty" validate:"required"`
	Code   string `json:"code"`
}

// SyncCodePayload pushes the current buffer to exactly one newly joined
// connection.
type SyncCodePayload struct {
	SocketID string `json:"socketId" validate:"required"`
	Code     string `json:"code"`
}

// Comment is an inline comment on a buffer line. The id is client-generated;
// deduplication is a client-side concern and the server keeps no history.
type Comment struct {
	ID         int64  `json:"id"`
	LineNumber int    `json:"lineNumber"`
	Comment    string `json:"comment"`
	User       string `json:"user"`
}

// AddCommentPayload is echoed to the whole room, sender included, so the
// author gets confirmation its comment was accepted.
type AddCommentPayload struct {
	RoomID  string  `json:"roomId,omitempty" validate:"required"`
	Comment Comment `json:"comment"`
}

// ChatMessagePayload is a chat line fanned out to the sender's current room.
// Both fields are relayed verbatim, empty or not; routing depends only on the
// sender's registry entry.
type ChatMessagePayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// LanguageChangePayload switches the room's active language for everyone but
// the sender.
type LanguageChangePayload struct {
	RoomID      string `json:"roomId,omitempty" validate:"required"`
	NewLanguage string `json:"newLanguage" validate:"required"`
}

// ExecuteCodePayload requests a sandboxed run of the buffer.
type ExecuteCodePayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	Code     string `json:"code"`
	Language string `json:"language" validate:"required"`
}

// ExecutionResultPayload is broadcast exactly once per execution request.
type ExecutionResultPayload struct {
	Result  string `json:"result"`
	Success bool   `json:"success"`
}
