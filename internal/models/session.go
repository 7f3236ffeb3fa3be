package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTitle is the title every new session starts with.
const DefaultSessionTitle = "New Chat"

// Session is a stored chat session. ThreadID doubles as the checkpoint
// thread identifier.
type Session struct {
	ThreadID  string    `bson:"_id" json:"thread_id"`
	AgentID   string    `bson:"agentId" json:"agent_id"`
	Title     string    `bson:"title" json:"title"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// NewThreadID returns a fresh session thread identifier.
func NewThreadID() string {
	return uuid.NewString()
}

// Transcript roles
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Turn is one message in a session transcript.
type Turn struct {
	Role      string    `bson:"role" json:"role"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Checkpoint is the stored transcript of one session thread.
type Checkpoint struct {
	ThreadID  string    `bson:"_id" json:"thread_id"`
	Turns     []Turn    `bson:"turns" json:"turns"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// SendMessageRequest is the payload for one conversational turn.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse carries the assistant reply for a turn. Response is
// null when the turn produced no assistant-authored message.
type SendMessageResponse struct {
	Response *string `json:"response"`
}

// RenameSessionRequest is the payload for changing a session title.
type RenameSessionRequest struct {
	Title string `json:"title"`
}
