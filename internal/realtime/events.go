package realtime

import (
	"encoding/json"

	"portal/internal/chat"
)

const (
	EventMessageNew  = "message:new"
	EventInboxUpdate = "inbox:update"

	FrameJoin  = "chat:join"
	FrameLeave = "chat:leave"
)

// Event is one server-to-client frame.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type MessageNew struct {
	Scope          chat.Scope    `json:"scope"`
	ConversationID string        `json:"conversationId"`
	GroupID        string        `json:"groupId,omitempty"`
	ThreadID       string        `json:"threadId,omitempty"`
	Message        *chat.Message `json:"message"`
}

func messageNewEvent(msg *chat.Message) Event {
	ref := msg.Ref()
	payload := MessageNew{Scope: ref.Scope, ConversationID: ref.ID, Message: msg}
	if ref.Scope == chat.ScopeGroup {
		payload.GroupID = ref.ID
	} else {
		payload.ThreadID = ref.ID
	}
	return Event{Type: EventMessageNew, Data: payload}
}

// Frame is one client-to-server frame.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type conversationFrame struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ref decodes the conversation a join or leave frame names. ok is false
// for anything malformed.
func (f Frame) ref() (chat.Ref, bool) {
	var cf conversationFrame
	if len(f.Data) == 0 || json.Unmarshal(f.Data, &cf) != nil {
		return chat.Ref{}, false
	}
	scope, err := chat.ParseScope(cf.Type)
	if err != nil || cf.ID == "" {
		return chat.Ref{}, false
	}
	return chat.Ref{Scope: scope, ID: cf.ID}, true
}
