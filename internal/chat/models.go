package chat

import (
	"fmt"
	"strings"
	"time"

	"portal/infrastructure"
	"portal/internal/files"
	"portal/internal/user"
)

// Scope is the kind of conversation a message belongs to.
type Scope string

const (
	ScopeGroup  Scope = "group"
	ScopeDirect Scope = "direct"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case ScopeGroup:
		return ScopeGroup, nil
	case ScopeDirect, "thread":
		return ScopeDirect, nil
	}
	return "", infrastructure.Validation(fmt.Sprintf("unknown conversation type %q", s))
}

// Ref identifies one conversation: a group or a direct thread.
type Ref struct {
	Scope Scope  `json:"type"`
	ID    string `json:"id"`
}

func GroupRef(id string) Ref  { return Ref{Scope: ScopeGroup, ID: id} }
func ThreadRef(id string) Ref { return Ref{Scope: ScopeDirect, ID: id} }

func (r Ref) Validate() error {
	if r.Scope != ScopeGroup && r.Scope != ScopeDirect {
		return infrastructure.Validation(fmt.Sprintf("unknown conversation type %q", r.Scope))
	}
	if strings.TrimSpace(r.ID) == "" {
		return infrastructure.Validation("conversation id is required")
	}
	return nil
}

// Channel is the realtime channel name for the conversation.
func (r Ref) Channel() string {
	if r.Scope == ScopeGroup {
		return "group:" + r.ID
	}
	return "thread:" + r.ID
}

func (r Ref) String() string { return string(r.Scope) + ":" + r.ID }

// Column is the messages column holding this kind of reference.
func (r Ref) Column() string {
	if r.Scope == ScopeGroup {
		return "group_id"
	}
	return "thread_id"
}

type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
)

// Message is immutable once stored. Exactly one of GroupID and ThreadID
// is set, and exactly one of Text and FileID matching Kind.
type Message struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	GroupID   *string     `gorm:"size:36;index:idx_messages_group_created,priority:1;check:chk_messages_conversation,(group_id IS NULL) <> (thread_id IS NULL)" json:"groupId"`
	ThreadID  *string     `gorm:"size:36;index:idx_messages_thread_created,priority:1" json:"threadId"`
	SenderID  string      `gorm:"size:36;not null" json:"senderId"`
	Sender    *user.User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Kind      Kind        `gorm:"size:8;not null;check:chk_messages_payload,(kind = 'text' AND text IS NOT NULL AND file_id IS NULL) OR (kind = 'file' AND file_id IS NOT NULL AND text IS NULL)" json:"kind"`
	Text      *string     `gorm:"type:text" json:"text"`
	FileID    *string     `gorm:"size:36;index" json:"fileId"`
	File      *files.File `gorm:"foreignKey:FileID" json:"file,omitempty"`
	CreatedAt time.Time   `gorm:"not null;index:idx_messages_group_created,priority:2;index:idx_messages_thread_created,priority:2" json:"createdAt"`
}

func (Message) TableName() string { return "messages" }

// Ref returns the conversation the message was posted to.
func (m *Message) Ref() Ref {
	if m.GroupID != nil {
		return GroupRef(*m.GroupID)
	}
	if m.ThreadID != nil {
		return ThreadRef(*m.ThreadID)
	}
	return Ref{}
}

func newMessage(ref Ref, senderID string, kind Kind, at time.Time) *Message {
	m := &Message{SenderID: senderID, Kind: kind, CreatedAt: at}
	id := ref.ID
	if ref.Scope == ScopeGroup {
		m.GroupID = &id
	} else {
		m.ThreadID = &id
	}
	return m
}
