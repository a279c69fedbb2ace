package models

import "time"

// Sender kinds as the backend reports them.
const (
	SenderCustomer = "customer"
	SenderCompany  = "company"
)

// Media kinds derived from a file's MIME type.
const (
	MediaImage    = "image"
	MediaVideo    = "video"
	MediaAudio    = "audio"
	MediaDocument = "document"
)

// TempIDPrefix marks optimistic placeholder messages that the backend has
// not confirmed yet.
const TempIDPrefix = "temp-"

const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

type Contact struct {
	ID              string
	Name            string
	PhoneNumber     string
	LastMessage     string
	LastMessageTime string
	LastSeen        string
	AssignedAgent   string
}

// DisplayName falls back to the phone number when the contact is unnamed.
func (c Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.PhoneNumber != "" {
		return c.PhoneNumber
	}
	return "Unknown"
}

type Message struct {
	ID         string
	Text       string
	SenderType string
	Timestamp  string
	Media      *Media
	Pending    bool
	Failed     bool
}

// FromCompany reports whether the message was sent by the workspace side.
func (m Message) FromCompany() bool {
	return m.SenderType == SenderCompany
}

type Media struct {
	Type     string
	FilePath string
	FileName string
}

type Agent struct {
	ID    string
	Name  string
	Email string
}

type Template struct {
	ID        string
	Title     string
	Content   string
	IsOwn     bool
	IsShared  bool
	CreatedBy string
}

// User is the authenticated workspace member, an agent or an admin.
type User struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
	Role  string `yaml:"role" json:"role"`
}

// MessageEvent is a decoded realtime "new-message" payload. Every client
// receives events for every conversation on the shared channel; filtering
// by contact happens downstream in the conversation layer.
type MessageEvent struct {
	ContactID  string
	MessageID  string
	Text       string
	SenderType string
	Timestamp  string
	Media      *Media
	ReceivedAt time.Time
}
