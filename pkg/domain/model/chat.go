package model

import (
	"github.com/secmon-lab/deskrelay/pkg/domain/types"
	"google.golang.org/api/chat/v1"
)

// ChatEvent is an interaction event posted by Google Chat to the bot endpoint.
// chat.User omits the email the event carries, so users are decoded into ChatUser.
type ChatEvent struct {
	Type      types.ChatEventType `json:"type"`
	EventTime string              `json:"eventTime,omitempty"`
	Message   *ChatMessage        `json:"message,omitempty"`
	Space     *chat.Space         `json:"space,omitempty"`
	User      *ChatUser           `json:"user,omitempty"`
}

// ChatMessage is the message part of a MESSAGE event
type ChatMessage struct {
	Name         string       `json:"name,omitempty"`
	Text         string       `json:"text,omitempty"`
	ArgumentText string       `json:"argumentText,omitempty"`
	Sender       *ChatUser    `json:"sender,omitempty"`
	Thread       *chat.Thread `json:"thread,omitempty"`
}

// ChatUser is the sender of an event
type ChatUser struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Text returns the message text, or "" for events without a message
func (x *ChatEvent) Text() string {
	if x.Message == nil {
		return ""
	}
	return x.Message.Text
}

// SenderEmail returns the email of the message sender, falling back to the event user
func (x *ChatEvent) SenderEmail() string {
	if x.Message != nil && x.Message.Sender != nil && x.Message.Sender.Email != "" {
		return x.Message.Sender.Email
	}
	if x.User != nil {
		return x.User.Email
	}
	return ""
}

// RoomName returns the display name of a multi-user space, or "" for direct messages
func (x *ChatEvent) RoomName() string {
	if x.Space == nil || x.Space.Type != types.SpaceTypeRoom {
		return ""
	}
	return x.Space.DisplayName
}
