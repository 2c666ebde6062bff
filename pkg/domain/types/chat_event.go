package types

// ChatEventType is the discriminator of a Google Chat event
type ChatEventType string

const (
	ChatEventMessage          ChatEventType = "MESSAGE"
	ChatEventAddedToSpace     ChatEventType = "ADDED_TO_SPACE"
	ChatEventRemovedFromSpace ChatEventType = "REMOVED_FROM_SPACE"
)

// IsKnown reports whether the relay has a dedicated reply for the event type
func (t ChatEventType) IsKnown() bool {
	switch t {
	case ChatEventMessage,
		ChatEventAddedToSpace,
		ChatEventRemovedFromSpace:
		return true
	default:
		return false
	}
}

// String returns the string representation of the event type
func (t ChatEventType) String() string {
	return string(t)
}

// SpaceTypeRoom marks a multi-user space
const SpaceTypeRoom = "ROOM"
