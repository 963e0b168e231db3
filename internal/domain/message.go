package domain

import (
	"fmt"
	"time"
)

// Tag marks a message's mutation state. The zero value means the message has
// never been edited or deleted. The sentinel strings "<edited>" and
// "<deleted>" exist only at the storage and wire boundaries; everything in
// between works with the enumerated type.
type Tag int

const (
	TagNone Tag = iota
	TagEdited
	TagDeleted
)

const (
	tagEditedStr  = "<edited>"
	tagDeletedStr = "<deleted>"
)

func (t Tag) String() string {
	switch t {
	case TagEdited:
		return tagEditedStr
	case TagDeleted:
		return tagDeletedStr
	default:
		return ""
	}
}

// ParseTag converts a stored tag string into its enumerated form.
func ParseTag(s string) (Tag, error) {
	switch s {
	case "":
		return TagNone, nil
	case tagEditedStr:
		return TagEdited, nil
	case tagDeletedStr:
		return TagDeleted, nil
	default:
		return TagNone, fmt.Errorf("unknown message tag %q", s)
	}
}

// Message is a single channel message. ID is assigned by storage and never
// changes; body, tag and timestamp are rewritten together by edit and delete.
type Message struct {
	ID      int64
	Channel string
	Author  string
	Body    string
	Sent    int64 // epoch milliseconds, UTC
	Tag     Tag
}

// SentTime returns the sent timestamp as a UTC time.Time.
func (m Message) SentTime() time.Time {
	return time.UnixMilli(m.Sent).UTC()
}

// Tombstoned reports whether the message has been soft-deleted. A tombstoned
// message stays addressable so polling clients observe the removal.
func (m Message) Tombstoned() bool {
	return m.Tag == TagDeleted
}
