package types

import "time"

// Message is a post in a room. Only its author may delete it.
type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	RoomID    uint      `json:"room_id" gorm:"not null;index"`
	Room      *Room     `json:"room,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TopicName returns the topic name of the message's room, or "" if room or topic are not loaded.
func (m *Message) TopicName() string {
	if m.Room == nil {
		return ""
	}
	return m.Room.TopicName()
}
