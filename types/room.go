package types

import "time"

// Room is a discussion room. It always has exactly one host and one topic; only the host may change or delete it.
type Room struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Price        float64    `json:"price"`
	Image        string     `json:"image"`
	HostID       uint       `json:"host_id" gorm:"not null;index"`
	Host         *User      `json:"host,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	TopicID      uint       `json:"topic_id" gorm:"not null;index"`
	Topic        *Topic     `json:"topic,omitempty"`
	Participants []*User    `json:"participants,omitempty" gorm:"many2many:room_participants"`
	Messages     []*Message `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TopicName returns the name of the room's topic, or "" if it is not loaded.
func (r *Room) TopicName() string {
	if r.Topic == nil {
		return ""
	}
	return r.Topic.Name
}
