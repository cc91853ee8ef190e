package types

import "golang.org/x/text/cases"

// Topic tags rooms. Name keeps the spelling it was first created with, NameKey is the case-folded form used to
// find an existing topic regardless of case.
type Topic struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"size:200;not null"`
	NameKey string `json:"-" gorm:"size:200;uniqueIndex;not null"`
}

// TopicKey returns the lookup key for a topic name.
func TopicKey(name string) string {
	return cases.Fold().String(name)
}
