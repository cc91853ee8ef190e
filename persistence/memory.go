package persistence

import (
	"github.com/google/uuid"
	"github.com/tcriess/lightspeed-rooms/config"
)

// NewMemoryPersister opens a private in-memory sqlite database. Every call yields a fresh, empty database which lives
// until the Persister is closed.
func NewMemoryPersister() (Persister, error) {
	return NewGormPersister(&config.Config{
		PersistenceConfig: config.PersistenceConfig{
			Type: "sqlite",
			DSN:  "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		},
	})
}
