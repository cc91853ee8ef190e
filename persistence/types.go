package persistence

import (
	"context"
	"errors"

	"github.com/tcriess/lightspeed-rooms/types"
)

// ErrDuplicate is returned when a unique column (user email or username) would be duplicated.
var ErrDuplicate = errors.New("duplicate key")

// Persister is the data access layer. Lookups by primary key return types.ErrNotFound for missing rows.
// Listings are newest first unless noted otherwise.
type Persister interface {
	// Transaction runs fn with a Persister bound to one database transaction. It commits if fn returns nil.
	Transaction(ctx context.Context, fn func(Persister) error) error

	CreateUser(ctx context.Context, user *types.User) error
	SaveUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, id uint) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUsers(ctx context.Context) ([]*types.User, error)
	// EmailTaken and UsernameTaken ignore the user with id exceptID (0 to check against everyone).
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error)

	// GetOrCreateTopic returns the topic whose name matches name ignoring case, creating it if there is none.
	GetOrCreateTopic(ctx context.Context, name string) (*types.Topic, error)
	// GetTopics returns topics in id order; limit <= 0 means all.
	GetTopics(ctx context.Context, limit int) ([]*types.Topic, error)

	// Rooms are returned with host, topic and participants loaded.
	GetRoom(ctx context.Context, id uint) (*types.Room, error)
	GetRooms(ctx context.Context) ([]*types.Room, error)
	GetRoomsByHost(ctx context.Context, hostID uint) ([]*types.Room, error)
	CreateRoom(ctx context.Context, room *types.Room) error
	SaveRoom(ctx context.Context, room *types.Room) error
	// DeleteRoom removes the room together with its messages and participant links.
	DeleteRoom(ctx context.Context, room *types.Room) error
	// AddParticipant is a no-op if user already participates in room.
	AddParticipant(ctx context.Context, room *types.Room, user *types.User) error

	// Messages are returned with author and room (with topic) loaded.
	GetMessage(ctx context.Context, id uint) (*types.Message, error)
	GetMessages(ctx context.Context) ([]*types.Message, error)
	GetRoomMessages(ctx context.Context, roomID uint) ([]*types.Message, error)
	GetUserMessages(ctx context.Context, userID uint) ([]*types.Message, error)
	CreateMessage(ctx context.Context, message *types.Message) error
	DeleteMessage(ctx context.Context, message *types.Message) error

	// ImageRefs lists every stored blob reference in use (room images and avatars).
	ImageRefs(ctx context.Context) ([]string, error)

	Close() error
}
