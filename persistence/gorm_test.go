package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/types"
)

func newTestPersister(t *testing.T) Persister {
	p, err := NewMemoryPersister()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func createUser(t *testing.T, p Persister, username string) *types.User {
	user := &types.User{Email: username + "@example.com", Username: username, Name: username}
	require.NoError(t, p.CreateUser(context.Background(), user))
	return user
}

func createRoom(t *testing.T, p Persister, host *types.User, name, topic string) *types.Room {
	ctx := context.Background()
	tp, err := p.GetOrCreateTopic(ctx, topic)
	require.NoError(t, err)
	room := &types.Room{Name: name, HostID: host.ID, TopicID: tp.ID}
	require.NoError(t, p.CreateRoom(ctx, room))
	return room
}

func TestGetUserNotFound(t *testing.T) {
	p := newTestPersister(t)
	_, err := p.GetUser(context.Background(), 42)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	_, err = p.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, types.ErrNotFound))
	_, err = p.GetRoom(context.Background(), 42)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	_, err = p.GetMessage(context.Background(), 42)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestDuplicateEmail(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	alice := createUser(t, p, "alice")
	err := p.CreateUser(ctx, &types.User{Email: "alice@example.com", Username: "other"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	taken, err := p.EmailTaken(ctx, "alice@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = p.EmailTaken(ctx, "alice@example.com", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)
	taken, err = p.UsernameTaken(ctx, "bob", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestGetOrCreateTopicReusesAnyCase(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	first, err := p.GetOrCreateTopic(ctx, "Art History")
	require.NoError(t, err)
	second, err := p.GetOrCreateTopic(ctx, "art history")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Art History", second.Name)

	topics, err := p.GetTopics(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}

func TestGetTopicsLimit(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		_, err := p.GetOrCreateTopic(ctx, name)
		require.NoError(t, err)
	}
	topics, err := p.GetTopics(ctx, 5)
	require.NoError(t, err)
	require.Len(t, topics, 5)
	assert.Equal(t, "a", topics[0].Name)
}

func TestRoomLoadsAssociations(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	alice := createUser(t, p, "alice")
	room := createRoom(t, p, alice, "Go study", "Go")

	loaded, err := p.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Host)
	assert.Equal(t, "alice", loaded.Host.Username)
	require.NotNil(t, loaded.Topic)
	assert.Equal(t, "Go", loaded.Topic.Name)
	assert.Empty(t, loaded.Participants)

	rooms, err := p.GetRoomsByHost(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestAddParticipantIdempotent(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	alice := createUser(t, p, "alice")
	bob := createUser(t, p, "bob")
	room := createRoom(t, p, alice, "Go study", "Go")

	for i := 0; i < 3; i++ {
		loaded, err := p.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		require.NoError(t, p.AddParticipant(ctx, loaded, bob))
	}
	loaded, err := p.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Participants, 1)
	assert.Equal(t, bob.ID, loaded.Participants[0].ID)
}

func TestDeleteRoomCascadesMessages(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	alice := createUser(t, p, "alice")
	doomed := createRoom(t, p, alice, "doomed", "Go")
	kept := createRoom(t, p, alice, "kept", "Go")
	for _, r := range []*types.Room{doomed, kept, doomed} {
		require.NoError(t, p.CreateMessage(ctx, &types.Message{Body: "hi", UserID: alice.ID, RoomID: r.ID}))
	}
	loaded, err := p.GetRoom(ctx, doomed.ID)
	require.NoError(t, err)
	require.NoError(t, p.AddParticipant(ctx, loaded, alice))

	require.NoError(t, p.Transaction(ctx, func(tx Persister) error {
		return tx.DeleteRoom(ctx, loaded)
	}))

	_, err = p.GetRoom(ctx, doomed.ID)
	assert.True(t, errors.Is(err, types.ErrNotFound))
	messages, err := p.GetMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, kept.ID, messages[0].RoomID)
	require.NotNil(t, messages[0].Room)
	assert.Equal(t, "Go", messages[0].TopicName())
}

func TestTransactionRollsBack(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := p.Transaction(ctx, func(tx Persister) error {
		if _, err := tx.GetOrCreateTopic(ctx, "ghost"); err != nil {
			return err
		}
		return boom
	})
	assert.True(t, errors.Is(err, boom))
	topics, err := p.GetTopics(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestImageRefs(t *testing.T) {
	p := newTestPersister(t)
	ctx := context.Background()
	alice := createUser(t, p, "alice")
	alice.Avatar = "avatar.png"
	require.NoError(t, p.SaveUser(ctx, alice))
	room := createRoom(t, p, alice, "pics", "Art")
	room.Image = "room.jpg"
	require.NoError(t, p.SaveRoom(ctx, room))
	createRoom(t, p, alice, "no pics", "Art")

	refs, err := p.ImageRefs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"avatar.png", "room.jpg"}, refs)
}

func TestUnknownPersistenceType(t *testing.T) {
	_, err := setupGormDB(config.PersistenceConfig{Type: "mysql", DSN: "x"})
	assert.Error(t, err)
}
