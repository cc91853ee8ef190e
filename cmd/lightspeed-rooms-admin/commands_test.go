package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcriess/lightspeed-rooms/auth"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/persistence"
	"github.com/tcriess/lightspeed-rooms/room"
	"github.com/tcriess/lightspeed-rooms/storage"
	"github.com/tcriess/lightspeed-rooms/types"
)

func newTestAdmin(t *testing.T) (*admin, *bytes.Buffer) {
	p, err := persistence.NewMemoryPersister()
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	blobs, err := storage.NewLocalStore(config.StorageConfig{UploadDir: t.TempDir()})
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return &admin{
		persister: p,
		rooms:     room.NewService(p, blobs),
		accounts:  auth.NewService(p, &config.Config{}),
		out:       out,
	}, out
}

func (a *admin) run(t *testing.T, out *bytes.Buffer, args ...string) (string, error) {
	out.Reset()
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestSetAndShowUsers(t *testing.T) {
	a, out := newTestAdmin(t)
	_, err := a.run(t, out, "set", "user", `{"email":"Admin@Example.com","username":"Admin","name":"Admin","password":"long enough"}`)
	require.NoError(t, err)

	a.in = strings.NewReader(`{"email":"bad","username":"x","password":"short"}`)
	_, err = a.run(t, out, "set", "user", "-")
	assert.Error(t, err)

	res, err := a.run(t, out, "show", "users")
	require.NoError(t, err)
	var users []*types.Account
	require.NoError(t, json.Unmarshal([]byte(res), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.NotContains(t, res, "password")

	res, err = a.run(t, out, "show", "user", strconv.FormatUint(uint64(users[0].ID), 10))
	require.NoError(t, err)
	assert.Contains(t, res, `"username":"admin"`)

	_, err = a.run(t, out, "show", "user", "999")
	assert.Error(t, err)
	_, err = a.run(t, out, "show", "user", "abc")
	assert.Error(t, err)
}

func TestShowAndDeleteRooms(t *testing.T) {
	a, out := newTestAdmin(t)
	ctx := context.Background()
	host := &types.User{Email: "host@example.com", Username: "host"}
	require.NoError(t, a.persister.CreateUser(ctx, host))
	goRoom, err := a.rooms.CreateRoom(ctx, host, room.RoomInput{Name: "gophers", Topic: "Go", Price: "3"})
	require.NoError(t, err)
	_, err = a.rooms.CreateRoom(ctx, host, room.RoomInput{Name: "crabs", Topic: "Rust", Price: "30"})
	require.NoError(t, err)

	res, err := a.run(t, out, "show", "rooms", "--filter", `Topic == "Go" && Price < 10`)
	require.NoError(t, err)
	var rooms []*types.Room
	require.NoError(t, json.Unmarshal([]byte(res), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, goRoom.ID, rooms[0].ID)

	_, err = a.run(t, out, "show", "rooms", "--filter", `Topic +`)
	assert.Error(t, err)

	res, err = a.run(t, out, "show", "topics", "RU")
	require.NoError(t, err)
	assert.Contains(t, res, "Rust")
	assert.NotContains(t, res, `"Go"`)

	id := strconv.FormatUint(uint64(goRoom.ID), 10)
	res, err = a.run(t, out, "show", "room", id)
	require.NoError(t, err)
	assert.Contains(t, res, "gophers")

	_, err = a.run(t, out, "delete", "room", id)
	require.NoError(t, err)
	_, err = a.run(t, out, "show", "room", id)
	assert.Error(t, err)
}
