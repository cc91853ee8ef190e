package room

import (
	"context"

	"github.com/tcriess/lightspeed-rooms/filter"
	"github.com/tcriess/lightspeed-rooms/types"
)

// number of topics in the home page sidebar
const sidebarTopics = 5

type HomeView struct {
	Rooms        []*types.Room    `json:"rooms"`
	RoomCount    int              `json:"room_count"`
	Topics       []*types.Topic   `json:"topics"`
	RoomMessages []*types.Message `json:"room_messages"`
}

type RoomView struct {
	Room         *types.Room      `json:"room"`
	RoomMessages []*types.Message `json:"room_messages"`
	Participants []*types.User    `json:"participants"`
}

type ProfileView struct {
	User         *types.User      `json:"user"`
	Rooms        []*types.Room    `json:"rooms"`
	RoomMessages []*types.Message `json:"room_messages"`
	Topics       []*types.Topic   `json:"topics"`
}

// Home returns the rooms matching q (topic name ignoring case, room name or description verbatim), the first topics
// and the messages of rooms whose topic matches q. An empty q matches everything.
func (s *Service) Home(ctx context.Context, q string) (*HomeView, error) {
	rooms, err := s.persister.GetRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms = filter.Rooms(rooms, filter.RoomSearch(q))
	topics, err := s.persister.GetTopics(ctx, sidebarTopics)
	if err != nil {
		return nil, err
	}
	messages, err := s.Activity(ctx, q)
	if err != nil {
		return nil, err
	}
	return &HomeView{
		Rooms:        rooms,
		RoomCount:    len(rooms),
		Topics:       topics,
		RoomMessages: messages,
	}, nil
}

// Activity returns the messages of all rooms whose topic name contains q, ignoring case.
func (s *Service) Activity(ctx context.Context, q string) ([]*types.Message, error) {
	messages, err := s.persister.GetMessages(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Messages(messages, filter.MessageTopicContainsFold(q)), nil
}

// Topics returns the topics whose name contains q, ignoring case.
func (s *Service) Topics(ctx context.Context, q string) ([]*types.Topic, error) {
	topics, err := s.persister.GetTopics(ctx, 0)
	if err != nil {
		return nil, err
	}
	return filter.Topics(topics, filter.TopicNameContainsFold(q)), nil
}

func (s *Service) AllTopics(ctx context.Context) ([]*types.Topic, error) {
	return s.persister.GetTopics(ctx, 0)
}

func (s *Service) GetRoom(ctx context.Context, id uint) (*types.Room, error) {
	return s.persister.GetRoom(ctx, id)
}

func (s *Service) Room(ctx context.Context, id uint) (*RoomView, error) {
	room, err := s.persister.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	messages, err := s.persister.GetRoomMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RoomView{Room: room, RoomMessages: messages, Participants: room.Participants}, nil
}

func (s *Service) Profile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.persister.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rooms, err := s.persister.GetRoomsByHost(ctx, userID)
	if err != nil {
		return nil, err
	}
	messages, err := s.persister.GetUserMessages(ctx, userID)
	if err != nil {
		return nil, err
	}
	topics, err := s.persister.GetTopics(ctx, 0)
	if err != nil {
		return nil, err
	}
	return &ProfileView{User: user, Rooms: rooms, RoomMessages: messages, Topics: topics}, nil
}
