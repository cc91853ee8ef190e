package filter

import (
	"strings"

	"github.com/tcriess/lightspeed-rooms/types"
	"golang.org/x/text/cases"
)

/*
Search predicates. The home listing, the activity feed and the topic listing all filter with a substring of the
query q. An empty q is a substring of every string, so it matches everything without any special casing.
*/

type RoomPredicate func(*types.Room) bool

type MessagePredicate func(*types.Message) bool

type TopicPredicate func(*types.Topic) bool

// Contains is the case-sensitive substring match.
func Contains(s, q string) bool {
	return strings.Contains(s, q)
}

// ContainsFold is the case-insensitive substring match (full Unicode case folding).
func ContainsFold(s, q string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(q))
}

func RoomTopicContainsFold(q string) RoomPredicate {
	return func(r *types.Room) bool {
		return ContainsFold(r.TopicName(), q)
	}
}

func RoomNameContains(q string) RoomPredicate {
	return func(r *types.Room) bool {
		return Contains(r.Name, q)
	}
}

func RoomDescriptionContains(q string) RoomPredicate {
	return func(r *types.Room) bool {
		return Contains(r.Description, q)
	}
}

// AnyRoom is the union of the given predicates.
func AnyRoom(preds ...RoomPredicate) RoomPredicate {
	return func(r *types.Room) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}

// RoomSearch matches rooms whose topic name contains q ignoring case, or whose name or description contains q.
func RoomSearch(q string) RoomPredicate {
	return AnyRoom(RoomTopicContainsFold(q), RoomNameContains(q), RoomDescriptionContains(q))
}

// MessageTopicContainsFold matches messages posted in a room whose topic name contains q ignoring case.
func MessageTopicContainsFold(q string) MessagePredicate {
	return func(m *types.Message) bool {
		return ContainsFold(m.TopicName(), q)
	}
}

func TopicNameContainsFold(q string) TopicPredicate {
	return func(t *types.Topic) bool {
		return ContainsFold(t.Name, q)
	}
}

// Rooms returns the rooms matching pred, keeping their order. A room occurs at most once in the result.
func Rooms(rooms []*types.Room, pred RoomPredicate) []*types.Room {
	res := make([]*types.Room, 0, len(rooms))
	seen := make(map[uint]struct{}, len(rooms))
	for _, r := range rooms {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		if pred(r) {
			seen[r.ID] = struct{}{}
			res = append(res, r)
		}
	}
	return res
}

func Messages(messages []*types.Message, pred MessagePredicate) []*types.Message {
	res := make([]*types.Message, 0, len(messages))
	for _, m := range messages {
		if pred(m) {
			res = append(res, m)
		}
	}
	return res
}

func Topics(topics []*types.Topic, pred TopicPredicate) []*types.Topic {
	res := make([]*types.Topic, 0, len(topics))
	for _, t := range topics {
		if pred(t) {
			res = append(res, t)
		}
	}
	return res
}
