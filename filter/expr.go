package filter

import (
	"fmt"

	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	"github.com/tcriess/lightspeed-rooms/types"
)

// CompileRoomFilter compiles a boolean expression over RoomEnv.
func CompileRoomFilter(code string) (*vm.Program, error) {
	return expr.Compile(code, expr.Env(RoomEnv{}), expr.AsBool())
}

// NewRoomEnv flattens a room (with host, topic and participants loaded) into the filter environment.
func NewRoomEnv(room *types.Room) RoomEnv {
	env := RoomEnv{
		Id:           room.ID,
		Name:         room.Name,
		Description:  room.Description,
		Topic:        room.TopicName(),
		Price:        room.Price,
		Participants: len(room.Participants),
		Created:      room.CreatedAt.Unix(),
	}
	if room.Host != nil {
		env.Host = room.Host.Username
		env.HostEmail = room.Host.Email
	}
	return env
}

// RunRoomFilter evaluates prog against room. A nil program matches every room.
func RunRoomFilter(prog *vm.Program, room *types.Room) (bool, error) {
	if prog == nil {
		return true, nil
	}
	res, err := expr.Run(prog, NewRoomEnv(room))
	if err != nil {
		return false, err
	}
	b, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("filter result is %T, not bool", res)
	}
	return b, nil
}

// RoomFilter turns a compiled program into a predicate; evaluation errors count as no match.
func RoomFilter(prog *vm.Program) RoomPredicate {
	return func(r *types.Room) bool {
		ok, err := RunRoomFilter(prog, r)
		return err == nil && ok
	}
}
