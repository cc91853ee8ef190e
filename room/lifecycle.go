package room

import (
	"context"
	"errors"
	"strings"

	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/persistence"
	"github.com/tcriess/lightspeed-rooms/types"
)

// CreateRoom creates a room hosted by actor. The topic is looked up ignoring case and created if it does not exist
// yet, in the same transaction as the room.
func (s *Service) CreateRoom(ctx context.Context, actor *types.User, in RoomInput) (*types.Room, error) {
	if actor == nil {
		return nil, types.ErrForbidden
	}
	err := in.Validate()
	if err != nil {
		return nil, err
	}
	in = in.normalize()
	image, err := s.saveUpload(ctx, "image", in.Image)
	if err != nil {
		return nil, err
	}
	var room *types.Room
	err = s.persister.Transaction(ctx, func(tx persistence.Persister) error {
		topic, err := tx.GetOrCreateTopic(ctx, in.Topic)
		if err != nil {
			return err
		}
		created := &types.Room{
			Name:        in.Name,
			Description: in.Description,
			Price:       in.PriceValue(),
			Image:       image,
			HostID:      actor.ID,
			TopicID:     topic.ID,
		}
		err = tx.CreateRoom(ctx, created)
		if err != nil {
			return err
		}
		room, err = tx.GetRoom(ctx, created.ID)
		return err
	})
	if err != nil {
		s.dropBlob(ctx, image)
		return nil, err
	}
	globals.AppLogger.Info("created room", "room", room.ID, "host", actor.ID, "topic", room.TopicName())
	return room, nil
}

// RoomForEdit returns room id if actor may change it.
func (s *Service) RoomForEdit(ctx context.Context, actor *types.User, id uint) (*types.Room, error) {
	room, err := s.persister.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	err = CanEditRoom(actor, room)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateRoom replaces the fields of room id. The image is only replaced if in carries one.
func (s *Service) UpdateRoom(ctx context.Context, actor *types.User, id uint, in RoomInput) (*types.Room, error) {
	_, err := s.RoomForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	err = in.Validate()
	if err != nil {
		return nil, err
	}
	in = in.normalize()
	image, err := s.saveUpload(ctx, "image", in.Image)
	if err != nil {
		return nil, err
	}
	var room *types.Room
	var oldImage string
	err = s.persister.Transaction(ctx, func(tx persistence.Persister) error {
		current, err := tx.GetRoom(ctx, id)
		if err != nil {
			return err
		}
		err = CanEditRoom(actor, current)
		if err != nil {
			return err
		}
		topic, err := tx.GetOrCreateTopic(ctx, in.Topic)
		if err != nil {
			return err
		}
		current.Name = in.Name
		current.Description = in.Description
		current.Price = in.PriceValue()
		current.TopicID = topic.ID
		if image != "" {
			oldImage = current.Image
			current.Image = image
		}
		err = tx.SaveRoom(ctx, current)
		if err != nil {
			return err
		}
		room, err = tx.GetRoom(ctx, id)
		return err
	})
	if err != nil {
		s.dropBlob(ctx, image)
		return nil, err
	}
	s.dropBlob(ctx, oldImage)
	globals.AppLogger.Info("updated room", "room", room.ID)
	return room, nil
}

// DeleteRoom deletes room id together with its messages, if actor is its host.
func (s *Service) DeleteRoom(ctx context.Context, actor *types.User, id uint) (*types.Room, error) {
	return s.deleteRoom(ctx, id, func(room *types.Room) error {
		return CanEditRoom(actor, room)
	})
}

// RemoveRoom deletes room id regardless of its host. It is meant for administration.
func (s *Service) RemoveRoom(ctx context.Context, id uint) (*types.Room, error) {
	return s.deleteRoom(ctx, id, func(*types.Room) error { return nil })
}

func (s *Service) deleteRoom(ctx context.Context, id uint, gate func(*types.Room) error) (*types.Room, error) {
	var room *types.Room
	err := s.persister.Transaction(ctx, func(tx persistence.Persister) error {
		var err error
		room, err = tx.GetRoom(ctx, id)
		if err != nil {
			return err
		}
		err = gate(room)
		if err != nil {
			return err
		}
		return tx.DeleteRoom(ctx, room)
	})
	if err != nil {
		return nil, err
	}
	s.dropBlob(ctx, room.Image)
	globals.AppLogger.Info("deleted room", "room", room.ID)
	return room, nil
}

// PostMessage adds a message by actor to room roomID and makes actor a participant of the room.
func (s *Service) PostMessage(ctx context.Context, actor *types.User, roomID uint, in MessageInput) (*types.Message, error) {
	if actor == nil {
		return nil, types.ErrForbidden
	}
	_, err := s.persister.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	err = in.Validate()
	if err != nil {
		return nil, err
	}
	var message *types.Message
	err = s.persister.Transaction(ctx, func(tx persistence.Persister) error {
		room, err := tx.GetRoom(ctx, roomID)
		if err != nil {
			return err
		}
		created := &types.Message{Body: strings.TrimSpace(in.Body), UserID: actor.ID, RoomID: room.ID}
		err = tx.CreateMessage(ctx, created)
		if err != nil {
			return err
		}
		err = tx.AddParticipant(ctx, room, actor)
		if err != nil {
			return err
		}
		message, err = tx.GetMessage(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	globals.AppLogger.Debug("posted message", "message", message.ID, "room", roomID, "user", actor.ID)
	return message, nil
}

// MessageForDelete returns message id if actor may delete it.
func (s *Service) MessageForDelete(ctx context.Context, actor *types.User, id uint) (*types.Message, error) {
	message, err := s.persister.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	err = CanDeleteMessage(actor, message)
	if err != nil {
		return nil, err
	}
	return message, nil
}

// DeleteMessage deletes message id if actor wrote it. The author stays a participant of the room.
func (s *Service) DeleteMessage(ctx context.Context, actor *types.User, id uint) (*types.Message, error) {
	var message *types.Message
	err := s.persister.Transaction(ctx, func(tx persistence.Persister) error {
		var err error
		message, err = tx.GetMessage(ctx, id)
		if err != nil {
			return err
		}
		err = CanDeleteMessage(actor, message)
		if err != nil {
			return err
		}
		return tx.DeleteMessage(ctx, message)
	})
	if err != nil {
		return nil, err
	}
	globals.AppLogger.Debug("deleted message", "message", message.ID, "room", message.RoomID)
	return message, nil
}

// UpdateProfile applies the non-nil fields of in to actor's account. Email and username are stored lower-case and
// must stay unique.
func (s *Service) UpdateProfile(ctx context.Context, actor *types.User, in ProfileInput) (*types.User, error) {
	if actor == nil {
		return nil, types.ErrForbidden
	}
	err := in.Validate()
	if err != nil {
		return nil, err
	}
	avatar, err := s.saveUpload(ctx, "avatar", in.Avatar)
	if err != nil {
		return nil, err
	}
	var user *types.User
	var oldAvatar string
	err = s.persister.Transaction(ctx, func(tx persistence.Persister) error {
		var err error
		user, err = tx.GetUser(ctx, actor.ID)
		if err != nil {
			return err
		}
		var ve *types.ValidationError
		if in.Email != nil {
			user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
			taken, err := tx.EmailTaken(ctx, user.Email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				ve = ve.Add("email", "User with this Email already exists.")
			}
		}
		if in.Username != nil {
			user.Username = strings.ToLower(strings.TrimSpace(*in.Username))
			taken, err := tx.UsernameTaken(ctx, user.Username, user.ID)
			if err != nil {
				return err
			}
			if taken {
				ve = ve.Add("username", "A user with that username already exists.")
			}
		}
		if ve != nil {
			return ve
		}
		if in.Name != nil {
			user.Name = strings.TrimSpace(*in.Name)
		}
		if in.Bio != nil {
			user.Bio = *in.Bio
		}
		if avatar != "" {
			oldAvatar = user.Avatar
			user.Avatar = avatar
		}
		return tx.SaveUser(ctx, user)
	})
	if errors.Is(err, persistence.ErrDuplicate) {
		err = types.NewValidationError("__all__", "Email or username already in use.")
	}
	if err != nil {
		s.dropBlob(ctx, avatar)
		return nil, err
	}
	s.dropBlob(ctx, oldAvatar)
	globals.AppLogger.Info("updated profile", "user", user.ID)
	return user, nil
}
