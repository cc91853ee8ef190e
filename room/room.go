package room

import (
	"context"
	"errors"

	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/persistence"
	"github.com/tcriess/lightspeed-rooms/storage"
	"github.com/tcriess/lightspeed-rooms/types"
)

// Service implements the room, message and profile operations on top of a Persister. Every mutation runs in one
// transaction; uploaded images are handed to the blob store before the transaction starts.
type Service struct {
	persister persistence.Persister
	blobs     storage.BlobStore
}

func NewService(persister persistence.Persister, blobs storage.BlobStore) *Service {
	return &Service{persister: persister, blobs: blobs}
}

// CanEditRoom returns types.ErrForbidden unless actor is the host of room. It guards update and delete.
func CanEditRoom(actor *types.User, room *types.Room) error {
	if actor == nil || actor.ID == 0 || actor.ID != room.HostID {
		return types.ErrForbidden
	}
	return nil
}

// CanDeleteMessage returns types.ErrForbidden unless actor wrote message.
func CanDeleteMessage(actor *types.User, message *types.Message) error {
	if actor == nil || actor.ID == 0 || actor.ID != message.UserID {
		return types.ErrForbidden
	}
	return nil
}

// saveUpload stores upload and returns its reference, "" if there is nothing to store.
func (s *Service) saveUpload(ctx context.Context, field string, upload *storage.Upload) (string, error) {
	if upload == nil {
		return "", nil
	}
	ref, err := s.blobs.Save(ctx, upload)
	if errors.Is(err, storage.ErrTooLarge) {
		return "", UploadTooLarge(field)
	}
	return ref, err
}

// UploadTooLarge is the validation failure reported for an upload exceeding the size limit.
func UploadTooLarge(field string) *types.ValidationError {
	return types.NewValidationError(field, "The uploaded file is too large.")
}

// dropBlob removes a blob which is no longer referenced. Failures are left to the sweeper.
func (s *Service) dropBlob(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	err := s.blobs.Delete(ctx, ref)
	if err != nil {
		globals.AppLogger.Warn("could not delete blob", "ref", ref, "error", err)
	}
}
