package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	roomOrder    = "rooms.updated_at DESC, rooms.created_at DESC, rooms.id DESC"
	messageOrder = "messages.updated_at DESC, messages.created_at DESC, messages.id DESC"
)

type GormPersist struct {
	db *gorm.DB
}

func NewGormPersister(cfg *config.Config) (Persister, error) {
	db, err := setupGormDB(cfg.PersistenceConfig)
	if err != nil {
		return nil, err
	}
	return &GormPersist{db: db}, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
}

func setupGormDB(cfg config.PersistenceConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("no database dsn configured")
	}
	var db *gorm.DB
	var err error
	switch cfg.Type {
	case "postgres":
		db, err = openPostgres(cfg.DSN)

	case "sqlite":
		db, err = openSQLite(cfg.DSN)

	default:
		return nil, fmt.Errorf("invalid persistence type %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	err = db.AutoMigrate(&types.User{}, &types.Topic{}, &types.Room{}, &types.Message{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func convertError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return types.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %s", ErrDuplicate, err)
	}
	return err
}

func (p *GormPersist) Transaction(ctx context.Context, fn func(Persister) error) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormPersist{db: tx})
	})
}

func (p *GormPersist) CreateUser(ctx context.Context, user *types.User) error {
	return convertError(p.db.WithContext(ctx).Create(user).Error)
}

func (p *GormPersist) SaveUser(ctx context.Context, user *types.User) error {
	return convertError(p.db.WithContext(ctx).Save(user).Error)
}

func (p *GormPersist) GetUser(ctx context.Context, id uint) (*types.User, error) {
	user := &types.User{}
	err := p.db.WithContext(ctx).First(user, id).Error
	if err != nil {
		return nil, convertError(err)
	}
	return user, nil
}

func (p *GormPersist) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	user := &types.User{}
	err := p.db.WithContext(ctx).Where("email = ?", email).First(user).Error
	if err != nil {
		return nil, convertError(err)
	}
	return user, nil
}

func (p *GormPersist) GetUsers(ctx context.Context) ([]*types.User, error) {
	users := make([]*types.User, 0)
	err := p.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, convertError(err)
}

func (p *GormPersist) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	return p.taken(ctx, "email", email, exceptID)
}

func (p *GormPersist) UsernameTaken(ctx context.Context, username string, exceptID uint) (bool, error) {
	return p.taken(ctx, "username", username, exceptID)
}

func (p *GormPersist) taken(ctx context.Context, column, value string, exceptID uint) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&types.User{}).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Where("id <> ?", exceptID).
		Count(&count).Error
	return count > 0, convertError(err)
}

func (p *GormPersist) GetOrCreateTopic(ctx context.Context, name string) (*types.Topic, error) {
	key := types.TopicKey(name)
	db := p.db.WithContext(ctx)
	candidate := types.Topic{Name: name, NameKey: key}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name_key"}},
		DoNothing: true,
	}).Create(&candidate).Error
	if err != nil {
		return nil, convertError(err)
	}
	topic := &types.Topic{}
	err = db.Where("name_key = ?", key).First(topic).Error
	if err != nil {
		return nil, convertError(err)
	}
	return topic, nil
}

func (p *GormPersist) GetTopics(ctx context.Context, limit int) ([]*types.Topic, error) {
	topics := make([]*types.Topic, 0)
	q := p.db.WithContext(ctx).Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&topics).Error
	return topics, convertError(err)
}

func (p *GormPersist) rooms(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx).Preload("Host").Preload("Topic").Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("users.id")
	})
}

func (p *GormPersist) GetRoom(ctx context.Context, id uint) (*types.Room, error) {
	room := &types.Room{}
	err := p.rooms(ctx).First(room, id).Error
	if err != nil {
		return nil, convertError(err)
	}
	return room, nil
}

func (p *GormPersist) GetRooms(ctx context.Context) ([]*types.Room, error) {
	rooms := make([]*types.Room, 0)
	err := p.rooms(ctx).Order(roomOrder).Find(&rooms).Error
	return rooms, convertError(err)
}

func (p *GormPersist) GetRoomsByHost(ctx context.Context, hostID uint) ([]*types.Room, error) {
	rooms := make([]*types.Room, 0)
	err := p.rooms(ctx).Where("host_id = ?", hostID).Order(roomOrder).Find(&rooms).Error
	return rooms, convertError(err)
}

func (p *GormPersist) CreateRoom(ctx context.Context, room *types.Room) error {
	return convertError(p.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error)
}

func (p *GormPersist) SaveRoom(ctx context.Context, room *types.Room) error {
	return convertError(p.db.WithContext(ctx).Omit(clause.Associations).Save(room).Error)
}

func (p *GormPersist) DeleteRoom(ctx context.Context, room *types.Room) error {
	db := p.db.WithContext(ctx)
	err := db.Where("room_id = ?", room.ID).Delete(&types.Message{}).Error
	if err != nil {
		return convertError(err)
	}
	err = db.Model(room).Association("Participants").Clear()
	if err != nil {
		return convertError(err)
	}
	return convertError(db.Delete(room).Error)
}

func (p *GormPersist) AddParticipant(ctx context.Context, room *types.Room, user *types.User) error {
	for _, u := range room.Participants {
		if u.ID == user.ID {
			return nil
		}
	}
	err := p.db.WithContext(ctx).Model(room).Omit("Participants.*").Association("Participants").Append(user)
	return convertError(err)
}

func (p *GormPersist) messages(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx).Preload("User").Preload("Room").Preload("Room.Topic")
}

func (p *GormPersist) GetMessage(ctx context.Context, id uint) (*types.Message, error) {
	message := &types.Message{}
	err := p.messages(ctx).First(message, id).Error
	if err != nil {
		return nil, convertError(err)
	}
	return message, nil
}

func (p *GormPersist) GetMessages(ctx context.Context) ([]*types.Message, error) {
	messages := make([]*types.Message, 0)
	err := p.messages(ctx).Order(messageOrder).Find(&messages).Error
	return messages, convertError(err)
}

func (p *GormPersist) GetRoomMessages(ctx context.Context, roomID uint) ([]*types.Message, error) {
	messages := make([]*types.Message, 0)
	err := p.messages(ctx).Where("room_id = ?", roomID).Order(messageOrder).Find(&messages).Error
	return messages, convertError(err)
}

func (p *GormPersist) GetUserMessages(ctx context.Context, userID uint) ([]*types.Message, error) {
	messages := make([]*types.Message, 0)
	err := p.messages(ctx).Where("user_id = ?", userID).Order(messageOrder).Find(&messages).Error
	return messages, convertError(err)
}

func (p *GormPersist) CreateMessage(ctx context.Context, message *types.Message) error {
	return convertError(p.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error)
}

func (p *GormPersist) DeleteMessage(ctx context.Context, message *types.Message) error {
	return convertError(p.db.WithContext(ctx).Delete(message).Error)
}

func (p *GormPersist) ImageRefs(ctx context.Context) ([]string, error) {
	var roomImages, avatars []string
	db := p.db.WithContext(ctx)
	err := db.Model(&types.Room{}).Where("image <> ''").Pluck("image", &roomImages).Error
	if err != nil {
		return nil, convertError(err)
	}
	err = db.Model(&types.User{}).Where("avatar <> ''").Pluck("avatar", &avatars).Error
	if err != nil {
		return nil, convertError(err)
	}
	return append(roomImages, avatars...), nil
}

func (p *GormPersist) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	globals.AppLogger.Debug("closing database")
	return sqlDB.Close()
}
