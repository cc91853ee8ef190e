package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/folkengine/goname"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/persistence"
	"github.com/tcriess/lightspeed-rooms/types"
)

type RegisterInput struct {
	Name      string `mapstructure:"name" validate:"max=200"`
	Username  string `mapstructure:"username" validate:"required,max=150"`
	Email     string `mapstructure:"email" validate:"required,email,max=254"`
	Password1 string `mapstructure:"password1" validate:"required,min=8"`
	Password2 string `mapstructure:"password2" validate:"required,eqfield=Password1"`
}

func (in RegisterInput) Validate() error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return types.Validate(in).OrNil()
}

type LoginInput struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// Service implements the account flows: registration, password login and OIDC login.
type Service struct {
	persister persistence.Persister
	cfg       *config.Config
	// verifyIDToken resolves an id token to an email address, Authenticate by default
	verifyIDToken func(ctx context.Context, idToken, provider string) (string, error)
}

func NewService(persister persistence.Persister, cfg *config.Config) *Service {
	s := &Service{persister: persister, cfg: cfg}
	s.verifyIDToken = func(ctx context.Context, idToken, provider string) (string, error) {
		return Authenticate(ctx, idToken, provider, s.cfg)
	}
	return s
}

func (s *Service) GetUser(ctx context.Context, id uint) (*types.User, error) {
	return s.persister.GetUser(ctx, id)
}

// Register creates an account. Username and email are stored lower-case; a blank display name is replaced by a
// generated one.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	err := in.Validate()
	if err != nil {
		return nil, err
	}
	user := &types.User{
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
		Username: strings.ToLower(strings.TrimSpace(in.Username)),
		Name:     strings.TrimSpace(in.Name),
	}
	if user.Name == "" {
		user.Name = goname.New(goname.FantasyMap).FirstLast()
	}
	user.PasswordHash, err = HashPassword(in.Password1)
	if err != nil {
		return nil, err
	}
	err = s.persister.Transaction(ctx, func(tx persistence.Persister) error {
		var ve *types.ValidationError
		taken, err := tx.EmailTaken(ctx, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			ve = ve.Add("email", "User with this Email already exists.")
		}
		taken, err = tx.UsernameTaken(ctx, user.Username, 0)
		if err != nil {
			return err
		}
		if taken {
			ve = ve.Add("username", "A user with that username already exists.")
		}
		if ve != nil {
			return ve
		}
		return tx.CreateUser(ctx, user)
	})
	if errors.Is(err, persistence.ErrDuplicate) {
		return nil, types.NewValidationError("__all__", "An error occurred during registration.")
	}
	if err != nil {
		return nil, err
	}
	globals.AppLogger.Info("registered user", "user", user.ID, "username", user.Username)
	return user, nil
}

// Login checks email (compared lower-case) and password. Unknown accounts and wrong passwords both yield
// types.ErrAuthFailed.
func (s *Service) Login(ctx context.Context, in LoginInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, types.ErrAuthFailed
	}
	user, err := s.persister.GetUserByEmail(ctx, email)
	if errors.Is(err, types.ErrNotFound) {
		globals.AppLogger.Debug("login for unknown email", "email", email)
		return nil, types.ErrAuthFailed
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, in.Password) {
		globals.AppLogger.Debug("wrong password", "user", user.ID)
		return nil, types.ErrAuthFailed
	}
	return user, nil
}

// LoginWithIDToken verifies idToken with the named provider and returns the account registered under the token's
// email address.
func (s *Service) LoginWithIDToken(ctx context.Context, provider, idToken string) (*types.User, error) {
	email, err := s.verifyIDToken(ctx, idToken, provider)
	if err != nil {
		globals.AppLogger.Info("oidc login failed", "provider", provider, "error", err)
		return nil, fmt.Errorf("%w: %s", types.ErrAuthFailed, err)
	}
	user, err := s.persister.GetUserByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.ErrAuthFailed
	}
	return user, err
}
