// Package services contains the server's business logic. UserService
// handles registration, login, token verification and the profile view.
package services

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/auth"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/models"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/storage"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Email    string
	Password string
	Username string
	Name     string
	Age      int
}

// AuthResult is a user together with a freshly issued session token.
type AuthResult struct {
	User  *models.User
	Token string
}

// Profile is what the profile page shows.
type Profile struct {
	User       *models.User
	Posts      []*models.Post
	PictureURL string
}

type UserService struct {
	repomanager           repomanager.RepositoryManager
	images                storage.ImageStore
	logger                logging.Logger
	jwtSecret             []byte
	tokenValidityDuration time.Duration
	bcryptCost            int
	storeTimeout          time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService. images may be nil, in which case
// profiles carry no picture URL.
func NewUserService(m repomanager.RepositoryManager, images storage.ImageStore, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		repomanager:           m,
		images:                images,
		logger:                logger.With("module", "users"),
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		bcryptCost:            cfg.BcryptCost,
		storeTimeout:          cfg.StoreTimeout,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(in *RegisterInput) error {
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email {
		return fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	if len(in.Password) > auth.MaxPasswordLength {
		return fmt.Errorf("%w: password is longer than %d bytes", common.ErrValidation, auth.MaxPasswordLength)
	}
	if strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if in.Age < 0 {
		return fmt.Errorf("%w: age must not be negative", common.ErrValidation)
	}
	return nil
}

// Register creates a user and issues a token. An existing email yields
// common.ErrDuplicateUser and nothing is written.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateRegistration(&in); err != nil {
		return nil, err
	}

	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	repo := s.repomanager.Users()

	_, err := repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateUser
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		Age:          in.Age,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the password and issues a token. Unknown emails and wrong
// passwords both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users().GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// equalize timing with the known-user path
			_ = auth.CheckPassword(s.dummyPasswordHash(), password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("error checking password: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate verifies a session token.
func (s *UserService) Authenticate(_ context.Context, token string) (*models.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// Profile loads the user and every post the user owns. The post list comes
// from the posts collection, so stale references on the user are ignored.
func (s *UserService) Profile(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := withStoreTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.repomanager.Posts().ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	p := &Profile{User: user, Posts: posts}
	if user.ProfilePicture != "" && s.images != nil {
		u, err := s.images.URL(ctx, user.ProfilePicture)
		if err != nil {
			s.logger.Warn(ctx, "profile picture url", "user_id", user.ID, "error", err)
		} else {
			p.PictureURL = u
		}
	}
	return p, nil
}

func (s *UserService) issueToken(user *models.User) (string, error) {
	token, err := auth.GenerateToken(models.Identity{Email: user.Email, UserID: user.ID}, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("error generating token: %w", err)
	}
	return token, nil
}

func (s *UserService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword(hex.EncodeToString(common.GenerateRandByteArray(16)), s.bcryptCost)
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}
