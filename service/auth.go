package service

import (
	"context"
	"strings"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrGoogleAccount      = errors.New("this account uses Google sign-in")
	ErrInactive           = errors.New("account is deactivated")
)

type AuthService struct {
	users store.UserStore
	now   func() time.Time
}

func NewAuthService(users store.UserStore) *AuthService {
	return &AuthService{users: users, now: func() time.Time { return time.Now().UTC() }}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	email := store.NormalizeEmail(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	now := s.now()
	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  hash,
		Phone:     strings.TrimSpace(req.Phone),
		Provider:  models.ProviderLocal,
		Role:      models.RoleUser,
		IsActive:  true,
		LastLogin: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Login checks a password. Unknown emails and wrong passwords produce the
// same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.HasPassword() {
		return nil, ErrGoogleAccount
	}
	if utils.CheckPassword(user.Password, req.Password) != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactive
	}
	return s.touch(ctx, user, bson.M{})
}

// ResolveGoogleUser maps a Google profile to an account: first by Google id,
// then by email (linking the Google identity), otherwise a new account.
func (s *AuthService) ResolveGoogleUser(ctx context.Context, profile *models.GoogleProfile) (*models.User, error) {
	if profile == nil || profile.Subject == "" || profile.Email == "" {
		return nil, errors.New("incomplete google profile")
	}

	user, err := s.matchGoogleUser(ctx, profile)
	if !errors.Is(err, store.ErrNotFound) {
		return user, err
	}

	now := s.now()
	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = strings.SplitN(profile.Email, "@", 2)[0]
	}
	user = &models.User{
		GoogleID:  profile.Subject,
		Name:      name,
		Email:     profile.Email,
		Avatar:    profile.Picture,
		Provider:  models.ProviderGoogle,
		Role:      models.RoleUser,
		IsActive:  true,
		LastLogin: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent first sign-in for the same identity won the insert.
		if errors.Is(err, store.ErrDuplicate) {
			return s.matchGoogleUser(ctx, profile)
		}
		return nil, err
	}
	return user, nil
}

// matchGoogleUser returns the account for profile, linking the Google
// identity to an email match. It returns store.ErrNotFound when neither
// lookup matches.
func (s *AuthService) matchGoogleUser(ctx context.Context, profile *models.GoogleProfile) (*models.User, error) {
	user, err := s.users.FindByGoogleID(ctx, profile.Subject)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, ErrInactive
		}
		set := bson.M{}
		if profile.Picture != "" {
			set["avatar"] = profile.Picture
		}
		return s.touch(ctx, user, set)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	user, err = s.users.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInactive
	}
	set := bson.M{"googleId": profile.Subject, "provider": models.ProviderGoogle}
	if profile.Picture != "" {
		set["avatar"] = profile.Picture
	}
	return s.touch(ctx, user, set)
}

// EnsureAdmin creates an admin account, or promotes and re-activates the
// existing account with that email. An empty password keeps the current one.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*models.User, bool, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	if err == nil {
		set := bson.M{"role": models.RoleAdmin, "isActive": true}
		if password != "" {
			hash, err := utils.HashPassword(password)
			if err != nil {
				return nil, false, errors.Wrap(err, "hash password")
			}
			set["password"] = hash
		}
		updated, err := s.users.Update(ctx, user.ID, set)
		return updated, false, err
	}

	if len(password) < 6 {
		return nil, false, errors.New("password must be at least 6 characters")
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, errors.Wrap(err, "hash password")
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	user = &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Provider: models.ProviderLocal,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *AuthService) touch(ctx context.Context, user *models.User, set bson.M) (*models.User, error) {
	set["lastLogin"] = s.now()
	return s.users.Update(ctx, user.ID, set)
}
