package services

import (
	"context"
	"errors"
	"strings"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
)

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

// Session is what register and login hand back to the client.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Accounts struct {
	users  UserStore
	tokens *utils.JWTManager
}

func NewAccounts(users UserStore, tokens *utils.JWTManager) *Accounts {
	return &Accounts{users: users, tokens: tokens}
}

// Register always creates a plain user; admins come from the seed command.
// Field formats are checked by the binding tags on RegisterInput.
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.Validation("Please provide name, email and password")
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    strings.TrimSpace(in.Phone),
		Password: in.Password,
		Role:     models.UserRoleUser,
	}
	if err := user.HashPassword(); err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	err := a.users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.ConflictError{Msg: "User already exists", Err: err}
	}
	if err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	logging.FromContext(ctx).WithField("user_id", user.ID).Info("user registered")
	return a.session(user)
}

func (a *Accounts) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.Validation("Please provide email and password")
	}

	user, err := a.users.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	if err := user.CheckPassword(in.Password); err != nil {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	return a.session(user)
}

func (a *Accounts) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := a.users.FindUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("User")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load user", err)
	}
	return user, nil
}

func (a *Accounts) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*models.User, error) {
	user, err := a.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.ValidationError{Field: "name", Msg: "Name cannot be empty"}
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Password != nil {
		user.Password = *in.Password
		if err := user.HashPassword(); err != nil {
			return nil, apperrors.Internal("failed to hash password", err)
		}
	}

	if err := a.users.SaveUser(ctx, user); err != nil {
		return nil, apperrors.Internal("failed to update user", err)
	}
	return user, nil
}

func (a *Accounts) session(user *models.User) (*Session, error) {
	token, err := a.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	return &Session{Token: token, User: *user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
