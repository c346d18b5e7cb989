package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-todo-api/internal/model"
	"go-todo-api/internal/session"
	"go-todo-api/pkg/apierror"
)

const (
	usernameMaxLength = 150
	passwordMinLength = 8
	// bcrypt rejects longer inputs.
	passwordMaxBytes = 72
)

// ErrRefreshFailed covers every refresh failure; the cause is not exposed.
var ErrRefreshFailed = errors.New("refresh failed")

type UserStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u model.User) error
}

type AuthService struct {
	users      UserStore
	codec      *session.Codec
	bcryptCost int
	dummyHash  []byte
	now        func() time.Time
}

func NewAuthService(users UserStore, codec *session.Codec, bcryptCost int) (*AuthService, error) {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	// Compared against when the username is unknown so both login failure
	// paths spend the same bcrypt time.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(rand.Text()), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy password hash: %w", err)
	}

	return &AuthService{
		users:      users,
		codec:      codec,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		now:        time.Now,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	fields := apierror.FieldErrors{}
	validateUsername(fields, username)
	validatePassword(fields, req.Password, username)
	validateEmail(fields, email)

	if _, failed := fields["username"]; !failed {
		exists, err := s.users.ExistsByUsername(ctx, username)
		if err != nil {
			return model.User{}, err
		}
		if exists {
			fields.Add("username", "A user with that username already exists.")
		}
	}

	if err := fields.Err(); err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.User{}, apierror.Validation(apierror.FieldErrors{
				"username": {"A user with that username already exists."},
			})
		}
		return model.User{}, err
	}

	return user, nil
}

// Login never tells an unknown user apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.User, session.Pair, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, session.Pair{}, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return model.User{}, session.Pair{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, session.Pair{}, model.ErrInvalidCredentials
	}

	pair, err := s.codec.IssuePair(user.ID)
	if err != nil {
		return model.User{}, session.Pair{}, err
	}

	return user, pair, nil
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.User, session.Token, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return model.User{}, session.Token{}, ErrRefreshFailed
	}

	subject, err := s.codec.Validate(refreshToken, session.TypeRefresh)
	if err != nil {
		return model.User{}, session.Token{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		return model.User{}, session.Token{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	access, err := s.codec.Issue(user.ID, session.TypeAccess)
	if err != nil {
		return model.User{}, session.Token{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	return user, access, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID string) (model.User, error) {
	return s.users.FindByID(ctx, userID)
}

func validateUsername(fields apierror.FieldErrors, username string) {
	if username == "" {
		fields.Add("username", "This field is required.")
		return
	}
	if utf8.RuneCountInString(username) > usernameMaxLength {
		fields.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", usernameMaxLength))
	}
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		fields.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		return
	}
}

func validatePassword(fields apierror.FieldErrors, password string, username string) {
	if password == "" {
		fields.Add("password", "This field is required.")
		return
	}
	if utf8.RuneCountInString(password) < passwordMinLength {
		fields.Add("password", fmt.Sprintf("This password is too short. It must contain at least %d characters.", passwordMinLength))
	}
	if len(password) > passwordMaxBytes {
		fields.Add("password", fmt.Sprintf("Ensure this field has no more than %d bytes.", passwordMaxBytes))
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		fields.Add("password", "This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		fields.Add("password", "The password is too similar to the username.")
	}
}

func validateEmail(fields apierror.FieldErrors, email string) {
	if email == "" {
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		fields.Add("email", "Enter a valid email address.")
	}
}
