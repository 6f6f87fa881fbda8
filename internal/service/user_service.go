package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todoshare/internal/model"
)

const (
	minPasswordLength = 6
	searchLimit       = 20
	uniqueViolation   = "23505"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	SetNotificationsEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	Search(ctx context.Context, query string, limit int) ([]model.User, error)
}

type FriendStore interface {
	AddPending(ctx context.Context, targetID, requesterID uuid.UUID) error
	Accept(ctx context.Context, userID, friendID uuid.UUID) error
	Remove(ctx context.Context, userID, friendID uuid.UUID) error
	IDs(ctx context.Context, userID uuid.UUID, status string) ([]uuid.UUID, error)
	Users(ctx context.Context, userID uuid.UUID, status string) ([]model.User, error)
}

type MembershipIndex interface {
	IDsByMember(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type Registration struct {
	Email       string
	Password    string
	DisplayName string
	FirstName   string
	LastName    string
	Birthdate   string
}

type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Birthdate   *string `json:"birthdate"`
}

// Profile is a user together with the relationship lists kept about them
type Profile struct {
	model.User
	Friends        []uuid.UUID
	PendingFriends []uuid.UUID
	SharedTasks    []string
}

type UserService struct {
	users   UserStore
	friends FriendStore
	shared  MembershipIndex
}

func NewUserService(users UserStore, friends FriendStore, shared MembershipIndex) *UserService {
	return &UserService{users: users, friends: friends, shared: shared}
}

// Register creates an account. The display name defaults to the part of the
// email before the @.
func (s *UserService) Register(ctx context.Context, reg Registration) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if !strings.Contains(email, "@") {
		return nil, validation("invalid email")
	}
	if len(reg.Password) < minPasswordLength {
		return nil, validation("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fetchFailure("find user by email", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with email %s", ErrConflict, email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	displayName := strings.TrimSpace(reg.DisplayName)
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	user := &model.User{
		Email:                email,
		HashedPassword:       string(hash),
		DisplayName:          displayName,
		FirstName:            reg.FirstName,
		LastName:             reg.LastName,
		Birthdate:            reg.Birthdate,
		NotificationsEnabled: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user with email %s", ErrConflict, email)
		}
		return nil, writeFailure("create user", err)
	}
	return user, nil
}

// Authenticate checks an email and password pair
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fetchFailure("find user by email", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{User: *user}
	if profile.Friends, err = s.friends.IDs(ctx, userID, model.FriendshipAccepted); err != nil {
		return nil, fetchFailure("list friends", err)
	}
	if profile.PendingFriends, err = s.friends.IDs(ctx, userID, model.FriendshipPending); err != nil {
		return nil, fetchFailure("list pending friends", err)
	}
	if profile.SharedTasks, err = s.shared.IDsByMember(ctx, userID); err != nil {
		return nil, fetchFailure("list shared tasks", err)
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*model.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if name == "" {
			return nil, validation("display name cannot be empty")
		}
		user.DisplayName = name
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Birthdate != nil {
		user.Birthdate = *update.Birthdate
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, writeFailure("update profile", err)
	}
	return user, nil
}

func (s *UserService) SetNotificationsEnabled(ctx context.Context, userID uuid.UUID, enabled bool) error {
	if _, err := s.get(ctx, userID); err != nil {
		return err
	}
	if err := s.users.SetNotificationsEnabled(ctx, userID, enabled); err != nil {
		return writeFailure("set notifications", err)
	}
	return nil
}

// Search finds users whose email or display name contains the query
func (s *UserService) Search(ctx context.Context, query string) ([]model.User, error) {
	if strings.TrimSpace(query) == "" {
		return []model.User{}, nil
	}
	users, err := s.users.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, fetchFailure("search users", err)
	}
	return users, nil
}

func (s *UserService) get(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fetchFailure("get user", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
