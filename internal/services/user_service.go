package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mzhyrko/accounts-be/internal/auth"
	"github.com/mzhyrko/accounts-be/internal/gravatar"
	"github.com/mzhyrko/accounts-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately slow; it is the work factor applied to every
// stored credential.
const bcryptCost = 10

// UserServiceProvider defines the interface for user account services.
type UserServiceProvider interface {
	Register(email, password, subscription string) (models.User, error)
	Login(email, password string) (models.User, string, error)
	Logout(id string) error
	FindUserByID(id string) (models.User, error)
	UpdateSubscription(id, subscription string) (models.User, error)
	SetAvatarURL(id, avatarURL string) error
}

// UserService provides registration, login and session bookkeeping for
// user accounts. Exactly one token is honored per account at a time: each
// login overwrites active_token, which revokes whatever token was issued
// before regardless of its remaining signature validity.
type UserService struct {
	db    *sql.DB
	codec *auth.TokenCodec
}

// NewUserService creates a new UserService signing sessions with codec.
func NewUserService(db *sql.DB, codec *auth.TokenCodec) *UserService {
	return &UserService{db: db, codec: codec}
}

// FindUserByID retrieves the full account record, session token included.
func (s *UserService) FindUserByID(id string) (models.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, email, password_hash, subscription, avatar_url, active_token, created_at FROM users WHERE id = ?", id))
}

// findUserByEmail retrieves the full account record by its unique email.
func (s *UserService) findUserByEmail(email string) (models.User, error) {
	return s.scanUser(s.db.QueryRow(
		"SELECT id, email, password_hash, subscription, avatar_url, active_token, created_at FROM users WHERE email = ?", email))
}

func (s *UserService) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Subscription,
		&user.AvatarURL, &user.ActiveToken, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a new account. The email is the uniqueness key; a
// duplicate fails with ErrEmailInUse and performs no mutation. The default
// avatar is derived from the email, the password is hashed before storage.
// An empty subscription falls back to the starter plan.
func (s *UserService) Register(email, password, subscription string) (models.User, error) {
	if subscription == "" {
		subscription = models.SubscriptionStarter
	}
	if !models.ValidSubscription(subscription) {
		return models.User{}, ErrInvalidSubscription
	}

	_, err := s.findUserByEmail(email)
	if err == nil {
		return models.User{}, ErrEmailInUse
	}
	if !errors.Is(err, ErrUserNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Subscription: subscription,
		AvatarURL:    gravatar.URL(email),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, email, password_hash, subscription, avatar_url) VALUES(?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	_, err = stmt.Exec(user.ID, user.Email, user.PasswordHash, user.Subscription, user.AvatarURL)
	if err != nil {
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Login verifies the credentials, mints a session token and persists it as
// the account's single active token. An unknown email and a wrong password
// both return ErrInvalidCredentials so callers cannot tell them apart.
func (s *UserService) Login(email, password string) (models.User, string, error) {
	user, err := s.findUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := s.codec.Sign(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to sign session token: %w", err)
	}

	// Last write wins: concurrent logins are not serialized, but exactly
	// one token is valid afterwards.
	if _, err := s.db.Exec("UPDATE users SET active_token = ? WHERE id = ?", token, user.ID); err != nil {
		return models.User{}, "", err
	}

	user.PasswordHash = ""
	user.ActiveToken = token
	return user, token, nil
}

// Logout clears the account's active token unconditionally, invalidating
// the session that authenticated the call.
func (s *UserService) Logout(id string) error {
	res, err := s.db.Exec("UPDATE users SET active_token = '' WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateSubscription sets the account's plan and returns the new state.
func (s *UserService) UpdateSubscription(id, subscription string) (models.User, error) {
	if !models.ValidSubscription(subscription) {
		return models.User{}, ErrInvalidSubscription
	}

	res, err := s.db.Exec("UPDATE users SET subscription = ? WHERE id = ?", subscription, id)
	if err != nil {
		return models.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, ErrUserNotFound
	}

	user, err := s.FindUserByID(id)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// SetAvatarURL points the account's avatar reference at a new location.
func (s *UserService) SetAvatarURL(id, avatarURL string) error {
	res, err := s.db.Exec("UPDATE users SET avatar_url = ? WHERE id = ?", avatarURL, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
