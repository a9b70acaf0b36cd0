package services

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
	maxPasswordLength = 100

	temporaryPasswordLength = 12
)

type AuthUserRepository interface {
	CreateUser(username string, passwordHash string) (models.User, error)
	GetUser(id string) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	SetAdmin(id string, isAdmin bool) error
	SetPasswordHash(id string, passwordHash string) error
}

// AuthService owns username uniqueness: the stores do not check it, so the
// lookup and insert of a registration run under registerMu.
type AuthService struct {
	users      AuthUserRepository
	hashCost   int
	registerMu sync.Mutex
}

type AuthOption func(*AuthService)

// WithPasswordHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithPasswordHashCost(cost int) AuthOption {
	return func(service *AuthService) {
		service.hashCost = cost
	}
}

func NewAuthService(users AuthUserRepository, options ...AuthOption) *AuthService {
	service := &AuthService{users: users, hashCost: bcrypt.DefaultCost}
	for _, option := range options {
		option(service)
	}
	return service
}

func ValidateCredentials(usernameRaw string, password string) (string, error) {
	username := models.NormalizeUsername(usernameRaw)
	if length := utf8.RuneCountInString(username); length < minUsernameLength || length > maxUsernameLength {
		return "", errors.Wrapf(ErrInvalidUsername, "username must be %d-%d characters", minUsernameLength, maxUsernameLength)
	}
	if length := utf8.RuneCountInString(password); length < minPasswordLength || length > maxPasswordLength {
		return "", errors.Wrapf(ErrInvalidPassword, "password must be %d-%d characters", minPasswordLength, maxPasswordLength)
	}
	return username, nil
}

func (service *AuthService) Register(usernameRaw string, password string) (models.User, error) {
	username, err := ValidateCredentials(usernameRaw, password)
	if err != nil {
		return models.User{}, err
	}

	service.registerMu.Lock()
	defer service.registerMu.Unlock()

	if _, err := service.users.GetUserByUsername(username); err == nil {
		return models.User{}, ErrUsernameTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.User{}, err
	}

	passwordHash, err := service.hashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return service.users.CreateUser(username, passwordHash)
}

func (service *AuthService) Authenticate(usernameRaw string, password string) (models.User, error) {
	username := models.NormalizeUsername(usernameRaw)
	if username == "" || strings.TrimSpace(password) == "" {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := service.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(userID string) (models.User, error) {
	return service.users.GetUser(userID)
}

// EnsureAdmin makes sure username exists with admin rights. An existing user
// is promoted and keeps the current password. A blank username is a no-op.
func (service *AuthService) EnsureAdmin(usernameRaw string, password string) (models.User, bool, error) {
	if strings.TrimSpace(usernameRaw) == "" {
		return models.User{}, false, nil
	}

	existing, err := service.users.GetUserByUsername(usernameRaw)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			if err := service.users.SetAdmin(existing.ID, true); err != nil {
				return models.User{}, false, err
			}
			existing.IsAdmin = true
		}
		return existing, false, nil
	case !errors.Is(err, models.ErrNotFound):
		return models.User{}, false, err
	}

	user, err := service.Register(usernameRaw, password)
	if err != nil {
		return models.User{}, false, err
	}
	if err := service.users.SetAdmin(user.ID, true); err != nil {
		return models.User{}, false, err
	}
	user.IsAdmin = true
	return user, true, nil
}

// ResetPassword replaces the user's password with a random temporary one and
// returns it.
func (service *AuthService) ResetPassword(usernameRaw string) (string, error) {
	user, err := service.users.GetUserByUsername(usernameRaw)
	if err != nil {
		return "", err
	}

	temporaryPassword, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", errors.Wrap(err, "generate temporary password")
	}
	if err := service.SetPassword(user.ID, temporaryPassword); err != nil {
		return "", err
	}
	return temporaryPassword, nil
}

func (service *AuthService) SetPassword(userID string, password string) error {
	if length := utf8.RuneCountInString(password); length < minPasswordLength || length > maxPasswordLength {
		return errors.Wrapf(ErrInvalidPassword, "password must be %d-%d characters", minPasswordLength, maxPasswordLength)
	}
	passwordHash, err := service.hashPassword(password)
	if err != nil {
		return err
	}
	return service.users.SetPasswordHash(userID, passwordHash)
}

func (service *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.hashCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}
