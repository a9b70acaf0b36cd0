package services

import (
	"errors"

	"github.com/terraincognita07/gardenweeks/internal/models"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidYear        = errors.New("invalid year")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
)

// ErrUsernameTaken is reported by the stores when the unique username index
// rejects an insert.
var ErrUsernameTaken = models.ErrUsernameTaken
