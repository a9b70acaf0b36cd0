package models

import "errors"

var (
	ErrInvalidWeek      = errors.New("invalid week number")
	ErrDuplicateBooking = errors.New("duplicate booking")
	ErrNotFound         = errors.New("not found")
	ErrUsernameTaken    = errors.New("username already taken")
)
