package security

import (
	"crypto/rand"
	"math/big"

	"github.com/pkg/errors"
)

// Ambiguous glyphs (0/O, 1/l/I) are left out so a temporary password can be
// read aloud or copied from a terminal.
const (
	passwordLetters = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	passwordDigits  = "23456789"

	MinTemporaryPasswordLength = 8
)

var ErrPasswordTooShort = errors.New("temporary password is too short")

// TemporaryPassword returns a random password of the given length holding at
// least one letter and one digit.
func TemporaryPassword(length int) (string, error) {
	if length < MinTemporaryPasswordLength {
		return "", errors.Wrapf(ErrPasswordTooShort, "length %d", length)
	}

	alphabet := passwordLetters + passwordDigits
	value := make([]byte, length)
	for index := range value {
		char, err := randomChar(alphabet)
		if err != nil {
			return "", err
		}
		value[index] = char
	}

	// Force one letter and one digit into distinct random positions.
	letterAt, err := randomIndex(length)
	if err != nil {
		return "", err
	}
	digitAt, err := randomIndex(length - 1)
	if err != nil {
		return "", err
	}
	if digitAt >= letterAt {
		digitAt++
	}
	if value[letterAt], err = randomChar(passwordLetters); err != nil {
		return "", err
	}
	if value[digitAt], err = randomChar(passwordDigits); err != nil {
		return "", err
	}

	return string(value), nil
}

func randomChar(alphabet string) (byte, error) {
	index, err := randomIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[index], nil
}

func randomIndex(limit int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0, errors.Wrap(err, "read random source")
	}
	return int(position.Int64()), nil
}
