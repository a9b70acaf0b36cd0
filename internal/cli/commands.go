package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/services"
)

var errPasswordMismatch = errors.New("passwords do not match")

type accountManager interface {
	ResetPassword(username string) (string, error)
	EnsureAdmin(username string, password string) (models.User, bool, error)
}

func RunResetPasswordCommand(accounts accountManager, username string, out io.Writer) error {
	username = models.NormalizeUsername(username)
	if username == "" {
		return errors.New("username is required")
	}

	temporaryPassword, err := accounts.ResetPassword(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("user %s not found", username)
		}
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintln(out, "✅ Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "Share it with the member and ask them to sign in.")
	return nil
}

// RunCreateAdminCommand creates an admin account, or promotes an existing
// member, after asking for the password twice.
func RunCreateAdminCommand(accounts accountManager, username string, prompt PasswordPrompt, out io.Writer) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is required")
	}

	password, err := prompt("Password: ")
	if err != nil {
		return err
	}
	confirmation, err := prompt("Repeat password: ")
	if err != nil {
		return err
	}
	if password != confirmation {
		return errPasswordMismatch
	}

	user, created, err := accounts.EnsureAdmin(username, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidUsername), errors.Is(err, services.ErrInvalidPassword):
			return err
		default:
			return fmt.Errorf("create admin: %w", err)
		}
	}

	if created {
		fmt.Fprintf(out, "✅ Admin %s created\n", user.Username)
	} else {
		fmt.Fprintf(out, "✅ %s already existed and now has admin rights (password unchanged)\n", user.Username)
	}
	return nil
}
