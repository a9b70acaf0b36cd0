package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/services"
)

type stubAccounts struct {
	resetPassword string
	resetErr      error
	resetUsername string

	ensureUser     models.User
	ensureCreated  bool
	ensureErr      error
	ensurePassword string
}

func (stub *stubAccounts) ResetPassword(username string) (string, error) {
	stub.resetUsername = username
	return stub.resetPassword, stub.resetErr
}

func (stub *stubAccounts) EnsureAdmin(username string, password string) (models.User, bool, error) {
	stub.ensurePassword = password
	return stub.ensureUser, stub.ensureCreated, stub.ensureErr
}

func fixedPrompt(answers ...string) PasswordPrompt {
	return func(string) (string, error) {
		if len(answers) == 0 {
			return "", errors.New("no more answers")
		}
		answer := answers[0]
		answers = answers[1:]
		return answer, nil
	}
}

func TestResetPasswordCommandPrintsTemporaryPassword(t *testing.T) {
	t.Parallel()

	accounts := &stubAccounts{resetPassword: "Tmp2345abcde"}
	var out bytes.Buffer

	if err := RunResetPasswordCommand(accounts, "  Anna ", &out); err != nil {
		t.Fatalf("RunResetPasswordCommand returned error: %v", err)
	}
	if accounts.resetUsername != "anna" {
		t.Fatalf("expected normalized username, got %q", accounts.resetUsername)
	}
	if !strings.Contains(out.String(), "Temporary password: Tmp2345abcde") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestResetPasswordCommandErrors(t *testing.T) {
	t.Parallel()

	if err := RunResetPasswordCommand(&stubAccounts{}, "   ", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for blank username")
	}

	err := RunResetPasswordCommand(&stubAccounts{resetErr: models.ErrNotFound}, "ghost", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreateAdminCommand(t *testing.T) {
	t.Parallel()

	accounts := &stubAccounts{ensureUser: models.User{Username: "admin", IsAdmin: true}, ensureCreated: true}
	var out bytes.Buffer

	if err := RunCreateAdminCommand(accounts, "admin", fixedPrompt("bootstrap", "bootstrap"), &out); err != nil {
		t.Fatalf("RunCreateAdminCommand returned error: %v", err)
	}
	if accounts.ensurePassword != "bootstrap" {
		t.Fatalf("expected prompted password to be used, got %q", accounts.ensurePassword)
	}
	if !strings.Contains(out.String(), "Admin admin created") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestCreateAdminCommandRejectsMismatchAndInvalidInput(t *testing.T) {
	t.Parallel()

	err := RunCreateAdminCommand(&stubAccounts{}, "admin", fixedPrompt("first", "second"), &bytes.Buffer{})
	if !errors.Is(err, errPasswordMismatch) {
		t.Fatalf("expected errPasswordMismatch, got %v", err)
	}

	accounts := &stubAccounts{ensureErr: services.ErrInvalidPassword}
	err = RunCreateAdminCommand(accounts, "admin", fixedPrompt("123", "123"), &bytes.Buffer{})
	if !errors.Is(err, services.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestReadLineStopsAtNewline(t *testing.T) {
	t.Parallel()

	reader := strings.NewReader("first\r\nsecond\n")
	first, err := readLine(reader)
	if err != nil || first != "first" {
		t.Fatalf("readLine() = %q, %v", first, err)
	}
	second, err := readLine(reader)
	if err != nil || second != "second" {
		t.Fatalf("readLine() = %q, %v", second, err)
	}
}
