package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// PasswordPrompt shows label and returns the entered password.
type PasswordPrompt func(label string) (string, error)

// TerminalPrompt reads passwords from stdin without echo and writes labels
// to out.
func TerminalPrompt(stdin *os.File, out io.Writer) PasswordPrompt {
	return func(label string) (string, error) {
		fmt.Fprint(out, label)
		password, err := readPasswordNoEcho(stdin)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return password, nil
	}
}

// readLine reads up to the next newline one byte at a time, so nothing past
// the line is consumed from the underlying reader.
func readLine(reader io.Reader) (string, error) {
	var line strings.Builder
	buffer := make([]byte, 1)
	for {
		read, err := reader.Read(buffer)
		if read > 0 {
			if buffer[0] == '\n' {
				break
			}
			line.WriteByte(buffer[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(line.String(), "\r"), nil
}
