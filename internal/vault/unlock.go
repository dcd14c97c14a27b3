package vault

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// MasterKeyEnv names the variable that supplies the master key without a
// prompt.
const MasterKeyEnv = "HOMETRAY_MASTER_KEY"

// Prompt reads a master key from the user. It is nil when stdin is not a
// terminal.
type Prompt func(label string) ([]byte, error)

// TerminalPrompt reads a hidden line from the controlling terminal, or
// returns nil when stdin is not one.
func TerminalPrompt(out io.Writer) Prompt {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func(label string) ([]byte, error) {
		fmt.Fprint(out, label)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return pw, err
	}
}

// Unlock opens the vault at path. The key comes from MasterKeyEnv when set.
// Otherwise an empty key is tried first, then prompt is asked once.
func Unlock(path string, prompt Prompt) (*FileStore, error) {
	if key, ok := os.LookupEnv(MasterKeyEnv); ok {
		return OpenFileStore(path, []byte(key))
	}

	s, err := OpenFileStore(path, nil)
	if err == nil || !errors.Is(err, ErrDecrypt) || prompt == nil {
		return s, err
	}

	key, err := prompt("Master key: ")
	if err != nil {
		return nil, fmt.Errorf("read master key: %w", err)
	}
	return OpenFileStore(path, key)
}
