// Package vault keeps Home Assistant access tokens in an encrypted file so
// the config can name a credential instead of carrying the token.
package vault

import (
	"errors"
	"strings"
)

var (
	ErrNotFound  = errors.New("credential not found")
	ErrDuplicate = errors.New("credential already exists")
	ErrDecrypt   = errors.New("failed to decrypt credential vault (wrong master key?)")
	ErrInvalid   = errors.New("credential needs a name and a token")
)

// Credential is one hub login.
type Credential struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Token string `json:"token"`
}

// Summary is a Credential without its token.
type Summary struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func (c Credential) Summarize() Summary {
	return Summary{Name: c.Name, URL: c.URL}
}

func (c Credential) validate() error {
	if strings.TrimSpace(c.Name) == "" || c.Token == "" {
		return ErrInvalid
	}
	return nil
}

// Provider is implemented by credential backends.
type Provider interface {
	List() ([]Summary, error)
	Get(name string) (*Credential, error)
	Add(c Credential) error
	Update(name string, c Credential) error
	Remove(name string) error
}
