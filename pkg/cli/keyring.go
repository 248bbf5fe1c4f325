package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/99designs/keyring"
	"golang.org/x/term"
)

const (
	keyringServiceName     = "net.remote-vehicle.gateway"
	keyringPasswordService = "accountPassword"
	keyringDirectory       = "~/.vehicle_gateway_keys"
)

type backendType struct {
	config *Config
}

func (b backendType) String() string {
	if b.config == nil || len(b.config.Backend.AllowedBackends) == 0 {
		return string(keyring.InvalidBackend)
	}
	return string(b.config.Backend.AllowedBackends[0])
}

func (b backendType) Set(v string) error {
	value := keyring.BackendType(v)
	if b.config == nil {
		return fmt.Errorf("invalid backendType")
	}
	if v == "" {
		return nil
	}
	for _, name := range keyring.AvailableBackends() {
		if name == value {
			b.config.Backend.AllowedBackends = []keyring.BackendType{name}
			return nil
		}
	}
	return fmt.Errorf("unsupported credential storage")
}

// getPassword returns the password that unlocks file-backed keyrings, prompting on the terminal if
// none was configured.
func (c *Config) getPassword(prompt string) (string, error) {
	if c.keyringPassword != nil && *c.keyringPassword != "" {
		return *c.keyringPassword, nil
	}
	password, err := PromptPassword(prompt)
	if err != nil {
		return "", err
	}
	c.keyringPassword = &password
	return password, nil
}

// PromptPassword writes prompt to the terminal and reads a line from stdin without echoing it.
func PromptPassword(prompt string) (string, error) {
	var w io.Writer
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fd = int(os.Stderr.Fd())
		if !term.IsTerminal(fd) {
			return "", fmt.Errorf("no terminal output available for password prompt")
		} else {
			w = os.Stderr
		}
	} else {
		w = os.Stdout
	}

	fmt.Fprintf(w, "%s: ", prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(w)
	return string(b), nil
}

func (c *Config) openKeyring() (keyring.Keyring, error) {
	return keyring.Open(c.Backend)
}

func (c *Config) fullPasswordName() string {
	return keyringPasswordService + "." + c.KeyringName
}

// LoadPasswordFromKeyring loads the account password from the system keyring.
//
// c.KeyringName must match the value used with SavePassword.
func (c *Config) LoadPasswordFromKeyring() (string, error) {
	if c.KeyringName == "" {
		return "", ErrNoKeyringEntry
	}
	kr, err := c.openKeyring()
	if err != nil {
		return "", err
	}

	item, err := kr.Get(c.fullPasswordName())
	if err != nil {
		return "", fmt.Errorf("could not load password: %w", err)
	}
	return string(item.Data), nil
}

// SavePassword writes the account password to the system keyring.
//
// c.KeyringName identifies the password for future use and does not need to match the account
// username.
func (c *Config) SavePassword(password string) error {
	if c.KeyringName == "" {
		return ErrNoKeyringEntry
	}
	kr, err := c.openKeyring()
	if err != nil {
		return err
	}

	if err := kr.Set(keyring.Item{
		Key:   c.fullPasswordName(),
		Label: "Remote vehicle account password",
		Data:  []byte(password),
	}); err != nil {
		return fmt.Errorf("failed to enroll password in keyring: %s", err)
	}
	return nil
}

// DeletePassword removes the account password from the system keyring.
func (c *Config) DeletePassword() error {
	if c.KeyringName == "" {
		return ErrNoKeyringEntry
	}
	kr, err := c.openKeyring()
	if err != nil {
		return err
	}
	return kr.Remove(c.fullPasswordName())
}
