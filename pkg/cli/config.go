/*
Package cli facilitates building command-line applications that talk to the remote vehicle service.
It defines a [Config] type that can be used to register common command-line flags (using the Golang
flag package) and environment variable equivalents.

The package uses [keyring]'s platform-agnostic interface for storing the account password in an
OS-dependent credential store, so that it does not need to live in the environment.

# Examples

	import flag

	config, err := NewConfig(FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for the account, keyring, etc.
	flag.Parse()
	config.LoadDotEnv()               // Copies a .env file into the environment, if one exists
	config.ReadFromEnvironment()      // Fills in missing fields using environment variables

	acct, err := config.Account()     // Prompts for the keyring password if needed
	if err != nil {
		panic(err)
	}
	dispatcher := proxy.NewDispatcher(acct, config.Dialer())

Values are resolved in order of precedence: command-line flags, the process environment, the
.env file, and finally built-in defaults.
*/
package cli

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/joho/godotenv"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/account"
	"github.com/remote-vehicle/vehicle-gateway/pkg/connector/inet"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
)

// Environment variable names used are used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvUsername     = "USERNAME"
	EnvPassword     = "PASSWORD"
	EnvRegion       = "REGION"
	EnvAPIURL       = "VEHICLE_API_URL"
	EnvAPITimeout   = "VEHICLE_API_TIMEOUT"
	EnvKeyringName  = "VEHICLE_KEYRING_NAME"
	EnvKeyringType  = "VEHICLE_KEYRING_TYPE"
	EnvKeyringPass  = "VEHICLE_KEYRING_PASSWORD"
	EnvKeyringPath  = "VEHICLE_KEYRING_PATH"
	EnvKeyringDebug = "VEHICLE_KEYRING_DEBUG"
)

// DefaultDotEnvFile is loaded by [Config.LoadDotEnv] when no file names are given.
const DefaultDotEnvFile = ".env"

// Flag controls what options should be scanned from the command line and/or environment variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagAccount Flag = 1 // Enable username and region options.
	FlagKeyring Flag = 2 // Enable keyring options. Required for reading the password from the keyring.
	FlagRemote  Flag = 4 // Enable remote service endpoint options.
	FlagAll     Flag = FlagAccount | FlagKeyring | FlagRemote
)

var (
	ErrNoPassword     = errors.New("account password not provided")
	ErrNoKeyringEntry = errors.New("keyring entry name not provided")
	ErrKeyNotFound    = keyring.ErrKeyNotFound
)

// Config fields determine how a client authenticates to the remote vehicle service.
type Config struct {
	Flags       Flag   // Controls which set of environment variables/CLI flags to use.
	Username    string // Account sign-in name
	Region      string // Default region; empty selects protocol.DefaultRegion
	APIURL      string // Overrides the per-region API endpoints
	APITimeout  time.Duration
	KeyringName string // Name of the keyring entry holding the account password
	Backend     keyring.Config
	BackendType backendType
	Debug       bool // Enable keyring debug messages

	accountPassword *string
	keyringPassword *string
}

func NewConfig(flags Flag) (*Config, error) {
	c := Config{
		Flags: flags,
		Backend: keyring.Config{
			ServiceName:              keyringServiceName,
			KeychainTrustApplication: true,
			KeyCtlScope:              "user",
		},
	}
	c.BackendType = backendType{&c}
	c.Backend.KeychainPasswordFunc = c.getPassword
	c.Backend.FilePasswordFunc = c.getPassword

	return &c, nil
}

// RegisterCommandLineFlags adds c's options to the default flag set.
func (c *Config) RegisterCommandLineFlags() {
	c.RegisterFlags(flag.CommandLine)
}

// RegisterFlags adds c's options to fs.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	if c.Flags.isSet(FlagAccount) {
		fs.StringVar(&c.Username, "username", "", "Account `username`. Defaults to $USERNAME.")
		fs.StringVar(&c.Region, "region", "", "Default `region` ("+regionNames()+"). Defaults to $REGION, then "+string(protocol.DefaultRegion)+".")
	}
	if c.Flags.isSet(FlagRemote) {
		fs.StringVar(&c.APIURL, "api-url", "", "Remote service base `URL`, overriding region defaults. Defaults to $VEHICLE_API_URL.")
		fs.DurationVar(&c.APITimeout, "api-timeout", 0, "Timeout for requests to the remote service. Defaults to $VEHICLE_API_TIMEOUT, then "+inet.DefaultTimeout.String()+".")
	}
	if c.Flags.isSet(FlagKeyring) {
		var names []string
		for _, name := range keyring.AvailableBackends() {
			names = append(names, string(name))
		}
		sort.Strings(names)
		fs.StringVar(&c.KeyringName, "keyring-name", "", "System keyring `name` for the account password. Defaults to $VEHICLE_KEYRING_NAME.")
		fs.Var(&c.BackendType, "keyring-type", "Keyring `type` ("+strings.Join(names, "|")+"). Defaults to $VEHICLE_KEYRING_TYPE.")
		fs.StringVar(&c.Backend.FileDir, "keyring-file-dir", "", "keyring `directory` for file-backed keyring types. Defaults to $VEHICLE_KEYRING_PATH, then "+keyringDirectory+".")
		fs.BoolVar(&c.Debug, "keyring-debug", false, "Enable keyring debug logging")
	}
}

func regionNames() string {
	var names []string
	for _, r := range protocol.Regions() {
		names = append(names, string(r))
	}
	return strings.Join(names, "|")
}

// LoadDotEnv copies variables from filenames (or [DefaultDotEnvFile]) into the process
// environment. Variables that are already set are not overwritten, and missing files are ignored.
func (c *Config) LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{DefaultDotEnvFile}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				log.Debug("No environment file at %s", name)
				continue
			}
			return protocol.NewConfigurationError("loading %s: %s", name, err)
		}
		log.Debug("Loaded environment from %s", name)
	}
	return nil
}

// ReadFromEnvironment populates c using environment variables. Values that are already populated
// are not overwritten.
//
// Calling ReadFromEnvironment after flag.Parse() (or other initialization method) will prevent the
// environment from overriding explicit command-line parameters and avoid potentially misleading
// debug log messages.
func (c *Config) ReadFromEnvironment() {
	if c.Flags.isSet(FlagAccount) {
		if c.Username == "" {
			c.Username = os.Getenv(EnvUsername)
			log.Debug("Set username to '%s'", c.Username)
		}
		if c.Region == "" {
			c.Region = os.Getenv(EnvRegion)
			log.Debug("Set region to '%s'", c.Region)
		}
		if c.accountPassword == nil {
			if password, ok := os.LookupEnv(EnvPassword); ok && password != "" {
				c.accountPassword = &password
				log.Debug("Set account password to %s", strings.Repeat("*", len("hunter2")))
			}
		}
	}
	if c.Flags.isSet(FlagRemote) {
		if c.APIURL == "" {
			c.APIURL = os.Getenv(EnvAPIURL)
			log.Debug("Set API URL to '%s'", c.APIURL)
		}
		if c.APITimeout == 0 {
			if value := os.Getenv(EnvAPITimeout); value != "" {
				if timeout, err := time.ParseDuration(value); err == nil {
					c.APITimeout = timeout
					log.Debug("Set API timeout to %s", c.APITimeout)
				} else {
					log.Warning("Ignoring invalid %s '%s': %s", EnvAPITimeout, value, err)
				}
			}
		}
	}
	if c.Flags.isSet(FlagKeyring) {
		if c.KeyringName == "" {
			c.KeyringName = os.Getenv(EnvKeyringName)
			log.Debug("Set keyring name to '%s'", c.KeyringName)
		}
		if c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(os.Getenv(EnvKeyringType)); err == nil {
				log.Debug("Set keyring type to '%s'", c.BackendType)
			}
		}
		if c.keyringPassword == nil {
			password := os.Getenv(EnvKeyringPass)
			c.keyringPassword = &password
			if len(password) > 0 {
				log.Debug("Set keyring File Password to %s", strings.Repeat("*", len("hunter2")))
			}
		}
		if c.Backend.FileDir == "" {
			c.Backend.FileDir = os.Getenv(EnvKeyringPath)
			if c.Backend.FileDir == "" {
				c.Backend.FileDir = keyringDirectory
			}
			log.Debug("Set keyring File Path to '%s'", c.Backend.FileDir)
		}
		if !c.Debug {
			_, c.Debug = os.LookupEnv(EnvKeyringDebug)
			log.Debug("Set keyring Debug Logging to '%v'", c.Debug)
		}
		keyring.Debug = c.Debug
	}
}

// SetPassword overrides the account password from the environment and keyring.
func (c *Config) SetPassword(password string) {
	c.accountPassword = &password
}

// Password returns the account password. The password is taken from the environment if set, and
// otherwise from the system keyring entry named by c.KeyringName.
func (c *Config) Password() (string, error) {
	if c.accountPassword != nil && *c.accountPassword != "" {
		return *c.accountPassword, nil
	}
	if !c.Flags.isSet(FlagKeyring) || c.KeyringName == "" {
		return "", ErrNoPassword
	}
	password, err := c.LoadPasswordFromKeyring()
	if err != nil {
		return "", err
	}
	c.accountPassword = &password
	return password, nil
}

// Account returns the configured account. Missing credentials are reported as errors wrapping
// [protocol.ErrConfiguration].
func (c *Config) Account() (*account.Account, error) {
	password, err := c.Password()
	if err != nil {
		return nil, protocol.NewConfigurationError("%s (set $%s or $%s)", err, EnvPassword, EnvKeyringName)
	}
	if c.Username == "" {
		return nil, protocol.NewConfigurationError("account username not provided (set $%s)", EnvUsername)
	}
	return account.New(c.Username, password, c.Region)
}

// Dialer returns a remote service client configured with c's endpoint options.
func (c *Config) Dialer() *inet.Dialer {
	return inet.NewDialer(c.APIURL, c.APITimeout)
}
