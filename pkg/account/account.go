// Package account holds the credentials the gateway uses to sign in to the remote vehicle service.
package account

import (
	"context"
	"strings"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/metrics"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

// Account allows interaction with a remote vehicle service account. An Account is immutable once
// created and may be shared between goroutines.
type Account struct {
	username      string
	password      string
	defaultRegion protocol.Region
}

// New returns an [Account]. Username and password are required. An empty defaultRegion selects
// [protocol.DefaultRegion].
func New(username, password, defaultRegion string) (*Account, error) {
	if strings.TrimSpace(username) == "" {
		return nil, protocol.NewConfigurationError("account username not set")
	}
	if password == "" {
		return nil, protocol.NewConfigurationError("account password not set")
	}
	region := protocol.DefaultRegion
	if defaultRegion != "" {
		var err error
		if region, err = protocol.ParseRegion(defaultRegion); err != nil {
			return nil, protocol.NewConfigurationError("default region: %s", err)
		}
	}
	return &Account{
		username:      username,
		password:      password,
		defaultRegion: region,
	}, nil
}

// Username returns the account's sign-in name.
func (a *Account) Username() string {
	return a.username
}

// DefaultRegion returns the region used when a request does not name one.
func (a *Account) DefaultRegion() protocol.Region {
	return a.defaultRegion
}

// ResolveRegion returns the region named by requested, or the account's default region if
// requested is blank.
func (a *Account) ResolveRegion(requested string) (protocol.Region, error) {
	if strings.TrimSpace(requested) != "" {
		return protocol.ParseRegion(requested)
	}
	if a.defaultRegion == "" {
		return "", protocol.NewConfigurationError("no region requested and no default configured")
	}
	return a.defaultRegion, nil
}

// Connect signs in to region and returns a new Session. The caller owns the Session and must
// close it, typically with [Release].
func (a *Account) Connect(ctx context.Context, dialer vehicle.Dialer, region protocol.Region) (vehicle.Session, error) {
	log.Debug("Opening %s session for %s", region, a.username)
	session, err := dialer.Dial(ctx, a.username, a.password, region)
	if err != nil {
		return nil, err
	}
	metrics.SessionsOpened.Inc()
	return session, nil
}

// Release closes session. Failures are logged rather than returned: by the time a session is
// released the caller's outcome is already decided.
func Release(ctx context.Context, session vehicle.Session) {
	metrics.SessionsClosed.Inc()
	if err := session.Close(ctx); err != nil {
		log.Warning("Error closing session: %s", err)
	}
}
