package proxy

import (
	"context"
	"time"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/account"
	"github.com/remote-vehicle/vehicle-gateway/pkg/metrics"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

// DefaultTimeout bounds a single dispatched command, including session acquisition and release.
const DefaultTimeout = 30 * time.Second

// Dispatcher runs Actions, each inside its own short-lived Session.
type Dispatcher struct {
	Timeout time.Duration

	account *account.Account
	dialer  vehicle.Dialer
}

// NewDispatcher returns a Dispatcher that signs in to acct's remote service using dialer.
func NewDispatcher(acct *account.Account, dialer vehicle.Dialer) *Dispatcher {
	return &Dispatcher{
		Timeout: DefaultTimeout,
		account: acct,
		dialer:  dialer,
	}
}

// Account returns the account used to open sessions.
func (d *Dispatcher) Account() *account.Account {
	return d.account
}

// Execute resolves region, opens a Session, runs action and closes the Session. The Session is
// closed on every path, and a close failure never replaces the action's result.
//
// Remote calls ignore ctx's cancellation and are bounded by d.Timeout instead. An actuation that
// has been sent is not aborted when the client hangs up.
func (d *Dispatcher) Execute(ctx context.Context, command, region string, action Action) (result interface{}, err error) {
	start := time.Now()
	defer func() { metrics.ObserveCommand(command, start, err) }()

	if d.account == nil || d.dialer == nil {
		return nil, protocol.NewConfigurationError("dispatcher has no account")
	}
	resolved, err := d.account.ResolveRegion(region)
	if err != nil {
		return nil, err
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	log.Debug("Executing %s in region %s", command, resolved)
	session, err := d.account.Connect(ctx, d.dialer, resolved)
	if err != nil {
		return nil, err
	}
	defer func() {
		// Sign-out gets a fresh deadline even if the action used up ctx's.
		closeCtx, closeCancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer closeCancel()
		account.Release(closeCtx, session)
	}()

	result, err = action(ctx, session)
	if err != nil {
		if protocol.MayHaveSucceeded(err) {
			log.Warning("Couldn't verify success of %s: %s", command, err)
		}
		return nil, err
	}
	return result, nil
}
