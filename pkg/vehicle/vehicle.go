// Package vehicle defines the capabilities the gateway needs from a remote vehicle service, along
// with the data types exchanged with it.
package vehicle

//go:generate mockgen -destination ../../mocks/vehicle.go -package mocks -mock_names Session=Session,Dialer=Dialer . Session,Dialer

import (
	"context"

	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
)

// Session is an authenticated handle to the remote vehicle service. A Session belongs to exactly
// one caller, which must call Close once it is done, including on error paths.
//
// Actuation methods have real-world side effects. Errors implementing [protocol.Error] report
// whether the command might have executed despite the failure.
type Session interface {
	// ListVehicles returns the vehicles registered to the account in the order the service lists
	// them.
	ListVehicles(ctx context.Context) ([]Summary, error)

	// GetStatus fetches a fresh status snapshot.
	GetStatus(ctx context.Context, vid string) (*Status, error)

	LockDoors(ctx context.Context, vid string) error
	UnlockDoors(ctx context.Context, vid string) error
	StartEngine(ctx context.Context, vid string) error
	StopEngine(ctx context.Context, vid string) error
	HazardLightsOn(ctx context.Context, vid string) error
	HazardLightsOff(ctx context.Context, vid string) error

	// SendPOI forwards a destination to the vehicle's navigation system. Callers validate poi
	// first.
	SendPOI(ctx context.Context, vid string, poi PointOfInterest) error

	// Close ends the session. Repeated calls are no-ops.
	Close(ctx context.Context) error
}

// Dialer opens Sessions.
type Dialer interface {
	// Dial exchanges credentials for a Session in region. Rejected credentials produce an error
	// wrapping [protocol.ErrAuthentication].
	Dial(ctx context.Context, username, password string, region protocol.Region) (Session, error)
}
