package vehicle

import (
	"math"
	"strings"

	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
)

// PointOfInterest is a destination sent to a vehicle's navigation system.
type PointOfInterest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

// Validate returns a ValidationError unless both coordinates are finite and within range and the
// name is not blank.
func (p PointOfInterest) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return protocol.NewValidationError("latitude must be a number in the range [-90, 90]")
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return protocol.NewValidationError("longitude must be a number in the range [-180, 180]")
	}
	if strings.TrimSpace(p.Name) == "" {
		return protocol.NewValidationError("point of interest requires a name")
	}
	return nil
}
