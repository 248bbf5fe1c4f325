package vehicle

import (
	"fmt"
	"strconv"
)

// Summary describes one vehicle exactly as the remote service listed it. The gateway forwards
// summaries without reshaping them.
type Summary map[string]interface{}

// ID returns the vehicle identifier, or an empty string if the service omitted it.
func (s Summary) ID() string {
	switch id := s["id"].(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// DisplayName returns the nickname if the owner set one, falling back to the model name and then
// the VIN.
func (s Summary) DisplayName() string {
	for _, key := range []string{"nickname", "carlineName", "modelName", "vin"} {
		if name, ok := s[key].(string); ok && name != "" {
			return name
		}
	}
	return s.ID()
}

// TirePressure holds per-wheel pressures in the units reported by the vehicle.
type TirePressure struct {
	FrontLeftTirePressurePsi  float64 `json:"frontLeftTirePressurePsi"`
	FrontRightTirePressurePsi float64 `json:"frontRightTirePressurePsi"`
	RearLeftTirePressurePsi   float64 `json:"rearLeftTirePressurePsi"`
	RearRightTirePressurePsi  float64 `json:"rearRightTirePressurePsi"`
}

// Status is a point-in-time snapshot of a vehicle. In the three closure maps a true value means
// open (Doors, Windows) or unlocked (DoorLocks).
type Status struct {
	LastUpdatedTimestamp    string          `json:"lastUpdatedTimestamp,omitempty"`
	Latitude                float64         `json:"latitude"`
	Longitude               float64         `json:"longitude"`
	PositionTimestamp       string          `json:"positionTimestamp,omitempty"`
	FuelRemainingPercent    float64         `json:"fuelRemainingPercent"`
	FuelDistanceRemainingKm float64         `json:"fuelDistanceRemainingKm"`
	OdometerKm              float64         `json:"odometerKm"`
	Doors                   map[string]bool `json:"doors"`
	DoorLocks               map[string]bool `json:"doorLocks"`
	Windows                 map[string]bool `json:"windows"`
	HazardLightsOn          bool            `json:"hazardLightsOn"`
	TirePressure            *TirePressure   `json:"tirePressure,omitempty"`
}

func anyTrue(m map[string]bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

// AnyDoorOpen reports whether at least one door is physically open.
func (s *Status) AnyDoorOpen() bool {
	return anyTrue(s.Doors)
}

// AnyDoorUnlocked reports whether at least one door is unlocked.
func (s *Status) AnyDoorUnlocked() bool {
	return anyTrue(s.DoorLocks)
}

// AnyWindowOpen reports whether at least one window is open.
func (s *Status) AnyWindowOpen() bool {
	return anyTrue(s.Windows)
}
