package proxy

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/remote-vehicle/vehicle-gateway/pkg/maps"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

// Command names accepted by ExtractCommandAction. They double as route paths.
const (
	CommandGetVehicles     = "vehicles"
	CommandGetStatus       = "vehiclesStatus"
	CommandCheckDoors      = "checkDoors"
	CommandStartEngine     = "startEngine"
	CommandStopEngine      = "stopEngine"
	CommandLockDoors       = "lockDoors"
	CommandUnlockDoors     = "unlockDoors"
	CommandHazardLightsOn  = "hazardLightsOn"
	CommandHazardLightsOff = "hazardLightsOff"
	CommandSendPOI         = "sendPOI"
	CommandSendPOIFromURL  = "sendPOIfromURL"
)

// Success is the result of every actuation command.
const Success = "Success"

// Commands lists every command name in route order.
var Commands = []string{
	CommandGetVehicles,
	CommandGetStatus,
	CommandCheckDoors,
	CommandStartEngine,
	CommandStopEngine,
	CommandLockDoors,
	CommandUnlockDoors,
	CommandHazardLightsOn,
	CommandHazardLightsOff,
	CommandSendPOI,
	CommandSendPOIFromURL,
}

// ErrUnknownCommand indicates a command name ExtractCommandAction does not recognize.
var ErrUnknownCommand = errors.New("unknown command")

// Action performs one unit of work inside a Session. The result is either a string (sent to HTTP
// clients as plain text) or a value sent as JSON.
type Action func(ctx context.Context, s vehicle.Session) (interface{}, error)

// RequestParameters allows simple type check
type RequestParameters map[string]interface{}

// Region returns the optional region parameter.
func (p RequestParameters) Region() (string, error) {
	return p.getString("region", false)
}

func actuation(command func(vehicle.Session, context.Context, string) error, vid string) Action {
	return func(ctx context.Context, s vehicle.Session) (interface{}, error) {
		if err := command(s, ctx, vid); err != nil {
			return nil, err
		}
		return Success, nil
	}
}

// ExtractCommandAction validates params for command and returns the Action that executes it.
// Validation happens before any Session exists, so invalid requests never reach the remote
// service. For CommandSendPOIFromURL the map link is resolved here using extractor.
func ExtractCommandAction(ctx context.Context, command string, params RequestParameters, extractor *maps.Extractor) (Action, error) {
	if command == CommandGetVehicles {
		return func(ctx context.Context, s vehicle.Session) (interface{}, error) {
			vehicles, err := s.ListVehicles(ctx)
			if err != nil {
				return nil, err
			}
			if vehicles == nil {
				vehicles = []vehicle.Summary{}
			}
			return vehicles, nil
		}, nil
	}

	vid, err := params.getIdentifier("vid")
	if err != nil {
		if isKnownCommand(command) {
			return nil, err
		}
		return nil, unknownCommandError(command)
	}

	switch command {
	case CommandGetStatus:
		return func(ctx context.Context, s vehicle.Session) (interface{}, error) {
			return s.GetStatus(ctx, vid)
		}, nil
	case CommandCheckDoors:
		return func(ctx context.Context, s vehicle.Session) (interface{}, error) {
			return vehicle.SecureDoors(ctx, s, vid)
		}, nil
	case CommandStartEngine:
		return actuation(vehicle.Session.StartEngine, vid), nil
	case CommandStopEngine:
		return actuation(vehicle.Session.StopEngine, vid), nil
	case CommandLockDoors:
		return actuation(vehicle.Session.LockDoors, vid), nil
	case CommandUnlockDoors:
		return actuation(vehicle.Session.UnlockDoors, vid), nil
	case CommandHazardLightsOn:
		return actuation(vehicle.Session.HazardLightsOn, vid), nil
	case CommandHazardLightsOff:
		return actuation(vehicle.Session.HazardLightsOff, vid), nil
	case CommandSendPOI:
		poi, err := params.getPointOfInterest()
		if err != nil {
			return nil, err
		}
		return sendPOI(vid, poi), nil
	case CommandSendPOIFromURL:
		link, err := params.getString("url", true)
		if err != nil {
			return nil, err
		}
		if extractor == nil {
			extractor = &maps.Extractor{}
		}
		poi, err := extractor.Extract(ctx, link)
		if err != nil {
			return nil, err
		}
		return sendPOI(vid, poi), nil
	default:
		return nil, unknownCommandError(command)
	}
}

func sendPOI(vid string, poi vehicle.PointOfInterest) Action {
	return func(ctx context.Context, s vehicle.Session) (interface{}, error) {
		if err := s.SendPOI(ctx, vid, poi); err != nil {
			return nil, err
		}
		return Success, nil
	}
}

func isKnownCommand(command string) bool {
	for _, c := range Commands {
		if c == command {
			return true
		}
	}
	return false
}

func unknownCommandError(command string) error {
	return &protocol.CommandError{Kind: protocol.ErrValidation, Err: errors.Join(ErrUnknownCommand, errors.New(command))}
}

func (p RequestParameters) getString(key string, required bool) (string, error) {
	value, exists := p[key]

	if exists && value != nil {
		if strValue, isString := value.(string); isString {
			if strValue != "" || !required {
				return strValue, nil
			}
		} else {
			return "", invalidParamError(key)
		}
	}

	if !required {
		return "", nil
	}

	return "", missingParamError(key)
}

// getIdentifier accepts a non-empty string or a JSON number.
func (p RequestParameters) getIdentifier(key string) (string, error) {
	switch value := p[key].(type) {
	case string:
		if strings.TrimSpace(value) == "" {
			return "", missingParamError(key)
		}
		return value, nil
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64), nil
	case nil:
		return "", missingParamError(key)
	default:
		return "", invalidParamError(key)
	}
}

// getCoordinate accepts a JSON number or a string holding one.
func (p RequestParameters) getCoordinate(key string) (float64, error) {
	var num float64
	switch value := p[key].(type) {
	case float64:
		num = value
	case string:
		var err error
		if num, err = strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return 0, invalidParamError(key)
		}
	case nil:
		return 0, missingParamError(key)
	default:
		return 0, invalidParamError(key)
	}
	if math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, invalidParamError(key)
	}
	return num, nil
}

func (p RequestParameters) getPointOfInterest() (vehicle.PointOfInterest, error) {
	var poi vehicle.PointOfInterest
	var err error
	if poi.Latitude, err = p.getCoordinate("latitude"); err != nil {
		return poi, err
	}
	if poi.Longitude, err = p.getCoordinate("longitude"); err != nil {
		return poi, err
	}
	if poi.Name, err = p.getString("name", true); err != nil {
		return poi, err
	}
	return poi, poi.Validate()
}

func missingParamError(key string) error {
	return protocol.NewValidationError("missing %s param", key)
}

func invalidParamError(key string) error {
	return protocol.NewValidationError("invalid %s param", key)
}
