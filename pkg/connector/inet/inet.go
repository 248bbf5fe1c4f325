// Package inet implements [vehicle.Dialer] and [vehicle.Session] over the remote vehicle service's
// JSON REST API.
package inet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

// DefaultTimeout bounds every request made by a Dialer that has no client of its own.
const DefaultTimeout = 30 * time.Second

// MaxResponseLength caps the size of response bodies read from the remote service.
const MaxResponseLength = 1000000

const defaultUserAgent = "vehicle-gateway/1.0"

// DefaultBaseURLs maps each region to the remote service's API root.
var DefaultBaseURLs = map[protocol.Region]string{
	protocol.RegionNorthAmerica: "https://mnao.api.remote-vehicle.net/v1",
	protocol.RegionEurope:       "https://mme.api.remote-vehicle.net/v1",
	protocol.RegionJapan:        "https://mjo.api.remote-vehicle.net/v1",
	protocol.RegionAustralia:    "https://ma.api.remote-vehicle.net/v1",
}

// Remote command names, as they appear in command endpoint paths.
const (
	commandDoorLock        = "door-lock"
	commandDoorUnlock      = "door-unlock"
	commandEngineStart     = "engine-start"
	commandEngineStop      = "engine-stop"
	commandHazardLightsOn  = "hazard-lights-on"
	commandHazardLightsOff = "hazard-lights-off"
	commandSendPOI         = "send-poi"
)

// HttpError is returned when the remote service replies with an unexpected status code.
type HttpError struct {
	Code    int
	Message string
}

func (e *HttpError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

func (e *HttpError) MayHaveSucceeded() bool {
	if e.Code >= 400 && e.Code < 500 {
		return false
	}
	return e.Code != http.StatusServiceUnavailable
}

func (e *HttpError) Temporary() bool {
	return e.Code == http.StatusServiceUnavailable ||
		e.Code == http.StatusGatewayTimeout ||
		e.Code == http.StatusRequestTimeout ||
		e.Code == http.StatusTooManyRequests
}

// Dialer signs in to the remote service. The zero value uses DefaultBaseURLs and an HTTP client
// with DefaultTimeout.
type Dialer struct {
	// Client sends every request for Sessions created by this Dialer.
	Client *http.Client
	// BaseURL, if set, overrides DefaultBaseURLs for every region.
	BaseURL string
	// UserAgent is sent with every request.
	UserAgent string
}

// NewDialer returns a Dialer whose client times out after timeout.
func NewDialer(baseURL string, timeout time.Duration) *Dialer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dialer{
		Client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (d *Dialer) baseURL(region protocol.Region) (string, error) {
	if d.BaseURL != "" {
		return strings.TrimSuffix(d.BaseURL, "/"), nil
	}
	base, ok := DefaultBaseURLs[region]
	if !ok {
		return "", protocol.NewConfigurationError("no API endpoint for region '%s'", region)
	}
	return base, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Dial implements [vehicle.Dialer].
func (d *Dialer) Dial(ctx context.Context, username, password string, region protocol.Region) (vehicle.Session, error) {
	base, err := d.baseURL(region)
	if err != nil {
		return nil, err
	}
	conn := &Connection{
		UserAgent: d.UserAgent,
		client:    d.Client,
		serverURL: base,
		region:    region,
	}
	if conn.client == nil {
		conn.client = &http.Client{Timeout: DefaultTimeout}
	}
	if conn.UserAgent == "" {
		conn.UserAgent = defaultUserAgent
	}

	body, err := conn.send(ctx, http.MethodPost, "auth/login", &loginRequest{Username: username, Password: password}, false)
	if err != nil {
		var httpErr *HttpError
		if errors.As(err, &httpErr) && (httpErr.Code == http.StatusUnauthorized || httpErr.Code == http.StatusForbidden) {
			return nil, protocol.NewAuthenticationError("%s sign-in for %s: %s", region, username, httpErr)
		}
		return nil, classify(err, false)
	}

	var reply loginResponse
	if err := json.Unmarshal(body, &reply); err != nil || reply.AccessToken == "" {
		return nil, protocol.NewAuthenticationError("sign-in reply did not include an access token")
	}
	if err := inspectToken(reply.AccessToken); err != nil {
		return nil, err
	}
	conn.authHeader = "Bearer " + reply.AccessToken
	return conn, nil
}

// inspectToken rejects access tokens that are JWTs whose expiry has already passed. Opaque tokens
// are accepted as-is; the remote service remains the authority on their validity.
func inspectToken(token string) error {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		log.Debug("Access token is not a JWT; treating it as opaque")
		return nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return protocol.NewAuthenticationError("access token expired at %s", claims.ExpiresAt.Time)
	}
	log.Debug("Signed in as '%s'", claims.Subject)
	return nil
}

// Connection implements [vehicle.Session]. A Connection is owned by a single caller and is not safe
// for concurrent use.
type Connection struct {
	UserAgent  string
	client     *http.Client
	serverURL  string
	region     protocol.Region
	authHeader string
}

// Region returns the region this Connection signed in to.
func (c *Connection) Region() protocol.Region {
	return c.region
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func errorMessage(body []byte) string {
	var reply errorResponse
	if err := json.Unmarshal(body, &reply); err == nil && reply.Error != "" {
		if reply.Description != "" {
			return reply.Error + ": " + reply.Description
		}
		return reply.Error
	}
	return strings.TrimSpace(string(body))
}

// send issues a request to endpoint (relative to the server URL) and returns the response body.
// If actuation is true, transport failures after the request was written are reported as possibly
// successful.
func (c *Connection) send(ctx context.Context, method, endpoint string, payload interface{}, actuation bool) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(body)
	}
	target := fmt.Sprintf("%s/%s", c.serverURL, endpoint)
	log.Debug("Sending %s request to %s", method, target)
	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, protocol.NewConfigurationError("invalid API endpoint: %s", err)
	}
	request.Header.Set("User-Agent", c.UserAgent)
	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.authHeader != "" {
		request.Header.Set("Authorization", c.authHeader)
	}

	result, err := c.client.Do(request)
	if err != nil {
		var urlErr *url.Error
		timedOut := errors.As(err, &urlErr) && urlErr.Timeout()
		return nil, protocol.NewNetworkError(err, actuation && timedOut)
	}
	defer result.Body.Close()

	limited := &io.LimitedReader{R: result.Body, N: MaxResponseLength + 1}
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, protocol.NewNetworkError(err, actuation)
	}
	if len(body) > MaxResponseLength {
		return nil, protocol.NewNetworkError(errors.New("response exceeds maximum length"), actuation)
	}

	log.Debug("Server returned %d: %s", result.StatusCode, http.StatusText(result.StatusCode))
	if result.StatusCode >= 200 && result.StatusCode < 300 {
		return body, nil
	}
	return nil, &HttpError{Code: result.StatusCode, Message: errorMessage(body)}
}

// classify converts HttpErrors into protocol error kinds. Only actuations may have succeeded
// despite an error reply.
func classify(err error, actuation bool) error {
	var httpErr *HttpError
	if !errors.As(err, &httpErr) {
		return err
	}
	if httpErr.Code == http.StatusUnauthorized {
		return protocol.NewAuthenticationError("session rejected: %s", httpErr)
	}
	return &protocol.CommandError{
		Kind:              protocol.ErrRemoteCommand,
		Err:               httpErr,
		PossibleSuccess:   actuation && httpErr.MayHaveSucceeded(),
		PossibleTemporary: httpErr.Temporary(),
	}
}

func (c *Connection) ListVehicles(ctx context.Context) ([]vehicle.Summary, error) {
	body, err := c.send(ctx, http.MethodGet, "vehicles", nil, false)
	if err != nil {
		return nil, classify(err, false)
	}
	var vehicles []vehicle.Summary
	if err := json.Unmarshal(body, &vehicles); err != nil {
		return nil, protocol.NewRemoteCommandError("unable to parse vehicle list: %s", err)
	}
	return vehicles, nil
}

func (c *Connection) GetStatus(ctx context.Context, vid string) (*vehicle.Status, error) {
	body, err := c.send(ctx, http.MethodGet, fmt.Sprintf("vehicles/%s/status", url.PathEscape(vid)), nil, false)
	if err != nil {
		return nil, classify(err, false)
	}
	var status vehicle.Status
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, protocol.NewRemoteCommandError("unable to parse vehicle status: %s", err)
	}
	return &status, nil
}

func (c *Connection) command(ctx context.Context, vid, name string, payload interface{}) error {
	endpoint := fmt.Sprintf("vehicles/%s/commands/%s", url.PathEscape(vid), name)
	if _, err := c.send(ctx, http.MethodPost, endpoint, payload, true); err != nil {
		return classify(err, true)
	}
	return nil
}

func (c *Connection) LockDoors(ctx context.Context, vid string) error {
	return c.command(ctx, vid, commandDoorLock, nil)
}

func (c *Connection) UnlockDoors(ctx context.Context, vid string) error {
	return c.command(ctx, vid, commandDoorUnlock, nil)
}

func (c *Connection) StartEngine(ctx context.Context, vid string) error {
	return c.command(ctx, vid, commandEngineStart, nil)
}

func (c *Connection) StopEngine(ctx context.Context, vid string) error {
	return c.command(ctx, vid, commandEngineStop, nil)
}

func (c *Connection) HazardLightsOn(ctx context.Context, vid string) error {
	return c.command(ctx, vid, commandHazardLightsOn, nil)
}

func (c *Connection) HazardLightsOff(ctx context.Context, vid string) error {
	return c.command(ctx, vid, commandHazardLightsOff, nil)
}

func (c *Connection) SendPOI(ctx context.Context, vid string, poi vehicle.PointOfInterest) error {
	if err := poi.Validate(); err != nil {
		return err
	}
	return c.command(ctx, vid, commandSendPOI, &poi)
}

// Close signs out. Repeated calls are no-ops.
func (c *Connection) Close(ctx context.Context) error {
	if c.authHeader == "" {
		return nil
	}
	_, err := c.send(ctx, http.MethodPost, "auth/logout", nil, false)
	c.authHeader = ""
	if err != nil {
		return classify(err, false)
	}
	return nil
}
