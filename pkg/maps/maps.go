// Package maps converts links shared from map applications into points of interest.
//
// Three link forms are recognized:
//
//   - Apple Maps (maps.apple.com): the place name is taken from the q parameter and the
//     coordinates from the ll parameter ("lat,lon").
//   - Google Maps (www.google.com, maps.google.com): coordinates are taken from a path segment of
//     the form place/<lat>,<lon>/. These links carry no usable name, so [GoogleName] is used.
//   - Google short links (goo.gl and its subdomains): the link is resolved by following redirects
//     and the result is parsed as a Google Maps link.
//
// Any other link produces an error wrapping [protocol.ErrUnsupportedLink].
package maps

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/remote-vehicle/vehicle-gateway/internal/log"
	"github.com/remote-vehicle/vehicle-gateway/pkg/protocol"
	"github.com/remote-vehicle/vehicle-gateway/pkg/vehicle"
)

// GoogleName labels points of interest extracted from Google Maps links.
const GoogleName = "Coordinate from Google Maps"

// DefaultTimeout bounds short-link resolution when the Extractor has no client of its own.
const DefaultTimeout = 10 * time.Second

const (
	appleHost     = "maps.apple.com"
	shortLinkHost = "goo.gl"
)

var googleHosts = map[string]bool{
	"www.google.com":  true,
	"maps.google.com": true,
}

var placeRE = regexp.MustCompile(`place/(.*?),(.*?)/`)

// Extractor parses map links. The zero value is ready to use.
type Extractor struct {
	// Client resolves short links. If nil, a client with DefaultTimeout is used.
	Client *http.Client
}

func (e *Extractor) client() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// Extract returns the point of interest described by rawURL. Only short links cause network
// traffic; a short link that cannot be resolved produces an error wrapping protocol.ErrNetwork.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (vehicle.PointOfInterest, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("malformed URL '%s'", rawURL)
	}

	host := strings.ToLower(u.Hostname())
	var poi vehicle.PointOfInterest
	switch {
	case host == appleHost:
		poi, err = parseAppleLink(u)
	case host == shortLinkHost || strings.HasSuffix(host, "."+shortLinkHost):
		var resolved *url.URL
		if resolved, err = e.resolve(ctx, u); err == nil {
			poi, err = parseGoogleLink(resolved)
		}
	case googleHosts[host]:
		poi, err = parseGoogleLink(u)
	default:
		err = protocol.NewUnsupportedLinkError("unrecognized host '%s'", host)
	}
	if err != nil {
		return vehicle.PointOfInterest{}, err
	}

	if err := poi.Validate(); err != nil {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("%s", err)
	}
	return poi, nil
}

// resolve follows redirects from a short link and returns the final URL.
func (e *Extractor) resolve(ctx context.Context, u *url.URL) (*url.URL, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, protocol.NewUnsupportedLinkError("%s", err)
	}
	log.Debug("Resolving short link %s", u)
	response, err := e.client().Do(request)
	if err != nil {
		return nil, protocol.NewNetworkError(err, false)
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return nil, protocol.NewNetworkError(&httpStatusError{response.StatusCode}, false)
	}
	resolved := response.Request.URL
	log.Debug("Short link %s resolved to %s", u, resolved)
	return resolved, nil
}

type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return "short link resolution returned " + strconv.Itoa(e.code) + " " + http.StatusText(e.code)
}

func parseAppleLink(u *url.URL) (vehicle.PointOfInterest, error) {
	query := u.Query()
	name := query.Get("q")
	if name == "" {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("apple maps link without q parameter")
	}
	ll := query.Get("ll")
	if ll == "" {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("apple maps link without ll parameter")
	}
	components := strings.Split(ll, ",")
	if len(components) != 2 {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("expected ll=LAT,LON but got '%s'", ll)
	}
	lat, lon, ok := parseCoordinates(components[0], components[1])
	if !ok {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("non-numeric coordinates '%s'", ll)
	}
	return vehicle.PointOfInterest{Latitude: lat, Longitude: lon, Name: name}, nil
}

func parseGoogleLink(u *url.URL) (vehicle.PointOfInterest, error) {
	match := placeRE.FindStringSubmatch(u.EscapedPath())
	if match == nil {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("no place/LAT,LON/ segment in '%s'", u.Path)
	}
	lat, lon, ok := parseCoordinates(match[1], match[2])
	if !ok {
		return vehicle.PointOfInterest{}, protocol.NewUnsupportedLinkError("non-numeric coordinates in '%s'", u.Path)
	}
	return vehicle.PointOfInterest{Latitude: lat, Longitude: lon, Name: GoogleName}, nil
}

func parseCoordinates(latText, lonText string) (lat, lon float64, ok bool) {
	var err error
	if lat, err = strconv.ParseFloat(strings.TrimSpace(latText), 64); err != nil {
		return 0, 0, false
	}
	if lon, err = strconv.ParseFloat(strings.TrimSpace(lonText), 64); err != nil {
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return 0, 0, false
	}
	return lat, lon, true
}
