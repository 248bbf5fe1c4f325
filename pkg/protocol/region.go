package protocol

import "strings"

// Region selects the remote endpoint and credential realm used for an account.
type Region string

const (
	RegionNorthAmerica Region = "MNAO"
	RegionEurope       Region = "MME"
	RegionJapan        Region = "MJO"
	RegionAustralia    Region = "MA"
)

// DefaultRegion is used when neither the request nor the process configuration names a region.
const DefaultRegion = RegionNorthAmerica

var regions = []Region{RegionNorthAmerica, RegionEurope, RegionJapan, RegionAustralia}

// Regions lists every supported region.
func Regions() []Region {
	return append([]Region(nil), regions...)
}

// ParseRegion converts a case-insensitive region code into a Region.
func ParseRegion(value string) (Region, error) {
	code := Region(strings.ToUpper(strings.TrimSpace(value)))
	for _, r := range regions {
		if r == code {
			return r, nil
		}
	}
	return "", NewValidationError("unknown region '%s'", value)
}

func (r Region) String() string {
	return string(r)
}
