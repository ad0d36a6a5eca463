package core

import "github.com/nyaruka/phonenumbers"

// UnknownRegion is reported when a number's region cannot be determined.
const UnknownRegion = "ZZ"

// RegionOf returns the ISO 3166-1 region for a normalized phone number
// (digits only, country code first), e.g. "EG" for 20..., "SA" for 966....
func RegionOf(phone string) string {
	if phone == "" {
		return UnknownRegion
	}
	num, err := phonenumbers.Parse("+"+phone, "")
	if err != nil {
		return UnknownRegion
	}
	if region := phonenumbers.GetRegionCodeForNumber(num); region != "" {
		return region
	}
	return UnknownRegion
}
