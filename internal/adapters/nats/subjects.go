package natsadapter

import "strings"

// RegionCheckPrefix is the subject prefix for region check events.
// Events for region "central" go to "geo.region.checked.central".
const RegionCheckPrefix = "geo.region.checked"

// adhocToken names checks against unnamed, request-supplied regions.
const adhocToken = "adhoc"

// RegionCheckSubject returns the subject for checks against region.
func RegionCheckSubject(region string) string {
	return RegionCheckPrefix + "." + subjectToken(region)
}

// RegionCheckFilter returns the subscription subject for region, or the
// wildcard over all regions when region is empty.
func RegionCheckFilter(region string) string {
	if region == "" {
		return RegionCheckPrefix + ".>"
	}
	return RegionCheckSubject(region)
}

// subjectToken maps a region name onto a single NATS subject token.
func subjectToken(name string) string {
	if name == "" {
		return adhocToken
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '*' || r == '>' || r <= ' ':
			return '_'
		default:
			return r
		}
	}, name)
}
