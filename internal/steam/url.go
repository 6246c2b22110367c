package steam

import "regexp"

// URLKind identifies which accepted shape a profile reference matched.
type URLKind int

const (
	// URLInvalid means the reference matched neither accepted shape.
	URLInvalid URLKind = iota
	// URLProfile is a direct SteamID64 reference; no network call needed.
	URLProfile
	// URLVanity is a custom alias that must be resolved remotely.
	URLVanity
)

// Both patterns require a full-string match with an optional trailing
// slash; partial matches inside a longer string are rejected.
var (
	profileURLRe = regexp.MustCompile(`^https?://steamcommunity\.com/profiles/(\d{17})/?$`)
	vanityURLRe  = regexp.MustCompile(`^https?://steamcommunity\.com/id/([\w.-]+)/?$`)
)

// ParseProfileURL classifies a user-supplied Steam profile URL. For
// URLProfile the returned value is the embedded SteamID64; for URLVanity
// it is the vanity name still to be resolved.
func ParseProfileURL(raw string) (URLKind, string) {
	if m := profileURLRe.FindStringSubmatch(raw); m != nil {
		return URLProfile, m[1]
	}
	if m := vanityURLRe.FindStringSubmatch(raw); m != nil {
		return URLVanity, m[1]
	}
	return URLInvalid, ""
}
