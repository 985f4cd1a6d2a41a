// Package geocode resolves coordinates into Indonesian address details.
package geocode

import "errors"

// Sentinel errors for geocoding.
var (
	// ErrAddressUnavailable indicates the reverse geocoder could not
	// resolve the coordinate.
	ErrAddressUnavailable = errors.New("address data unavailable")

	// ErrNoAddressData indicates the geocoder responded without address
	// components.
	ErrNoAddressData = errors.New("no address data returned")

	// ErrNotConfigured indicates no geocoder was configured.
	ErrNotConfigured = errors.New("geocoder not configured")
)

// SourceNominatim identifies addresses resolved through Nominatim.
const SourceNominatim = "nominatim"

// AddressDetails is a resolved address with its full hierarchy.
type AddressDetails struct {
	// Full is the complete comma-joined address hierarchy.
	Full string `json:"full"`

	// Display is the address formatted as UI lines, most specific first.
	Display []string `json:"display"`

	// Components holds the raw address components from the geocoder.
	Components map[string]string `json:"components"`

	// Source names the geocoder that produced the address.
	Source string `json:"source"`
}
