package enums

import "fmt"

// ItemKind discriminates what a cart or order line references.
type ItemKind string

const (
	ItemKindVehicle   ItemKind = "VEHICLE"
	ItemKindAccessory ItemKind = "ACCESSORY"
)

var validItemKinds = []ItemKind{
	ItemKindVehicle,
	ItemKindAccessory,
}

// String implements fmt.Stringer.
func (k ItemKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known ItemKind.
func (k ItemKind) IsValid() bool {
	for _, candidate := range validItemKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseItemKind converts raw input into an ItemKind.
func ParseItemKind(value string) (ItemKind, error) {
	for _, candidate := range validItemKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item kind %q", value)
}
