package units

import "strings"

// Preferences holds the units a workspace has switched on. The zero value enables every
// catalog unit. Preferences are always passed explicitly; nothing in this package reads
// them from shared state.
type Preferences struct {
	enabled map[Unit]bool
}

// NewPreferences enables exactly the given units. Unknown units are dropped. When no
// known unit remains, every unit is enabled.
func NewPreferences(enabled ...Unit) Preferences {
	set := make(map[Unit]bool, len(enabled))
	for _, unit := range enabled {
		if unit.Known() {
			set[unit] = true
		}
	}
	if len(set) == 0 {
		return Preferences{}
	}
	return Preferences{enabled: set}
}

// ParsePreferences reads a comma separated unit list such as "g,kg,ml".
func ParsePreferences(value string) Preferences {
	var enabled []Unit
	for _, part := range strings.Split(value, ",") {
		if unit, ok := Parse(part); ok {
			enabled = append(enabled, unit)
		}
	}
	return NewPreferences(enabled...)
}

// String renders the preferences in the form accepted by ParsePreferences. An empty
// string means every unit is enabled.
func (p Preferences) String() string {
	if len(p.enabled) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.enabled))
	for _, unit := range All() {
		if p.enabled[unit] {
			parts = append(parts, string(unit))
		}
	}
	return strings.Join(parts, ",")
}

// Enabled reports whether u may be offered for new relations.
func (p Preferences) Enabled(u Unit) bool {
	if !u.Known() {
		return false
	}
	if len(p.enabled) == 0 {
		return true
	}
	return p.enabled[u]
}

// Units lists the enabled units of c. A category's anchor is always listed so every
// category stays usable.
func (p Preferences) Units(c Category) []Unit {
	var out []Unit
	for _, unit := range InCategory(c) {
		if unit == c.Anchor() || p.Enabled(unit) {
			out = append(out, unit)
		}
	}
	return out
}
