package prepare

import "slices"

// Prefix is the table-name prefix configuration: one prefix for every table,
// or an ordered list picked by a placeholder's precision (%2t uses index 2).
// The zero value prefixes nothing.
type Prefix struct {
	values []string
	list   bool
}

// SinglePrefix returns a prefix used regardless of placeholder precision.
func SinglePrefix(p string) Prefix {
	return Prefix{values: []string{p}}
}

// PrefixList returns an indexed prefix list.
func PrefixList(prefixes ...string) Prefix {
	return Prefix{values: slices.Clone(prefixes), list: true}
}

// Lookup returns the prefix for index. Lists fall back to index 0 when index
// is out of range.
func (p Prefix) Lookup(index int) string {
	if len(p.values) == 0 {
		return ""
	}
	if !p.list || index < 0 || index >= len(p.values) {
		return p.values[0]
	}
	return p.values[index]
}

// IsList reports whether p was built from an indexed list.
func (p Prefix) IsList() bool { return p.list }

// Values returns a copy of the configured prefixes.
func (p Prefix) Values() []string { return slices.Clone(p.values) }
