package roster

import (
	"strings"

	"meikan/internal/nameutil"
)

// institutionSuffixes are stripped to derive broader search variants.
// Ordered longest first so compound suffixes win.
var institutionSuffixes = []string{
	"短期大学",
	"高等学校",
	"大学院",
	"大学",
	"大學",
	"高校",
	" university",
	" college",
	"-college",
}

// Institution is a normalized organization name plus the search variants
// derived from it. Variants broaden registry search without over-matching:
// "早稲田大学" also searches as "早稲田".
type Institution struct {
	Name     string
	Variants []string
}

// NewInstitution derives an Institution from a raw organization string.
// The full name is always the first search variant. Derivation is
// deterministic.
func NewInstitution(raw string) Institution {
	name := strings.TrimSpace(raw)
	inst := Institution{Name: name}
	if name == "" {
		return inst
	}

	inst.Variants = append(inst.Variants, name)
	lower := strings.ToLower(name)
	for _, suffix := range institutionSuffixes {
		if !strings.HasSuffix(lower, suffix) {
			continue
		}
		stripped := strings.TrimSpace(name[:len(name)-len(suffix)])
		// A stripped variant shorter than two runes matches far too broadly.
		if len([]rune(stripped)) >= 2 && !containsVariant(inst.Variants, stripped) {
			inst.Variants = append(inst.Variants, stripped)
		}
		break
	}
	return inst
}

// Canonical returns the normalized comparison form of the institution name,
// used in persistent cache keys.
func (i Institution) Canonical() string {
	return nameutil.Normalize(i.Name)
}

func containsVariant(variants []string, v string) bool {
	for _, existing := range variants {
		if existing == v {
			return true
		}
	}
	return false
}
