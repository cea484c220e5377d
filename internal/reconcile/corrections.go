package reconcile

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"meikan/internal/nameutil"
	"meikan/internal/registry"
	"meikan/internal/roster"
)

// logicalFields binds each registry extended field to the dataset column
// aliases it may correct.
var logicalFields = []struct {
	key     string
	aliases []string
}{
	{"height", roster.HeightAliases},
	{"weight", roster.WeightAliases},
	{"grade", roster.GradeAliases},
	{"position", roster.PositionAliases},
	{"uniform_number", roster.UniformAliases},
	{"birth_date", roster.BirthDateAliases},
}

// diffCorrections computes the sparse column→corrected-value map for a
// matched row: only fields where the registry value genuinely differs from
// the dataset value are included. Numeric fields compare numerically after
// stripping units, so "180cm" and "180" are not a correction.
func diffCorrections(row roster.Row, member *registry.Member) map[string]string {
	if member == nil {
		return nil
	}
	corrections := make(map[string]string)

	extended := member.ExtendedFields()
	for _, field := range logicalFields {
		registryValue, ok := extended[field.key]
		if !ok {
			continue
		}
		column, original, found := resolveColumn(row, field.aliases)
		if !found {
			continue
		}
		if !valuesEqual(original, registryValue) {
			corrections[column] = registryValue
		}
	}

	// The player name itself is corrected when it differs textually from
	// the registry spelling, e.g. a partial match on a mistyped name.
	if member.Name != "" {
		if column, original, found := resolveColumn(row, roster.PlayerNameAliases); found {
			if !valuesEqual(original, member.Name) {
				corrections[column] = member.Name
			}
		}
	}

	if len(corrections) == 0 {
		return nil
	}
	return corrections
}

// resolveColumn finds the first aliased column present in the row, whether
// or not its value is empty: an empty dataset cell is still correctable.
func resolveColumn(row roster.Row, aliases []string) (column, value string, found bool) {
	for _, alias := range aliases {
		for col, v := range row.Fields {
			if strings.TrimSpace(width.Fold.String(col)) == strings.TrimSpace(width.Fold.String(alias)) {
				return col, v, true
			}
		}
	}
	return "", "", false
}

// valuesEqual reports whether the dataset and registry values agree, so no
// correction is needed. Values that parse as numbers compare numerically;
// everything else compares as normalized text.
func valuesEqual(original, registryValue string) bool {
	if a, okA := parseNumeric(original); okA {
		if b, okB := parseNumeric(registryValue); okB {
			return a == b
		}
	}
	return nameutil.Normalize(original) == nameutil.Normalize(registryValue)
}

// parseNumeric extracts a leading number from a value, tolerating unit
// suffixes such as "cm" or "kg" and full-width digits.
func parseNumeric(value string) (float64, bool) {
	folded := strings.TrimSpace(width.Fold.String(value))
	if folded == "" {
		return 0, false
	}
	end := 0
	for _, r := range folded {
		if unicode.IsDigit(r) || r == '.' || (end == 0 && (r == '-' || r == '+')) {
			end += len(string(r))
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	number, err := strconv.ParseFloat(folded[:end], 64)
	if err != nil {
		return 0, false
	}
	// A numeric prefix followed by more than a short unit suffix is text,
	// not a measurement.
	if len([]rune(folded[end:])) > 3 {
		return 0, false
	}
	return number, true
}
