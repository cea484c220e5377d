// Package roster models the input dataset: tabular rows of human-entered
// player records, loaded from CSV files of varying encodings and column
// naming conventions.
package roster

import (
	"strings"

	"golang.org/x/text/width"
)

// Row is one input record. Index is the stable original position within the
// dataset; Fields maps column name to the raw cell value. Rows are immutable
// once ingested.
type Row struct {
	Index  int
	Fields map[string]string
}

// Dataset is an ingested roster file.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// Logical field alias lists, highest priority first. Historical exports of
// the same roster have used several column headings for each logical field.
var (
	PlayerNameAliases  = []string{"選手名", "氏名", "名前", "選手氏名", "player_name", "name"}
	KanaNameAliases    = []string{"フリガナ", "ふりがな", "カナ", "シメイ", "kana"}
	InstitutionAliases = []string{"大学名", "学校名", "所属", "チーム名", "institution"}
	BirthDateAliases   = []string{"生年月日", "誕生日", "birth_date"}
	HeightAliases      = []string{"身長", "height"}
	WeightAliases      = []string{"体重", "weight"}
	GradeAliases       = []string{"学年", "grade"}
	PositionAliases    = []string{"ポジション", "position"}
	UniformAliases     = []string{"背番号", "uniform_number"}
)

// headerKey canonicalizes a column heading for alias lookup: width variants
// folded, surrounding space removed. Cell values are left untouched.
func headerKey(name string) string {
	return strings.TrimSpace(width.Fold.String(name))
}

// Field returns the first non-empty value among the aliased columns.
func (r Row) Field(aliases []string) (string, bool) {
	for _, alias := range aliases {
		key := headerKey(alias)
		for column, value := range r.Fields {
			if headerKey(column) != key {
				continue
			}
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

// PlayerName resolves the row's player name through the alias list.
// The boolean is false when no aliased column holds a non-empty value.
func (r Row) PlayerName() (string, bool) {
	return r.Field(PlayerNameAliases)
}

// KanaName resolves the row's phonetic name, if present.
func (r Row) KanaName() (string, bool) {
	return r.Field(KanaNameAliases)
}

// WithCorrections returns a copy of the dataset with per-row field
// corrections applied. The original dataset is not modified. Corrections
// are keyed by row index, then column name.
func (d Dataset) WithCorrections(corrections map[int]map[string]string) Dataset {
	out := Dataset{
		Columns: append([]string{}, d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
	}
	for i, row := range d.Rows {
		fields := make(map[string]string, len(row.Fields))
		for k, v := range row.Fields {
			fields[k] = v
		}
		for column, corrected := range corrections[row.Index] {
			fields[column] = corrected
		}
		out.Rows[i] = Row{Index: row.Index, Fields: fields}
	}
	return out
}
