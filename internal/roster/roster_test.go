package roster_test

import (
	"testing"

	"meikan/internal/roster"
)

func TestFieldAliasPriority(t *testing.T) {
	row := roster.Row{
		Index: 0,
		Fields: map[string]string{
			"氏名":  "佐藤花子",
			"選手名": "山田太郎",
		},
	}
	name, ok := row.PlayerName()
	if !ok {
		t.Fatal("expected a player name")
	}
	if name != "山田太郎" {
		t.Errorf("PlayerName() = %q, want %q (選手名 outranks 氏名)", name, "山田太郎")
	}
}

func TestFieldSkipsEmptyValues(t *testing.T) {
	row := roster.Row{
		Index: 0,
		Fields: map[string]string{
			"選手名": "  ",
			"氏名":  "山田太郎",
		},
	}
	name, ok := row.PlayerName()
	if !ok || name != "山田太郎" {
		t.Errorf("PlayerName() = %q, %v; want fallback to 氏名", name, ok)
	}
}

func TestFieldHeaderWidthFolded(t *testing.T) {
	row := roster.Row{
		Index:  0,
		Fields: map[string]string{"ｎａｍｅ": "Yamada Taro"},
	}
	name, ok := row.PlayerName()
	if !ok || name != "Yamada Taro" {
		t.Errorf("PlayerName() = %q, %v; want full-width header to resolve", name, ok)
	}
}

func TestFieldMissing(t *testing.T) {
	row := roster.Row{Index: 0, Fields: map[string]string{"背番号": "10"}}
	if _, ok := row.PlayerName(); ok {
		t.Error("expected no player name")
	}
	if _, ok := row.KanaName(); ok {
		t.Error("expected no kana name")
	}
}

func TestWithCorrections(t *testing.T) {
	original := roster.Dataset{
		Columns: []string{"選手名", "学年"},
		Rows: []roster.Row{
			{Index: 0, Fields: map[string]string{"選手名": "山田太郎", "学年": "2"}},
			{Index: 1, Fields: map[string]string{"選手名": "佐藤花子", "学年": "3"}},
		},
	}

	corrected := original.WithCorrections(map[int]map[string]string{
		1: {"学年": "4"},
	})

	if got := corrected.Rows[1].Fields["学年"]; got != "4" {
		t.Errorf("corrected row 1 学年 = %q, want %q", got, "4")
	}
	if got := corrected.Rows[0].Fields["学年"]; got != "2" {
		t.Errorf("uncorrected row 0 学年 = %q, want untouched %q", got, "2")
	}
	if got := original.Rows[1].Fields["学年"]; got != "3" {
		t.Errorf("original mutated: row 1 学年 = %q, want %q", got, "3")
	}
}

func TestNewInstitutionVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"university suffix stripped", "早稲田大学", []string{"早稲田大学", "早稲田"}},
		{"junior college suffix", "青山短期大学", []string{"青山短期大学", "青山"}},
		{"high school suffix", "桜ヶ丘高等学校", []string{"桜ヶ丘高等学校", "桜ヶ丘"}},
		{"english suffix", "Keio University", []string{"Keio University", "Keio"}},
		{"no suffix", "帝京クラブ", []string{"帝京クラブ"}},
		{"too short to strip", "東大学", []string{"東大学"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := roster.NewInstitution(tt.input)
			if len(inst.Variants) != len(tt.want) {
				t.Fatalf("NewInstitution(%q).Variants = %v, want %v", tt.input, inst.Variants, tt.want)
			}
			for i, variant := range tt.want {
				if inst.Variants[i] != variant {
					t.Errorf("variant[%d] = %q, want %q", i, inst.Variants[i], variant)
				}
			}
		})
	}
}

func TestInstitutionCanonical(t *testing.T) {
	inst := roster.NewInstitution(" 早稲田　大学 ")
	if got := inst.Canonical(); got != "早稲田大学" {
		t.Errorf("Canonical() = %q, want %q", got, "早稲田大学")
	}
}
