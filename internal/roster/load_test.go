package roster_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"meikan/internal/roster"
)

const rosterCSV = "選手名,フリガナ,学年\n山田太郎,ヤマダタロウ,2\n佐藤花子,サトウハナコ,3\n"

func TestParseUTF8(t *testing.T) {
	dataset, err := roster.Parse([]byte(rosterCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(dataset.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(dataset.Rows))
	}
	if dataset.Rows[0].Index != 0 || dataset.Rows[1].Index != 1 {
		t.Errorf("row indexes = %d, %d; want 0, 1", dataset.Rows[0].Index, dataset.Rows[1].Index)
	}
	name, _ := dataset.Rows[1].PlayerName()
	if name != "佐藤花子" {
		t.Errorf("row 1 player name = %q, want 佐藤花子", name)
	}
}

func TestParseUTF8WithBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte(rosterCSV)...)
	dataset, err := roster.Parse(raw)
	if err != nil {
		t.Fatalf("Parse with BOM: %v", err)
	}
	if dataset.Columns[0] != "選手名" {
		t.Errorf("first column = %q, want 選手名 (BOM must not leak into the header)", dataset.Columns[0])
	}
}

func TestParseShiftJIS(t *testing.T) {
	encoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(rosterCSV))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	dataset, err := roster.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse shift_jis: %v", err)
	}
	name, _ := dataset.Rows[0].PlayerName()
	if name != "山田太郎" {
		t.Errorf("player name = %q, want 山田太郎", name)
	}
}

func TestParseEUCJP(t *testing.T) {
	encoded, _, err := transform.Bytes(japanese.EUCJP.NewEncoder(), []byte(rosterCSV))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	dataset, err := roster.Parse(encoded)
	if err != nil {
		t.Fatalf("Parse euc-jp: %v", err)
	}
	if len(dataset.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(dataset.Rows))
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := roster.Parse(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestLoadAndWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.csv")
	if err := os.WriteFile(path, []byte(rosterCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	dataset, err := roster.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	outPath := filepath.Join(dir, "out.csv")
	if err := dataset.WriteCSV(outPath); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	reloaded, err := roster.Load(outPath)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Rows) != len(dataset.Rows) {
		t.Fatalf("round trip lost rows: %d != %d", len(reloaded.Rows), len(dataset.Rows))
	}
	for i := range dataset.Rows {
		want, _ := dataset.Rows[i].PlayerName()
		got, _ := reloaded.Rows[i].PlayerName()
		if got != want {
			t.Errorf("row %d player name = %q, want %q", i, got, want)
		}
	}
}
