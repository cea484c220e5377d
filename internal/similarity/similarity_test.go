package similarity_test

import (
	"math"
	"testing"

	"meikan/internal/similarity"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "山田太郎", "山田太郎", 1.0},
		{"both empty", "", "", 1.0},
		{"one empty", "山田", "", 0.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"one char differs", "山田太郎", "山田次郎", 0.75},
		{"suffix added", "apple", "applet", 10.0 / 11.0},
		{"transposed halves", "abcd", "cdab", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarity.Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"山田太郎", "山田次郎"},
		{"apple", "applet"},
		{"さとう", "さいとう"},
		{"abc", ""},
	}
	for _, pair := range pairs {
		ab := similarity.Ratio(pair[0], pair[1])
		ba := similarity.Ratio(pair[1], pair[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Ratio(%q, %q) = %v but Ratio(%q, %q) = %v", pair[0], pair[1], ab, pair[1], pair[0], ba)
		}
	}
}

func TestRatioBounds(t *testing.T) {
	pairs := [][2]string{
		{"山田太郎", "佐藤花子"},
		{"a", "ab"},
		{"こうのとり", "こうもり"},
	}
	for _, pair := range pairs {
		score := similarity.Ratio(pair[0], pair[1])
		if score < 0 || score > 1 {
			t.Errorf("Ratio(%q, %q) = %v out of [0, 1]", pair[0], pair[1], score)
		}
	}
}

func TestPolicyClassify(t *testing.T) {
	policy := similarity.DefaultPolicy()
	tests := []struct {
		score float64
		want  similarity.Class
	}{
		{1.0, similarity.Exact},
		{0.99, similarity.Candidate},
		{0.6, similarity.Candidate},
		{0.59, similarity.Rejected},
		{0.0, similarity.Rejected},
	}
	for _, tt := range tests {
		if got := policy.Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestPolicyCustomThresholds(t *testing.T) {
	policy := similarity.Policy{ExactThreshold: 0.95, CandidateThreshold: 0.8}
	if got := policy.Classify(0.96); got != similarity.Exact {
		t.Errorf("Classify(0.96) = %v, want Exact", got)
	}
	if got := policy.Classify(0.85); got != similarity.Candidate {
		t.Errorf("Classify(0.85) = %v, want Candidate", got)
	}
	if got := policy.Classify(0.7); got != similarity.Rejected {
		t.Errorf("Classify(0.7) = %v, want Rejected", got)
	}
}
