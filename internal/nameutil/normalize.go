// Package nameutil canonicalizes person names for comparison.
//
// Canonical forms are for matching only and must never be displayed or
// stored in place of the original value.
package nameutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// separator runes removed during normalization. Interpuncts and ideographic
// punctuation are common in registry name fields; width.Fold has already
// collapsed the full-width ASCII variants by the time these are checked.
func isSeparator(r rune) bool {
	switch r {
	case '・', '･', '、', '，', ',', '。', '．', '.':
		return true
	}
	return unicode.IsSpace(r)
}

// dash runes removed as transliteration noise: the katakana long vowel mark,
// ASCII hyphen, and the unicode dash block (hyphens through horizontal bar),
// plus minus sign and macron.
func isDash(r rune) bool {
	if r == 'ー' || r == '-' || r == '−' || r == '¯' || r == 'ˉ' {
		return true
	}
	return r >= '‐' && r <= '―'
}

// Normalize converts a raw name into its canonical comparison form:
// width-folded, separator-free, case-folded, dash-free. Empty input
// normalizes to the empty string, which callers must treat as unusable
// for matching.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	// width.Fold leaves half-width voiced kana as base kana plus a
	// combining sound mark; NFC composes them so ﾀﾞ and ダ canonicalize
	// to the same string.
	folded := norm.NFC.String(width.Fold.String(raw))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isSeparator(r) || isDash(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// IsKana reports whether the canonical name consists entirely of kana.
// Names written in katakana or hiragana can be matched against a registry
// member's phonetic (kana) spelling in addition to the display name.
func IsKana(canonical string) bool {
	if canonical == "" {
		return false
	}
	for _, r := range canonical {
		if !unicode.In(r, unicode.Hiragana, unicode.Katakana) {
			return false
		}
	}
	return true
}
