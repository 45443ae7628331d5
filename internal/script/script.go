// Package script classifies characters by writing system and recognises
// numbered list markers across Western, CJK and Arabic-Indic conventions.
package script

import "regexp"

// IsCJK reports whether r is a CJK unified ideograph, Hiragana/Katakana, or a Hangul syllable.
func IsCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3040 && r <= 0x30FF) ||
		(r >= 0xAC00 && r <= 0xD7AF)
}

// IsRTL reports whether r falls in the Hebrew through Arabic Extended blocks.
func IsRTL(r rune) bool {
	return r >= 0x0590 && r <= 0x08FF
}

// ContainsMultilingual reports whether any rune of text is CJK or RTL.
func ContainsMultilingual(text string) bool {
	for _, r := range text {
		if IsCJK(r) || IsRTL(r) {
			return true
		}
	}
	return false
}

var numbered = regexp.MustCompile(`^(` +
	`[0-9]+[.)]` + // 1. 1)
	`|[一二三四五六七八九十]+[.、．]` + // 一、 二．
	`|[①②③④⑤⑥⑦⑧⑨⑩]` +
	`|[⑴⑵⑶⑷⑸⑹⑺⑻⑼⑽]` +
	`|[\x{0660}-\x{0669}]+[.)]` + // ١. ٢)
	`)`)

// NumberedPattern returns the prefix-anchored numbered list item matcher.
// The returned value is shared and safe for concurrent use.
func NumberedPattern() *regexp.Regexp {
	return numbered
}
