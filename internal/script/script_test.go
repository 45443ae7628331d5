package script

import "testing"

func TestIsCJK(t *testing.T) {
	cases := map[rune]bool{
		'中': true,
		'あ': true,
		'カ': true,
		'한': true,
		'A': false,
		'1': false,
		'ا': false,
	}
	for r, want := range cases {
		if got := IsCJK(r); got != want {
			t.Errorf("IsCJK(%q): expected %v, got %v", r, want, got)
		}
	}
}

func TestIsRTL(t *testing.T) {
	cases := map[rune]bool{
		'א': true,
		'ع': true,
		'٣': true,
		'a': false,
		'中': false,
	}
	for r, want := range cases {
		if got := IsRTL(r); got != want {
			t.Errorf("IsRTL(%q): expected %v, got %v", r, want, got)
		}
	}
}

func TestContainsMultilingual(t *testing.T) {
	if ContainsMultilingual("Plain English text\n1. Name") {
		t.Error("expected latin-only text not to be multilingual")
	}
	if !ContainsMultilingual("Name\n名前") {
		t.Error("expected text with a CJK character on a later line to be multilingual")
	}
	if !ContainsMultilingual("مرحبا") {
		t.Error("expected arabic text to be multilingual")
	}
	if ContainsMultilingual("") {
		t.Error("expected empty text not to be multilingual")
	}
}

func TestNumberedPattern_Matches(t *testing.T) {
	p := NumberedPattern()
	for _, line := range []string{
		"1. Name",
		"12) Address",
		"一、概要",
		"三．方法",
		"十二.结果",
		"① 氏名",
		"⑽ 備考",
		"١. الاسم",
		"٢) العنوان",
	} {
		if !p.MatchString(line) {
			t.Errorf("expected %q to match", line)
		}
	}
}

func TestNumberedPattern_Rejects(t *testing.T) {
	p := NumberedPattern()
	for _, line := range []string{
		"Name 1.",
		"1 Name",
		"Section 2)",
		"一 概要",
		"a) option",
		"",
	} {
		if p.MatchString(line) {
			t.Errorf("expected %q not to match", line)
		}
	}
}
