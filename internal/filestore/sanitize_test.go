package filestore

import (
	"strings"
	"testing"
	"testing/quick"
	"unicode/utf8"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"CS 101", "CS_101"},
		{"  Team A  ", "Team_A"},
		{"CS-101", "CS-101"},
		{"report.pdf", "report_pdf"},
		{"a/b\\c", "a_b_c"},
		{"Kelas–Pagi", "Kelas_Pagi"},
		{"Tugas Ñandú", "Tugas__and_"},
		{"日本", "__"},
		{"IF_2025_01", "IF_2025_01"},
		{"a\xffb", "a_b"},
		{"\xe2\x80x", "__x"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeNameProperties(t *testing.T) {
	onlySafe := func(s string) bool {
		for _, r := range SanitizeName(s) {
			if !isSafeRune(r) {
				return false
			}
		}
		return true
	}
	sameLength := func(s string) bool {
		return utf8.RuneCountInString(SanitizeName(s)) == utf8.RuneCountInString(strings.TrimSpace(s))
	}
	idempotent := func(s string) bool {
		once := SanitizeName(s)
		return SanitizeName(once) == once
	}

	for name, f := range map[string]func(string) bool{
		"only safe runes": onlySafe,
		"same length":     sameLength,
		"idempotent":      idempotent,
	} {
		if err := quick.Check(f, nil); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		for _, raw := range []string{"\xff", "a\xc3", " \xe2\x80 ", "ok\x80\x80"} {
			if !f(raw) {
				t.Errorf("%s: fails for %q", name, raw)
			}
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{" laporan akhir.pdf ", "laporan_akhir.pdf"},
		{"my file.tar.gz", "my_file_tar.gz"},
		{"noext", "noext"},
		{"trailing.", "trailing_"},
		{".env", ".env"},
		{"x.p df", "x.p_df"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
