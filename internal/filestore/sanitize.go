package filestore

import "strings"

// SanitizeName turns free text into a filesystem and archive safe token.
// Surrounding whitespace is trimmed, then every rune outside [A-Za-z0-9_-]
// becomes a single underscore, so the result has as many runes as the
// trimmed input.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_':
		return true
	}
	return false
}

// SanitizeFileName sanitizes an uploaded file name for storage. The stem
// and the final extension are sanitized separately so the extension dot
// survives: "laporan akhir.pdf" becomes "laporan_akhir.pdf".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || dot == len(name)-1 {
		return SanitizeName(name)
	}
	return SanitizeName(name[:dot]) + "." + SanitizeName(name[dot+1:])
}
