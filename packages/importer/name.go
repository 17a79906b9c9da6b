package importer

import "strings"

// SanitizeName turns key into a valid XML element name (an NCName).
// Runes that may not appear in a name are removed, then any leading runes
// that may not start a name. An empty result yields fallback.
func SanitizeName(key, fallback string) string {
	var b strings.Builder
	b.Grow(len(key))
	started := false
	for _, r := range key {
		if !started {
			if !isNameStartChar(r) {
				continue
			}
			started = true
		}
		if isNameChar(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return fallback
	}
	return b.String()
}

// isNameStartChar follows the NameStartChar production of XML 1.0, without ':'.
func isNameStartChar(r rune) bool {
	switch {
	case r == '_', 'A' <= r && r <= 'Z', 'a' <= r && r <= 'z':
		return true
	case 0xC0 <= r && r <= 0xD6,
		0xD8 <= r && r <= 0xF6,
		0xF8 <= r && r <= 0x2FF,
		0x370 <= r && r <= 0x37D,
		0x37F <= r && r <= 0x1FFF,
		0x200C <= r && r <= 0x200D,
		0x2070 <= r && r <= 0x218F,
		0x2C00 <= r && r <= 0x2FEF,
		0x3001 <= r && r <= 0xD7FF,
		0xF900 <= r && r <= 0xFDCF,
		0xFDF0 <= r && r <= 0xFFFD,
		0x10000 <= r && r <= 0xEFFFF:
		return true
	}
	return false
}

// isNameChar follows the NameChar production of XML 1.0, without ':'.
func isNameChar(r rune) bool {
	switch {
	case isNameStartChar(r):
		return true
	case r == '-', r == '.', '0' <= r && r <= '9', r == 0xB7:
		return true
	case 0x300 <= r && r <= 0x36F, 0x203F <= r && r <= 0x2040:
		return true
	}
	return false
}
