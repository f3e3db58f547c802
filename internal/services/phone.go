package services

import "strings"

var channelPrefixes = []string{"whatsapp:", "sms:", "tel:"}

// NormalizePhone canonicalises a phone address from any channel so
// "whatsapp:+263 77-123.4567" and "+263771234567" compare equal.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, p := range channelPrefixes {
		if strings.HasPrefix(lower, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ', r == '-', r == '.', r == '(', r == ')', r == '\t':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
