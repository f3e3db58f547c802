package services

import (
	"regexp"
	"strings"
)

var bannedWords = []string{
	"fuck", "fucking", "shit", "bullshit", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "faggot", "retard", "tranny",
	"porn", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

var rejectionMessages = map[string]string{
	"inappropriate_language":   "Your text contains inappropriate language.",
	"url_not_allowed":          "Links are not allowed here.",
	"contact_info_not_allowed": "Please keep contact details out of public text.",
	"spam_detected":            "Your text looks like spam.",
}

// ContentFilter screens user-written public text such as review comments and
// report descriptions.
type ContentFilter struct {
	banned  *regexp.Regexp
	url     *regexp.Regexp
	email   *regexp.Regexp
	phone   *regexp.Regexp
	maxRuns int
}

func NewContentFilter() *ContentFilter {
	quoted := make([]string, len(bannedWords))
	for i, w := range bannedWords {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return &ContentFilter{
		banned:  regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`),
		url:     regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		email:   regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`),
		phone:   regexp.MustCompile(`\+?\d[\d\s().-]{8,}\d`),
		maxRuns: 4,
	}
}

// Check returns ok=false and a reason code when text must be rejected.
func (f *ContentFilter) Check(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return true, ""
	}
	switch {
	case f.banned.MatchString(text):
		return false, "inappropriate_language"
	case f.url.MatchString(text):
		return false, "url_not_allowed"
	case f.email.MatchString(text), f.phone.MatchString(text):
		return false, "contact_info_not_allowed"
	case f.hasLongRun(text):
		return false, "spam_detected"
	}
	return true, ""
}

// hasLongRun detects the same character repeated maxRuns times or more,
// ignoring case and digits.
func (f *ContentFilter) hasLongRun(text string) bool {
	var prev rune
	run := 0
	for _, r := range strings.ToLower(text) {
		if r == prev && !(r >= '0' && r <= '9') && r != ' ' {
			run++
			if run >= f.maxRuns {
				return true
			}
			continue
		}
		prev, run = r, 1
	}
	return false
}

// Screen wraps Check as an ErrInvalid carrying the human-readable reason.
func (f *ContentFilter) Screen(text string) error {
	ok, reason := f.Check(text)
	if ok {
		return nil
	}
	msg, found := rejectionMessages[reason]
	if !found {
		msg = "Your text does not meet our content guidelines."
	}
	return newError(ErrInvalid, msg)
}
