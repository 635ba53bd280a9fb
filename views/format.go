package views

import (
	"strconv"
	"strings"
)

var months = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// FormatDate turns "YYYY-MM-DD" into "Month D, YYYY". Input that does not
// split into exactly three parts is returned unchanged; an unknown month or
// day falls back to its raw text.
func FormatDate(s string) string {
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	month := parts[1]
	if m, ok := leadingInt(parts[1]); ok && m >= 1 && m <= len(months) {
		month = months[m-1]
	}
	day := parts[2]
	if d, ok := leadingInt(parts[2]); ok {
		day = strconv.Itoa(d)
	}
	return month + " " + day + ", " + parts[0]
}

// leadingInt parses the decimal digits at the start of s, after optional
// spaces, so "07" is 7 and "7th" is 7.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t")
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
