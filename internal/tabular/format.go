package tabular

import (
	"strconv"
	"strings"

	"github.com/roach88/teachsync/internal/model"
)

const listSep = ", "

func clean(s string) string {
	return strings.TrimSpace(s)
}

// joinList renders an ordered id or name list.
func joinList(items []string) string {
	return strings.Join(items, listSep)
}

// splitList parses a comma-joined list, dropping blanks. Never returns nil.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := clean(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// joinOS renders OS requirements as "name (note), name".
func joinOS(reqs []model.OSRequirement) string {
	parts := make([]string, len(reqs))
	for i, r := range reqs {
		parts[i] = r.String()
	}
	return strings.Join(parts, listSep)
}

// splitOS parses "name (note), name". Commas inside parentheses belong to
// the note. Returns nil for a blank string.
func splitOS(s string) []model.OSRequirement {
	var out []model.OSRequirement
	depth := 0
	start := 0
	flush := func(end int) {
		if r, ok := parseOS(s[start:end]); ok {
			out = append(out, r)
		}
	}
	for i, ch := range s {
		switch ch {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return out
}

func parseOS(s string) (model.OSRequirement, bool) {
	s = clean(s)
	if s == "" {
		return model.OSRequirement{}, false
	}
	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return model.OSRequirement{Name: s}, true
	}
	return model.OSRequirement{
		Name: clean(s[:open]),
		Note: clean(s[open+1 : len(s)-1]),
	}, true
}

func formatBool(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func parseBool(s string) bool {
	switch strings.ToLower(clean(s)) {
	case "yes", "y", "true", "1", "oui", "x":
		return true
	}
	return false
}

func formatYear(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

// ParseOSRequirements parses an OS requirement list the way the Modules
// sheet writes it: "name (note), name".
func ParseOSRequirements(s string) []model.OSRequirement {
	return splitOS(s)
}

// FormatOSRequirements is the inverse of ParseOSRequirements.
func FormatOSRequirements(reqs []model.OSRequirement) string {
	return joinOS(reqs)
}
