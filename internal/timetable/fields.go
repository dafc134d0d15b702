package timetable

import (
	"regexp"
	"strings"
)

// Field markers used by the timetable's hand-authored cell text.
const (
	periodsMarker = "Tiết"
	teacherPrefix = "gv"
	campusPrefix  = "cơ sở"
)

var (
	// timePattern matches a clock range like "08h00 -> 09h30", "7:30-9:00" or
	// "13h00 đến 15h00", or a single bare clock token for start-only blocks.
	// Group 1/2 carry the range, group 3 the bare token.
	timePattern = regexp.MustCompile(`(\d{1,2}[h:]\d{2})\s*(?:->|-|đến)\s*(\d{1,2}[h:]\d{2})|(\d{1,2}[h:]\d{2})`)

	// periodsPattern matches the periods marker followed by digits, ranges or
	// dotted lists, e.g. "Tiết 1-2" or "Tiết: 4.5.6".
	periodsPattern = regexp.MustCompile(`(?i)Tiết\s*:?\s*([\d\-\.]+)`)
)

// BlockFields holds the classified lines of one schedule block.
type BlockFields struct {
	Subject       string
	TimeRangeText string
	StartToken    string
	EndToken      string // empty for start-only blocks
	Periods       string
	Teacher       string
	Campus        string
}

// HasTime reports whether a time pattern was found; a block without one
// cannot become an event.
func (f *BlockFields) HasTime() bool { return f.StartToken != "" }

// fieldRule classifies one line. Rules run in order per line; a rule applies
// only when its field is still unset (first match wins). An exclusive rule
// that fires stops the remaining exclusive rules for that line, mirroring the
// marker precedence: a periods line is never also a teacher or campus line.
type fieldRule struct {
	exclusive bool
	apply     func(f *BlockFields, line string) bool
}

var fieldRules = []fieldRule{
	{
		// Time range. Independent of the marker chain: the same line may also
		// carry a marker field.
		apply: func(f *BlockFields, line string) bool {
			if f.HasTime() {
				return false
			}
			m := timePattern.FindStringSubmatch(line)
			if m == nil {
				return false
			}
			f.TimeRangeText = line
			if m[1] != "" && m[2] != "" {
				f.StartToken, f.EndToken = m[1], m[2]
			} else {
				f.StartToken = m[3]
			}
			return true
		},
	},
	{
		exclusive: true,
		apply: func(f *BlockFields, line string) bool {
			if f.Periods != "" {
				return false
			}
			m := periodsPattern.FindStringSubmatch(line)
			if m == nil {
				return false
			}
			f.Periods = strings.TrimSpace(m[1])
			return true
		},
	},
	{
		exclusive: true,
		apply: func(f *BlockFields, line string) bool {
			if f.Teacher != "" {
				return false
			}
			rest, ok := markerValue(line, teacherPrefix)
			if !ok {
				return false
			}
			f.Teacher = rest
			return true
		},
	},
	{
		exclusive: true,
		apply: func(f *BlockFields, line string) bool {
			if f.Campus != "" {
				return false
			}
			rest, ok := markerValue(line, campusPrefix)
			if !ok {
				return false
			}
			f.Campus = rest
			return true
		},
	},
}

// ExtractFields classifies a block's text lines. Line 0 is always the subject;
// the remaining lines are scanned independently against the ordered rules.
func ExtractFields(lines []string) BlockFields {
	var f BlockFields
	if len(lines) == 0 {
		return f
	}
	f.Subject = lines[0]

	for _, line := range lines[1:] {
		for _, rule := range fieldRules {
			if rule.apply(&f, line) && rule.exclusive {
				break
			}
		}
	}

	return f
}

// markerValue matches a case-insensitive marker prefix at the start of a line
// and returns the remainder trimmed of a leading colon and whitespace.
func markerValue(line, prefix string) (string, bool) {
	lower := strings.ToLower(line)
	if !strings.HasPrefix(lower, prefix) {
		return "", false
	}
	rest := line[len(prefix):]
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	return rest, true
}
