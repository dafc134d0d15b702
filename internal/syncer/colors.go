package syncer

// DefaultPalette is the calendar color ids cycled through when assigning
// subject colors. Color id 8 is not used.
var DefaultPalette = []string{"1", "2", "3", "4", "5", "6", "7", "9", "10", "11"}

// ColorAssigner maps each distinct subject to a stable color id for one sync
// session. Colors are assigned once per new subject, in first-seen order,
// cycling through the palette.
type ColorAssigner struct {
	palette  []string
	assigned map[string]string
}

// NewColorAssigner creates an assigner over the given palette; an empty
// palette falls back to DefaultPalette.
func NewColorAssigner(palette []string) *ColorAssigner {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &ColorAssigner{
		palette:  palette,
		assigned: make(map[string]string),
	}
}

// Color returns the subject's color id, assigning the next palette entry on
// first sight.
func (a *ColorAssigner) Color(subject string) string {
	if c, ok := a.assigned[subject]; ok {
		return c
	}
	c := a.palette[len(a.assigned)%len(a.palette)]
	a.assigned[subject] = c
	return c
}
