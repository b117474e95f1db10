package output

import (
	"github.com/fatih/color"

	"github.com/wesleyorama2/tracehttp/internal/timing"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Method      *color.Color
	URL         *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	HeaderValue *color.Color
	Label       *color.Color
	Success     *color.Color
	Error       *color.Color
	Highlight   *color.Color

	// Phases colors the waterfall bars, keyed by phase name.
	Phases map[string]*color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Method:      color.New(color.FgBlue, color.Bold),
		URL:         color.New(color.FgCyan),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgYellow),
		HeaderValue: color.New(color.FgWhite),
		Label:       color.New(color.Faint),
		Success:     color.New(color.FgGreen),
		Error:       color.New(color.FgRed),
		Highlight:   color.New(color.FgMagenta, color.Bold),
		Phases: map[string]*color.Color{
			timing.PhaseDNSLookup:        color.New(color.FgCyan),
			timing.PhaseTCP:              color.New(color.FgYellow),
			timing.PhaseTLS:              color.New(color.FgMagenta),
			timing.PhaseSend:             color.New(color.FgBlue),
			timing.PhaseServerProcessing: color.New(color.FgGreen),
			timing.PhaseContentTransfer:  color.New(color.FgWhite),
			timing.PhaseTotal:            color.New(color.Bold),
		},
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	for _, c := range []*color.Color{
		scheme.Method, scheme.URL, scheme.StatusOK, scheme.StatusWarn, scheme.StatusError,
		scheme.HeaderKey, scheme.HeaderValue, scheme.Label, scheme.Success, scheme.Error,
		scheme.Highlight,
	} {
		c.DisableColor()
	}
	for _, c := range scheme.Phases {
		c.DisableColor()
	}

	return scheme
}

// Phase returns the color for a waterfall phase.
func (s *ColorScheme) Phase(name string) *color.Color {
	if c, ok := s.Phases[name]; ok {
		return c
	}
	return s.HeaderValue
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}
