package output

import (
	"fmt"
	"strings"

	"github.com/wesleyorama2/tracehttp/internal/timing"
)

const (
	waterfallWidth = 40
	barFilled      = "█"
	labelWidth     = 20
)

var phaseLabels = map[string]string{
	timing.PhaseDNSLookup:        "DNS Lookup",
	timing.PhaseTCP:              "TCP Connection",
	timing.PhaseTLS:              "TLS Handshake",
	timing.PhaseSend:             "Send",
	timing.PhaseServerProcessing: "Server Processing",
	timing.PhaseContentTransfer:  "Content Transfer",
	timing.PhaseTotal:            "Total",
}

// PhaseLabel is the display name of a phase.
func PhaseLabel(name string) string {
	if l, ok := phaseLabels[name]; ok {
		return l
	}
	return name
}

// Waterfall renders each phase as a bar offset by the phases before it,
// scaled so the total spans width columns. Non-zero phases get at least one
// column.
func Waterfall(stats timing.Stats, width int, scheme *ColorScheme) string {
	if width <= 0 {
		width = waterfallWidth
	}
	if scheme == nil {
		scheme = NoColorScheme()
	}

	total := stats.Total
	var buf strings.Builder
	var offset uint32
	for _, p := range stats.Phases() {
		label := fmt.Sprintf("  %-*s", labelWidth, PhaseLabel(p.Name))

		if p.Name == timing.PhaseTotal {
			bar := ""
			if total > 0 {
				bar = strings.Repeat(barFilled, width)
			}
			buf.WriteString(fmt.Sprintf("%s %-*s %6dms\n", label, width, scheme.Phase(p.Name).Sprint(bar), p.Millis))
			continue
		}

		start, length := scale(offset, p.Millis, total, width)
		offset += p.Millis

		pad := strings.Repeat(" ", start)
		bar := strings.Repeat(barFilled, length)
		rest := strings.Repeat(" ", width-start-length)
		buf.WriteString(fmt.Sprintf("%s %s%s%s %6dms\n", label, pad, scheme.Phase(p.Name).Sprint(bar), rest, p.Millis))
	}
	return buf.String()
}

// scale maps a phase onto columns. The result always fits within width.
func scale(offset, millis, total uint32, width int) (start, length int) {
	if total == 0 {
		return 0, 0
	}
	start = int(uint64(offset) * uint64(width) / uint64(total))
	if start > width {
		start = width
	}
	length = int(uint64(millis) * uint64(width) / uint64(total))
	if millis > 0 && length == 0 {
		length = 1
	}
	if start+length > width {
		if start == width {
			start = width - 1
		}
		length = width - start
	}
	return start, length
}
