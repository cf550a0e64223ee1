package output

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/evspread/internal/game/optimizer"
	"github.com/cory-johannsen/evspread/internal/game/stats"
)

var statusColor = map[optimizer.Status]string{
	optimizer.Satisfied:  Green,
	optimizer.Partial:    Yellow,
	optimizer.Infeasible: Red,
	optimizer.Skipped:    Dim,
}

// RenderResult formats one result as colored terminal text.
//
// Precondition: res must be non-nil.
func RenderResult(res *optimizer.Result) string {
	var b strings.Builder

	b.WriteString(Colorf(BrightYellow, "%s (%s)", requestName(res), res.Species))
	b.WriteString("\n")
	b.WriteString(Colorf(Dim, "run %s", res.RunID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-6s %s\n", "EVs", renderSpread(res.Spread))
	fmt.Fprintf(&b, "  %-6s %s\n", "Stats", renderSpread(res.Final))
	fmt.Fprintf(&b, "  %-6s %d\n", "Left", res.Remaining)

	if len(res.Outcomes) > 0 {
		b.WriteString(Colorize(Cyan, "  Goals:"))
		b.WriteString("\n")
	}
	for _, o := range res.Outcomes {
		label := o.Status.String()
		if o.Already {
			label += " (already)"
		}
		fmt.Fprintf(&b, "    %s%-20s%s p%-3d %s", statusColor[o.Status], label, Reset, o.Goal.Priority, o.Goal.Name())
		if o.Cost.Total() > 0 {
			fmt.Fprintf(&b, " %s", Colorf(White, "+%s", renderSpread(o.Cost)))
		}
		if o.Reason != "" {
			fmt.Fprintf(&b, " %s", Colorf(Dim, "(%s)", o.Reason))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderResults formats every non-nil result, separated by blank lines.
func RenderResults(results []*optimizer.Result) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		if res != nil {
			parts = append(parts, RenderResult(res))
		}
	}
	return strings.Join(parts, "\n")
}

// renderSpread lists the non-zero entries, or "0" when all are zero.
func renderSpread(sp stats.Spread) string {
	var parts []string
	for _, s := range stats.All {
		if v := sp.Get(s); v != 0 {
			parts = append(parts, fmt.Sprintf("%d %s", v, s))
		}
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " / ")
}
