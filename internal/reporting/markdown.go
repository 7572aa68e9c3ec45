package reporting

import (
	"fmt"
	"strings"

	"price-stats-lab/internal/verification"
)

// RenderVerificationMarkdown renders a cross-check report as Markdown.
func RenderVerificationMarkdown(r *verification.Report) string {
	var sb strings.Builder

	sb.WriteString("# Engine Cross-Check Report\n\n")

	status := "FAIL"
	if r.OK() {
		status = "PASS"
	}
	sb.WriteString(fmt.Sprintf("Status: **%s**\n\n", status))

	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Keys | %d |\n", r.Total))
	sb.WriteString(fmt.Sprintf("| Matched | %d |\n", r.Matched))
	sb.WriteString(fmt.Sprintf("| Value Divergences | %d |\n", len(r.Divergences)))
	sb.WriteString(fmt.Sprintf("| Missing Keys | %d |\n", len(r.Missing)))
	sb.WriteString(fmt.Sprintf("| Extra Keys | %d |\n", len(r.Extra)))
	sb.WriteString("\n")

	if len(r.Divergences) > 0 {
		sb.WriteString("## Divergences\n\n")
		sb.WriteString("| Security | Snap Time | Field | Incremental | Reference |\n")
		sb.WriteString("|----------|-----------|-------|-------------|-----------|\n")
		for _, d := range r.Divergences {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.9f | %.9f |\n",
				d.Key.SecurityID,
				d.Key.SnapTime.UTC().Format(timeLayout),
				d.Field,
				d.Got,
				d.Want,
			))
		}
		sb.WriteString("\n")
	}

	if len(r.Missing) > 0 {
		sb.WriteString("## Missing Keys (reference only)\n\n")
		for _, k := range r.Missing {
			sb.WriteString(fmt.Sprintf("- %s @ %s\n", k.SecurityID, k.SnapTime.UTC().Format(timeLayout)))
		}
		sb.WriteString("\n")
	}

	if len(r.Extra) > 0 {
		sb.WriteString("## Extra Keys (incremental only)\n\n")
		for _, k := range r.Extra {
			sb.WriteString(fmt.Sprintf("- %s @ %s\n", k.SecurityID, k.SnapTime.UTC().Format(timeLayout)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
