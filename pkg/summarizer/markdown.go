package summarizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/applied-geosolutions/lidar2dems/pkg/pipeline"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(summary *Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", l10n.T("DEM Summary"))
	fmt.Fprintf(&sb, "%s: %s\n\n", l10n.T("Generated"), summary.GeneratedAt.Format("2006-01-02 15:04:05"))

	f.writeSettings(&sb, summary.Settings, summary.Duration.Round(time.Millisecond).String())

	fmt.Fprintf(&sb, "## %s\n\n", l10n.T("Products"))
	if len(summary.Runs) == 0 {
		fmt.Fprintf(&sb, "%s\n\n", l10n.T("None"))
	}
	for _, run := range summary.Runs {
		f.writeRun(&sb, run)
	}

	fmt.Fprintf(&sb, "---\n%s l2d\n", l10n.T("Generated by"))
	return sb.String()
}

func (f *MarkdownFormatter) writeSettings(sb *strings.Builder, s Settings, duration string) {
	fmt.Fprintf(sb, "## %s\n\n", l10n.T("Settings"))
	fmt.Fprintf(sb, "| %s | %s |\n|---|---|\n", l10n.T("Item"), l10n.T("Value"))
	fmt.Fprintf(sb, "| %s | %s |\n", l10n.T("Resolution"), formatFloat(s.Resolution))
	fmt.Fprintf(sb, "| %s | %s |\n", l10n.T("Radii"), strings.Join(s.Radii, ", "))
	fmt.Fprintf(sb, "| %s | %s |\n", l10n.T("Gap-fill"), yesNo(s.GapFill))
	fmt.Fprintf(sb, "| %s | %s |\n", l10n.T("Site buffer"), formatFloat(s.Buffer))
	fmt.Fprintf(sb, "| %s | %s |\n", l10n.T("Filters"), describeFilters(s.Filters))
	fmt.Fprintf(sb, "| %s | %s |\n\n", l10n.T("Total Duration"), duration)
}

func (f *MarkdownFormatter) writeRun(sb *strings.Builder, run Run) {
	title := string(run.DEMType)
	if run.Site != "" {
		title = run.Site + " / " + title
	}
	fmt.Fprintf(sb, "### %s\n\n", title)
	fmt.Fprintf(sb, "%s: %d\n\n", l10n.T("Input files"), run.Inputs)

	if run.Error != "" {
		fmt.Fprintf(sb, "**%s**: %s\n\n", l10n.T("Failed"), run.Error)
		return
	}
	if run.Skipped > 0 {
		fmt.Fprintf(sb, "%s: %d\n\n", l10n.T("Radii skipped (already present)"), run.Skipped)
	}

	fmt.Fprintf(sb, "| %s | %s | %s |\n|---|---|---|\n", l10n.T("Product"), l10n.T("Path"), l10n.T("Gap-filled"))
	for _, p := range run.Products {
		fmt.Fprintf(sb, "| %s | `%s` | %s |\n", p.Product, p.Path, yesNo(p.GapFilled))
	}
	sb.WriteString("\n")
}

func describeFilters(filters pipeline.Filters) string {
	var parts []string
	if filters.ReturnNum != nil {
		parts = append(parts, fmt.Sprintf("returnnum=%d", *filters.ReturnNum))
	}
	if filters.MaxAngle != nil {
		parts = append(parts, "maxangle="+formatFloat(*filters.MaxAngle))
	}
	if filters.MaxZ != nil {
		parts = append(parts, "maxz="+formatFloat(*filters.MaxZ))
	}
	if filters.MaxSD != nil {
		parts = append(parts, fmt.Sprintf("maxsd=%s (k=%d)", formatFloat(*filters.MaxSD), filters.OutlierMeanK))
	}
	if filters.Decimation != nil {
		parts = append(parts, fmt.Sprintf("decimation=%d", *filters.Decimation))
	}
	if len(parts) == 0 {
		return l10n.T("None")
	}
	return strings.Join(parts, ", ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return l10n.T("Yes")
	}
	return l10n.T("No")
}
