package verify

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	okColor   = lipgloss.Color("#2DA44E")
	badColor  = lipgloss.Color("#CF222E")
	warnColor = lipgloss.Color("#D29922")
	dimColor  = lipgloss.Color("#6E7681")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	okStyle   = lipgloss.NewStyle().Foreground(okColor).Bold(true)
	badStyle  = lipgloss.NewStyle().Foreground(badColor).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(warnColor).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(dimColor)
)

// Report renders results as a human-readable summary grouped by status.
func Report(results []Result) string {
	success, failed, invalid := Tally(results)

	var b strings.Builder
	b.WriteString(headerStyle.Render("Feed verification report"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total URLs tested: %d\n", len(results))
	fmt.Fprintf(&b, "%s %d\n", okStyle.Render("Working:"), success)
	fmt.Fprintf(&b, "%s %d\n", badStyle.Render("Failed:"), failed)
	fmt.Fprintf(&b, "%s %d\n", warnStyle.Render("Invalid:"), invalid)

	section := func(title string, style lipgloss.Style, status Status, detail func(Result) []string) {
		var rows []Result
		for _, r := range results {
			if r.Status == status {
				rows = append(rows, r)
			}
		}
		if len(rows) == 0 {
			return
		}
		b.WriteString("\n")
		b.WriteString(style.Render(title))
		b.WriteString("\n")
		for _, r := range rows {
			name := r.Name
			if r.Alternate {
				name += dimStyle.Render(" (alternate)")
			}
			fmt.Fprintf(&b, "• %s\n  URL: %s\n", name, r.URL)
			for _, line := range detail(r) {
				fmt.Fprintf(&b, "  %s\n", line)
			}
		}
	}

	section("Working feeds", okStyle, StatusSuccess, func(r Result) []string {
		ct := r.ContentType
		if ct == "" {
			ct = "n/a"
		}
		return []string{
			fmt.Sprintf("Items: %d", r.ItemCount),
			fmt.Sprintf("Response time: %dms", r.Elapsed.Milliseconds()),
			"Content type: " + ct,
		}
	})
	section("Failed feeds", badStyle, StatusFailed, func(r Result) []string {
		msg := r.Error
		if msg == "" {
			msg = "unknown error"
		}
		code := "n/a"
		if r.StatusCode != 0 {
			code = fmt.Sprint(r.StatusCode)
		}
		return []string{"Error: " + msg, "Status code: " + code}
	})
	section("Invalid feed content", warnStyle, StatusInvalid, func(Result) []string {
		return []string{"Response does not look like RSS, Atom or a sitemap"}
	})

	return b.String()
}
