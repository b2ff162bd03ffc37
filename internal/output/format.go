// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"tman/internal/service"
)

// DateLayout is used for createdAt in task lines.
const DateLayout = "2006-01-02"

// FormatTask formats a task line.
// Format: "{ID:>4}  {STATUS:<11}  {DATE}  {TITLE}\n"
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4d  %-11s  %s  %s\n",
		task.ID, task.Status.Label(), formatDate(task.CreatedAt.Time, DateLayout), normalizeTitle(task.Title))
}

// FormatTaskDetail formats every field of a task, one per line. The
// description is printed last and keeps its own line breaks.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %d\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", task.Status.Label())
	fmt.Fprintf(w, "created:     %s\n", formatDate(task.CreatedAt.Time, "2006-01-02 15:04"))
	if strings.TrimSpace(task.Description) != "" {
		fmt.Fprintln(w, "description:")
		for _, line := range strings.Split(strings.TrimRight(task.Description, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// FormatPage formats a page of tasks followed by its footer.
// Page numbers are shown 1-based.
func FormatPage(w io.Writer, page service.Page) {
	for _, task := range page.Content {
		FormatTask(w, task)
	}
	if page.TotalPages > 0 {
		fmt.Fprintf(w, "page %d of %d\n", page.Index+1, page.TotalPages)
	}
}

// FormatProfile formats the signed-in user.
func FormatProfile(w io.Writer, p service.Profile) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		fmt.Fprintf(w, "%s (id %d)\n", p.Email, p.ID)
		return
	}
	fmt.Fprintf(w, "%s <%s> (id %d)\n", name, p.Email, p.ID)
}

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return strings.Repeat("-", len(DateLayout))
	}
	return t.Format(layout)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
