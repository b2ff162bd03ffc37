package output

import (
	"bytes"
	"testing"
	"time"

	"tman/internal/service"
	"tman/internal/testutil"
)

func at(s string) service.Timestamp {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		panic(err)
	}
	return service.Timestamp{Time: t}
}

func TestFormatPage(t *testing.T) {
	page := service.Page{
		Content: []service.Task{
			{ID: 12, Title: "Buy milk", Status: service.StatusPending, CreatedAt: at("2024-03-02T10:15:00")},
			{ID: 7, Title: "Write\nreport", Status: service.StatusInProgress, CreatedAt: at("2024-03-01T08:00:00")},
			{ID: 3, Title: "  ", Status: service.StatusDone},
		},
		TotalPages: 3,
		Index:      1,
	}

	var buf bytes.Buffer
	FormatPage(&buf, page)
	testutil.Golden(t, "page", buf.Bytes())
}

func TestFormatPage_Empty(t *testing.T) {
	var buf bytes.Buffer
	FormatPage(&buf, service.Page{Content: []service.Task{}})
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestFormatTaskDetail(t *testing.T) {
	task := service.Task{
		ID:          7,
		Title:       "Write report",
		Description: "Quarterly numbers\nSend to Ana\n",
		Status:      service.StatusInProgress,
		CreatedAt:   at("2024-03-01T08:00:00"),
	}

	var buf bytes.Buffer
	FormatTaskDetail(&buf, task)
	testutil.Golden(t, "detail", buf.Bytes())
}

func TestFormatProfile(t *testing.T) {
	var buf bytes.Buffer
	FormatProfile(&buf, service.Profile{ID: 4, Name: "Ana Lima", Email: "ana@example.com"})
	if got := buf.String(); got != "Ana Lima <ana@example.com> (id 4)\n" {
		t.Errorf("unexpected profile line %q", got)
	}

	buf.Reset()
	FormatProfile(&buf, service.Profile{ID: 5, Email: "x@example.com"})
	if got := buf.String(); got != "x@example.com (id 5)\n" {
		t.Errorf("unexpected profile line %q", got)
	}
}
