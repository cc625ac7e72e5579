package history

import (
	"strings"
	"testing"
	"time"

	"github.com/ixugo/goddd/pkg/orm"
	"golang.org/x/text/language"
)

func TestExportCSVEmpty(t *testing.T) {
	out, err := ExportCSV(nil, language.Chinese)
	if err != nil {
		t.Fatal(err)
	}
	want := "Timestamp,Duration (s),People,Cars,Trucks,Buses,Total Objects\n"
	if string(out) != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

func TestExportCSVRows(t *testing.T) {
	ts := time.Date(2026, 3, 1, 15, 4, 5, 0, time.Local)
	sessions := []*Session{
		{CreatedAt: orm.Time{Time: ts}, Duration: 10, People: 2, Cars: 1, Total: 3},
		{CreatedAt: orm.Time{Time: ts}, Duration: 5, Trucks: 1, Buses: 1, Total: 2},
	}

	out, err := ExportCSV(sessions, language.Chinese)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[1] != "2026-03-01 15:04:05,10,2,1,0,0,3" {
		t.Fatalf("row = %q", lines[1])
	}
	if lines[2] != "2026-03-01 15:04:05,5,0,0,1,1,2" {
		t.Fatalf("row = %q", lines[2])
	}
}

func TestTimestampLayout(t *testing.T) {
	tests := []struct {
		tag  language.Tag
		want string
	}{
		{language.Chinese, "2006-01-02 15:04:05"},
		{language.AmericanEnglish, "01/02/2006 3:04:05 PM"},
		{language.BritishEnglish, "02/01/2006 15:04:05"},
		// 未知语言落到默认格式
		{language.Japanese, "2006-01-02 15:04:05"},
	}
	for _, tt := range tests {
		if got := timestampLayout(tt.tag); got != tt.want {
			t.Fatalf("layout(%s) = %q, want %q", tt.tag, got, tt.want)
		}
	}
}

func TestExportCSVLocale(t *testing.T) {
	ts := time.Date(2026, 3, 1, 15, 4, 5, 0, time.Local)
	sessions := []*Session{{CreatedAt: orm.Time{Time: ts}, Duration: 1, Total: 0}}

	out, err := ExportCSV(sessions, language.AmericanEnglish)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "03/01/2026 3:04:05 PM") {
		t.Fatalf("out = %q", out)
	}
}
