package source

import (
	"testing"
	"time"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"go", []string{"go"}},
		{"go, devops ,  ai", []string{"go", "devops", "ai"}},
		{",,go,,", []string{"go"}},
	}

	for _, tt := range tests {
		got := ParseTags(tt.in)
		if len(got) != len(tt.want) {
			t.Fatalf("ParseTags(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParseTags(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestPostYear(t *testing.T) {
	if (Post{}).Year() != 0 {
		t.Error("zero time should give year 0")
	}
	loc := time.FixedZone("east", 3*3600)
	p := Post{PublishedAt: time.Date(2024, 1, 1, 1, 0, 0, 0, loc)}
	if p.Year() != 2023 {
		t.Errorf("year = %d, want 2023 (UTC)", p.Year())
	}
}
