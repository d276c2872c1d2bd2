package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestLine(t *testing.T) {
	saved := []string{Version, GitCommit, BuildDate}
	savedColor := color.NoColor
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = saved[0], saved[1], saved[2]
		color.NoColor = savedColor
	})
	color.NoColor = true

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "condflow 0.1.0-dev"},
		{"1.2.3", "1234567890abcdef", "", "condflow 1.2.3 (1234567890ab)"},
		{"1.2.3-rc.1", "abc123", "2026-01-15", "condflow 1.2.3-rc.1 (abc123) built 2026-01-15"},
		{"nightly", "", "", "condflow nightly"},
	}
	for _, tt := range tests {
		Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
		if got := Line(); got != tt.want {
			t.Errorf("Line() = %q, want %q", got, tt.want)
		}
	}
}

func TestPretty_Colored(t *testing.T) {
	savedVersion, savedColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = savedVersion, savedColor })

	Version = "0.1.0"
	color.NoColor = false
	if got := Pretty(); got == "0.1.0" {
		t.Fatal("Pretty() is uncoloured with colour enabled")
	}
}
