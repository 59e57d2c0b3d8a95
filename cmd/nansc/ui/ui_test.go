package ui

import (
	"strings"
	"testing"
)

func TestThemeByName(t *testing.T) {
	if !ThemeByName("dark").IsDark {
		t.Error("dark should be dark")
	}
	if ThemeByName(" LIGHT ").IsDark {
		t.Error("light should be light")
	}

	t.Setenv("COLORFGBG", "15;0")
	if !ThemeByName("").IsDark {
		t.Error("dark terminal background should select the dark theme")
	}
	t.Setenv("COLORFGBG", "0;15")
	t.Setenv("NANSC_DARK_MODE", "")
	if ThemeByName("auto").IsDark {
		t.Error("light terminal background should select the light theme")
	}
}

func TestSimpleTable(t *testing.T) {
	styles := NewStyles(LightTheme())

	empty := NewSimpleTable("Batch", []string{"Input", "Result"})
	if got := empty.View(styles); got != "" {
		t.Errorf("empty table should render nothing, got %q", got)
	}

	table := NewSimpleTable("Batch", []string{"Input", "Result"})
	table.AddRow("HECAYFYX", "/C=XX/A=ICAO/P=EGYPT/O=HECA/OU1=YFYX/")
	table.AddRow("SHORT")

	out := table.View(styles)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title, header, divider and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	for _, want := range []string{"Batch", "Input", "HECAYFYX", "P=EGYPT", "SHORT"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDivider(t *testing.T) {
	styles := NewStyles(DarkTheme())
	if got := styles.RenderDivider(0); !strings.Contains(got, "─") {
		t.Errorf("divider should never be empty, got %q", got)
	}
}
