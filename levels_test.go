package mongolog

import "testing"

// TestLevelOrdering verifies severity comparisons used by flush triggers
func TestLevelOrdering(t *testing.T) {
	ordered := []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("expected %v < %v", ordered[i-1], ordered[i])
		}
	}
}

// TestLevelString verifies the schema-facing level names
func TestLevelString(t *testing.T) {
	cases := map[Level]string{
		LevelDebug:    "DEBUG",
		LevelInfo:     "INFO",
		LevelWarning:  "WARNING",
		LevelError:    "ERROR",
		LevelCritical: "CRITICAL",
		Level(99):     "UNKNOWN",
	}
	for level, want := range cases {
		if got := level.String(); got != want {
			t.Errorf("Level(%d).String() = %q, want %q", level, got, want)
		}
	}
}

// TestParseLevel verifies round-tripping of canonical names
func TestParseLevel(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical} {
		parsed, err := ParseLevel(level.String())
		if err != nil {
			t.Fatalf("ParseLevel(%q) failed: %v", level.String(), err)
		}
		if parsed != level {
			t.Errorf("ParseLevel(%q) = %v, want %v", level.String(), parsed, level)
		}
	}

	if _, err := ParseLevel("VERBOSE"); err == nil {
		t.Error("expected error for unknown level name")
	}
}
