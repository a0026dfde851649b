package logview

import (
	"fmt"
	"testing"
	"time"
)

func TestManager_PushDerivesLevel(t *testing.T) {
	m := NewManager()

	m.Push("[ERROR] brew upgrade failed")
	m.Push("[DEBUG] info request merged")
	m.Push("no prefix at all")
	m.Push("[BOGUS] unknown level")

	all := m.All()
	if len(all) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(all))
	}
	if all[0].Level != LevelError {
		t.Errorf("expected error level, got %v", all[0].Level)
	}
	if all[1].Level != LevelDebug {
		t.Errorf("expected debug level, got %v", all[1].Level)
	}
	if all[2].Level != LevelInfo {
		t.Errorf("unprefixed message should default to info, got %v", all[2].Level)
	}
	if all[3].Level != LevelInfo {
		t.Errorf("unknown prefix should default to info, got %v", all[3].Level)
	}
}

func TestManager_CapEvictsOldest(t *testing.T) {
	m := NewManager()

	for i := 0; i < MaxEntries+25; i++ {
		m.Push(fmt.Sprintf("line %d", i))
	}

	if m.Len() != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, m.Len())
	}
	if got := m.All()[0].Message; got != "line 25" {
		t.Errorf("oldest surviving entry should be line 25, got %q", got)
	}
	if got := m.All()[MaxEntries-1].Message; got != fmt.Sprintf("line %d", MaxEntries+24) {
		t.Errorf("newest entry wrong: %q", got)
	}
}

func TestManager_FilterDefaults(t *testing.T) {
	m := NewManager()

	m.Push("[TRACE] noise")
	m.Push("[DEBUG] noise")
	m.Push("[INFO] hello")
	m.Push("[WARN] careful")
	m.Push("[ERROR] broken")

	got := m.Filtered()
	if len(got) != 3 {
		t.Fatalf("expected 3 visible entries, got %d", len(got))
	}
	if got[0].Level != LevelInfo || got[2].Level != LevelError {
		t.Errorf("unexpected filter output: %+v", got)
	}
}

func TestManager_ToggleLevel(t *testing.T) {
	m := NewManager()
	m.Push("[DEBUG] detail")

	if len(m.Filtered()) != 0 {
		t.Fatal("debug should be hidden by default")
	}

	m.SetLevelVisible(LevelDebug, true)
	if !m.IsLevelVisible(LevelDebug) {
		t.Error("debug should be visible after toggle")
	}
	if len(m.Filtered()) != 1 {
		t.Error("debug entry should now pass the filter")
	}

	m.SetLevelVisible(LevelDebug, false)
	if len(m.Filtered()) != 0 {
		t.Error("debug entry should be hidden again")
	}
}

func TestNewManagerSize(t *testing.T) {
	m := NewManagerSize(3)
	for i := 0; i < 5; i++ {
		m.Push(fmt.Sprintf("line %d", i))
	}
	if m.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", m.Len())
	}
	if got := m.All()[0].Message; got != "line 2" {
		t.Errorf("unexpected oldest entry: %q", got)
	}

	if NewManagerSize(0).max != MaxEntries {
		t.Error("non-positive size should fall back to the default")
	}
}

func TestEntry_FormatTimestamp(t *testing.T) {
	e := Entry{Timestamp: time.Date(2026, 8, 30, 9, 5, 7, 0, time.UTC)}
	if got := e.FormatTimestamp(); got != "09:05:07" {
		t.Errorf("expected 09:05:07, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	if _, ok := ParseLevel("WARN"); !ok {
		t.Error("WARN should parse")
	}
	if _, ok := ParseLevel("warn"); ok {
		t.Error("levels are case sensitive, matching the emitter")
	}
	if _, ok := ParseLevel("NOPE"); ok {
		t.Error("unknown level should not parse")
	}
}
