package config

import "testing"

func TestEnvIntFallback(t *testing.T) {
	t.Setenv("AMBER_WORKERS", "")
	if got := envInt("AMBER_WORKERS", 4); got != 4 {
		t.Fatalf("got %d, want fallback 4", got)
	}
	t.Setenv("AMBER_WORKERS", "not-a-number")
	if got := envInt("AMBER_WORKERS", 4); got != 4 {
		t.Fatalf("got %d, want fallback 4 on malformed value", got)
	}
	t.Setenv("AMBER_WORKERS", "8")
	if got := envInt("AMBER_WORKERS", 4); got != 8 {
		t.Fatalf("got %d, want 8", got)
	}
}

func TestParseDebugFlags(t *testing.T) {
	d := parseDebug("gctrace=1,stealstats=1,unknown=5")
	if !d.GCTrace || !d.StealStats {
		t.Fatalf("expected both flags set, got %+v", d)
	}
	d = parseDebug("")
	if d.GCTrace || d.StealStats {
		t.Fatalf("expected no flags set for empty input, got %+v", d)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AMBER_YOUNG_BLOCKS", "")
	t.Setenv("AMBER_MATURE_BLOCKS", "")
	t.Setenv("AMBER_WORKERS", "")
	t.Setenv("AMBERDEBUG", "")
	c := Load()
	if c.YoungBlockThreshold != defaultYoungBlocks {
		t.Fatalf("young threshold = %d, want default", c.YoungBlockThreshold)
	}
	if c.MatureBlockThreshold != defaultMatureBlocks {
		t.Fatalf("mature threshold = %d, want default", c.MatureBlockThreshold)
	}
	if c.Workers < 1 {
		t.Fatalf("workers = %d, want >= 1", c.Workers)
	}
}
