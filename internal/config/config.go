// Package config reads the environment-variable-driven knobs spec.md §6
// names ("heap sizing ... and scheduler worker count. No other process-wide
// state"), following the single comma-separated debug-flags convention the
// reference runtime uses for GODEBUG (see DESIGN.md).
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

const (
	defaultYoungBlocks = 64
	defaultMatureBlocks = 512
)

// Config holds every process-wide runtime knob. Nothing in this struct
// changes after Load returns; there is no other process-wide state per
// spec.md §6.
type Config struct {
	YoungBlockThreshold int
	MatureBlockThreshold int
	Workers              int
	Debug                DebugFlags
}

// DebugFlags mirrors the reference runtime's GODEBUG convention: a single
// env var holding comma-separated key=val pairs, parsed once at startup.
type DebugFlags struct {
	GCTrace    bool // AMBERDEBUG=gctrace=1
	StealStats bool // AMBERDEBUG=stealstats=1
}

// Load reads AMBER_YOUNG_BLOCKS, AMBER_MATURE_BLOCKS, AMBER_WORKERS, and
// AMBERDEBUG from the environment, falling back to sane defaults. Malformed
// numeric values fall back silently to the default rather than failing
// startup, matching the reference runtime's own tolerance of malformed
// GODEBUG entries (unrecognized keys are simply ignored there).
func Load() Config {
	return Config{
		YoungBlockThreshold:  envInt("AMBER_YOUNG_BLOCKS", defaultYoungBlocks),
		MatureBlockThreshold: envInt("AMBER_MATURE_BLOCKS", defaultMatureBlocks),
		Workers:              envInt("AMBER_WORKERS", runtime.NumCPU()),
		Debug:                parseDebug(os.Getenv("AMBERDEBUG")),
	}
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDebug(raw string) DebugFlags {
	var d DebugFlags
	for _, pair := range strings.Split(raw, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "gctrace":
			d.GCTrace = kv[1] == "1"
		case "stealstats":
			d.StealStats = kv[1] == "1"
		}
	}
	return d
}
