// Command amber loads a compiled module and runs it to completion: the CLI
// surface spec.md §6 names, wiring together every package under internal/
// (config, heap, bytecode, externals, interp, scheduler, runtimestats).
package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"

	"amberlang/internal/bytecode"
	"amberlang/internal/config"
	"amberlang/internal/externals"
	"amberlang/internal/heap"
	"amberlang/internal/interp"
	"amberlang/internal/process"
	"amberlang/internal/runtimestats"
	"amberlang/internal/scheduler"
	"amberlang/internal/vmlog"
)

// topLevelGlobalSlots sizes the global scope of the module loaded at
// startup. Dynamically loaded modules (internal/externals' load_module)
// use their own, smaller default since they rarely declare as much
// top-level state as the program's entry module.
const topLevelGlobalSlots = 1024

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("amber", flag.ExitOnError)
	statsFlag := fs.Bool("stats", false, "print scheduler/heap counters to stderr after the run")
	debugFlag := fs.Bool("debug", false, "log at debug level instead of info")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: amber [-stats] [-debug] <module.bc>")
		return 2
	}

	cfg := config.Load()
	logLevel := vmlog.Info
	if *debugFlag || cfg.Debug.GCTrace {
		logLevel = vmlog.Debug
	}
	log := vmlog.New(os.Stderr, logLevel)

	heapStats := &runtimestats.Heap{}
	schedStats := &runtimestats.Scheduler{}

	pool := heap.NewPool(heapStats, 0)
	permanent := heap.NewPermanent(pool)

	f, err := os.Open(rest[0])
	if err != nil {
		log.Errorf("opening %s: %v", rest[0], err)
		return 1
	}
	module, err := bytecode.Load(f, permanent, topLevelGlobalSlots)
	f.Close()
	if err != nil {
		log.Errorf("loading %s: %v", rest[0], err)
		return 1
	}
	permanent.Seal()
	module.Seal()

	registry := externals.NewStandardRegistry()

	var nextPID uint64
	newPID := func() uint64 { return atomic.AddUint64(&nextPID, 1) }

	ip := interp.New(module, registry, log, permanent, pool, cfg.YoungBlockThreshold, cfg.MatureBlockThreshold, newPID)
	sched := scheduler.New(cfg.Workers, ip, schedStats)
	ip.AttachScheduler(sched)

	entry := process.New(newPID(), pool, cfg.YoungBlockThreshold, cfg.MatureBlockThreshold)
	entry.EntryCode = module.Code
	ip.RegisterProcess(entry)

	sched.Start()
	sched.Spawn(entry)

	reason := entry.Wait()
	sched.Shutdown()

	if *statsFlag {
		printStats(log, heapStats, schedStats)
	}

	if reason.Err != nil {
		log.Errorf("entry process terminated with error: %v", reason.Err)
		return 1
	}

	if code := externals.LastExitCode(); code != 0 {
		return int(code)
	}
	if reason.Result.IsInteger() {
		return int(reason.Result.IntegerValue())
	}
	return 0
}

func printStats(log *vmlog.Logger, h *runtimestats.Heap, s *runtimestats.Scheduler) {
	hs := h.Snapshot()
	log.Infof("heap: mapped=%d recycled=%d bytes=%d young_gc=%d mature_gc=%d evacuated=%d",
		hs.BlocksMapped, hs.BlocksRecycled, hs.BytesAllocated, hs.YoungCollections, hs.MatureCollections, hs.EvacuatedObjects)
	log.Infof("scheduler: spawned=%d local_pops=%d steals=%d injector_pops=%d parks=%d",
		s.Spawned(), s.LocalPops(), s.Steals(), s.InjectorPops(), s.Parks())
}
