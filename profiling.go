package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
)

// startProfiles begins a CPU profile at cpuPath, if set. The returned stop
// function ends it and, if memPath is set, writes a heap profile there. It
// is safe to call more than once.
func startProfiles(cpuPath, memPath string) (func() error, error) {
	var cpu *os.File
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, fmt.Errorf("creating CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("starting CPU profile: %w", err)
		}
		cpu = f
	}
	var (
		once sync.Once
		err  error
	)
	stop := func() error {
		once.Do(func() {
			if cpu != nil {
				pprof.StopCPUProfile()
				err = cpu.Close()
			}
			if memPath == "" {
				return
			}
			f, ferr := os.Create(memPath)
			if ferr != nil {
				err = fmt.Errorf("creating heap profile: %w", ferr)
				return
			}
			defer f.Close()
			runtime.GC()
			if werr := pprof.WriteHeapProfile(f); werr != nil {
				err = fmt.Errorf("writing heap profile: %w", werr)
			}
		})
		return err
	}
	return stop, nil
}
