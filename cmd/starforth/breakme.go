package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rajames440/starforth/internal/config"
	"github.com/rajames440/starforth/internal/telemetry"
	"github.com/rajames440/starforth/internal/vm"
)

// runBreakMe triggers one specific, named deliberate failure (arena
// exhaustion) for harness smoke-testing (spec.md §9 supplemented
// features): it is a diagnostic switch exercising the VM's own
// error/halt path under controlled conditions, not a vulnerability.
func runBreakMe(cfg config.Config, log *telemetry.Logger) error {
	m, err := buildMachine(cfg, log, false)
	if err != nil {
		return err
	}

	limit := m.VM.DictLimit()
	var allotErr error
	for i := uint64(0); i < limit+1; i++ {
		if allotErr = m.VM.Allot(1); allotErr != nil {
			break
		}
	}
	if !errors.Is(allotErr, vm.ErrArenaExhausted) {
		return fmt.Errorf("break-me: expected arena exhaustion, got %v", allotErr)
	}
	fmt.Fprintln(os.Stdout, "break-me: induced", allotErr)
	return nil
}
