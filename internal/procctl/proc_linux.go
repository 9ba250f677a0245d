//go:build linux

package procctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// ProcFS scans /proc and controls processes with signals. It implements both
// Scanner and Controller.
type ProcFS struct {
	root string
}

func NewProcFS() *ProcFS {
	return &ProcFS{root: "/proc"}
}

// List walks /proc for numeric entries and resolves each one's executable
// path. Unreadable entries are skipped, never escalated.
func (p *ProcFS) List() ([]Process, error) {
	dirs, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.root, err)
	}

	procs := make([]Process, 0, len(dirs))
	for _, d := range dirs {
		pid, err := strconv.Atoi(d.Name())
		if err != nil {
			continue
		}
		exe, err := os.Readlink(filepath.Join(p.root, d.Name(), "exe"))
		if err != nil {
			// Kernel threads, vanished processes, or insufficient
			// privileges. Skip.
			continue
		}
		procs = append(procs, Process{PID: pid, Path: exe})
	}
	return procs, nil
}

// Suspend pauses a process. A vanished or protected process is reported as
// an error so the caller can drop the violation for this tick.
func (p *ProcFS) Suspend(pid int) error {
	if err := unix.Kill(pid, unix.SIGSTOP); err != nil {
		return fmt.Errorf("suspend pid %d: %w", pid, err)
	}
	return nil
}

// Resume continues a suspended process. Already-exited processes are a no-op.
func (p *ProcFS) Resume(pid int) error {
	if err := unix.Kill(pid, unix.SIGCONT); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("resume pid %d: %w", pid, err)
	}
	return nil
}

// Terminate kills a process. Already-exited processes are a no-op.
func (p *ProcFS) Terminate(pid int) error {
	if err := unix.Kill(pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
		return fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	return nil
}
