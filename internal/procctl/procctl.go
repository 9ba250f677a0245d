package procctl

// Process is one running executable as seen by the scanner.
type Process struct {
	PID  int    `json:"pid"`
	Path string `json:"path"`
}

// Scanner enumerates running processes. Listing is best effort: entries whose
// metadata cannot be read (vanished, permission denied) are simply absent
// from the snapshot.
type Scanner interface {
	List() ([]Process, error)
}

// Controller pauses, resumes and kills processes. Resume and Terminate are
// idempotent against a process that already exited: that case is a
// successful no-op, not an error.
type Controller interface {
	Suspend(pid int) error
	Resume(pid int) error
	Terminate(pid int) error
}
