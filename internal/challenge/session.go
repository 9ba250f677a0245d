package challenge

import (
	"time"

	"github.com/google/uuid"
)

// Result of one credential submission into a session.
type Result string

const (
	// ResultGranted: the password was correct, the process resumes.
	ResultGranted Result = "granted"
	// ResultWrongPassword: incorrect, the session keeps waiting.
	ResultWrongPassword Result = "wrong_password"
	// ResultTerminated: the submission ended the session with the process
	// killed (explicit deny or attempt limit).
	ResultTerminated Result = "terminated"
)

// Verdict is the coordinator's reply to one submission.
type Verdict struct {
	Result       Result `json:"result"`
	AttemptsLeft int    `json:"attempts_left"`
}

type submission struct {
	password string
	deny     bool
	reply    chan Verdict
}

// Session is one suspend → prompt → resolve lifecycle for a detected
// violation. The UI collaborator feeds submissions through the coordinator;
// the session ends on a correct password, an explicit deny, the third wrong
// password, or the decision timeout.
type Session struct {
	ID        string    `json:"id"`
	App       string    `json:"app"`
	Path      string    `json:"path"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`

	submissions chan submission
	done        chan struct{}
}

func newSession(app, path string, pid int) *Session {
	return &Session{
		ID:          uuid.NewString(),
		App:         app,
		Path:        path,
		PID:         pid,
		StartedAt:   time.Now(),
		submissions: make(chan submission),
		done:        make(chan struct{}),
	}
}
