package job

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

var (
	ErrJobNotFound            = errors.New("job not found")
	ErrJobKeyRequired         = errors.New("job key is required")
	ErrInvalidStateTransition = errors.New("invalid job state transition")
)

// Params carries the descriptive fields of a Status.
type Params struct {
	JobKey      string
	Name        string
	Group       string
	Origin      string
	Executor    string
	Principal   string
	OwnerID     string
	MaxAttempts int
	Metadata    map[string]string
}

// Status is the persisted record of one background job.
type Status struct {
	id            string
	jobKey        string
	name          string
	group         string
	origin        string
	executor      string
	principal     string
	ownerID       string
	state         State
	previousState State
	attempts      int
	maxAttempts   int
	startTime     *time.Time
	endTime       *time.Time
	metadata      map[string]string
	result        string
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewStatus builds a job record in the CREATED state.
func NewStatus(p Params) (*Status, error) {
	if p.JobKey == "" {
		return nil, ErrJobKeyRequired
	}
	name := p.Name
	if name == "" {
		name = p.JobKey
	}
	now := time.Now().UTC()
	s := &Status{
		jobKey:    p.JobKey,
		name:      name,
		group:     p.Group,
		origin:    p.Origin,
		executor:  p.Executor,
		principal: p.Principal,
		ownerID:   p.OwnerID,
		state:     StateCreated,
		metadata:  cloneMetadata(p.Metadata),
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	s.SetMaxAttempts(p.MaxAttempts)
	return s, nil
}

// Snapshot is the persisted state of a Status.
type Snapshot struct {
	State         State
	PreviousState State
	Attempts      int
	StartTime     *time.Time
	EndTime       *time.Time
	Result        string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReconstructStatus rebuilds a job record from persistence.
func ReconstructStatus(id string, p Params, snap Snapshot) (*Status, error) {
	if id == "" {
		return nil, fmt.Errorf("job ID cannot be empty")
	}
	if !snap.State.IsValid() {
		return nil, fmt.Errorf("invalid job state: %q", snap.State)
	}
	s, err := NewStatus(p)
	if err != nil {
		return nil, err
	}
	s.id = id
	s.state = snap.State
	s.previousState = snap.PreviousState
	s.attempts = snap.Attempts
	s.startTime = snap.StartTime
	s.endTime = snap.EndTime
	s.result = snap.Result
	s.version = snap.Version
	s.createdAt = snap.CreatedAt
	s.updatedAt = snap.UpdatedAt
	return s, nil
}

func (s *Status) ID() string            { return s.id }
func (s *Status) JobKey() string        { return s.jobKey }
func (s *Status) Name() string          { return s.name }
func (s *Status) Group() string         { return s.group }
func (s *Status) Origin() string        { return s.origin }
func (s *Status) Executor() string      { return s.executor }
func (s *Status) Principal() string     { return s.principal }
func (s *Status) OwnerID() string       { return s.ownerID }
func (s *Status) State() State          { return s.state }
func (s *Status) PreviousState() State  { return s.previousState }
func (s *Status) Attempts() int         { return s.attempts }
func (s *Status) MaxAttempts() int      { return s.maxAttempts }
func (s *Status) StartTime() *time.Time { return s.startTime }
func (s *Status) EndTime() *time.Time   { return s.endTime }
func (s *Status) Result() string        { return s.result }
func (s *Status) Version() int          { return s.version }
func (s *Status) CreatedAt() time.Time  { return s.createdAt }
func (s *Status) UpdatedAt() time.Time  { return s.updatedAt }

// Metadata returns a copy of the job metadata.
func (s *Status) Metadata() map[string]string {
	return maps.Clone(s.metadata)
}

// SetState moves the job to target. Setting the current state again is a
// no-op; any other move outside the transition table is rejected.
func (s *Status) SetState(target State) error {
	if target == s.state {
		return nil
	}
	if !s.state.IsValidTransition(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStateTransition, s.state, target)
	}
	s.previousState = s.state
	s.state = target
	s.touch()

	now := s.updatedAt
	switch {
	case target == StateRunning:
		s.startTime = &now
		s.endTime = nil
	case target.IsTerminal():
		s.endTime = &now
	}
	return nil
}

// SetMaxAttempts bounds retries. Values below one become one.
func (s *Status) SetMaxAttempts(n int) {
	if n < 1 {
		n = 1
	}
	s.maxAttempts = n
}

// IncrementAttempts records a new execution attempt and returns the count.
func (s *Status) IncrementAttempts() int {
	s.attempts++
	s.touch()
	return s.attempts
}

// CanRetry reports whether another attempt is allowed.
func (s *Status) CanRetry() bool {
	return s.attempts < s.maxAttempts
}

func (s *Status) SetResult(result string) {
	s.result = result
	s.touch()
}

func (s *Status) SetMetadata(key, value string) {
	s.metadata[key] = value
	s.touch()
}

func (s *Status) SetID(id string) error {
	if s.id != "" {
		return fmt.Errorf("job ID is already set")
	}
	s.id = id
	return nil
}

func (s *Status) IncrementVersion() {
	s.version++
}

func (s *Status) touch() {
	s.updatedAt = time.Now().UTC()
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return make(map[string]string)
	}
	return maps.Clone(m)
}
