package model

import "time"

// Status is the lifecycle state of a case or the outcome of a step.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusPassed     Status = "passed"
	StatusFailed     Status = "failed"
)

// StepResult is the recorded outcome of one executed step.
type StepResult struct {
	Index     int           `yaml:"index"                json:"index"`
	Step      string        `yaml:"step"                 json:"step"`
	Action    Kind          `yaml:"action,omitempty"     json:"action,omitempty"`
	Detail    string        `yaml:"detail,omitempty"     json:"detail,omitempty"`
	Status    Status        `yaml:"status"               json:"status"`
	ErrorKind ErrorKind     `yaml:"error_kind,omitempty" json:"error_kind,omitempty"`
	Error     string        `yaml:"error,omitempty"      json:"error,omitempty"`
	Elapsed   time.Duration `yaml:"elapsed"              json:"elapsed"`
	Attempts  int           `yaml:"attempts"             json:"attempts"`
}

// CaseResult is the outcome of one test case.
type CaseResult struct {
	ID          string        `yaml:"id"                    json:"id"`
	Name        string        `yaml:"name"                  json:"name"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	Status      Status        `yaml:"status"                json:"status"`
	Steps       []StepResult  `yaml:"steps"                 json:"steps"`
	StartedAt   time.Time     `yaml:"started_at"            json:"started_at"`
	EndedAt     time.Time     `yaml:"ended_at"              json:"ended_at"`
	Duration    time.Duration `yaml:"duration"              json:"duration"`
	Screenshot  string        `yaml:"screenshot,omitempty"  json:"screenshot,omitempty"`
	Error       string        `yaml:"error,omitempty"       json:"error,omitempty"`
	Aborted     bool          `yaml:"aborted,omitempty"     json:"aborted,omitempty"`
}

// Passed reports whether the case finished with every step passing.
func (c *CaseResult) Passed() bool { return c.Status == StatusPassed }

// FailedStep returns the failing step, or nil if none failed.
func (c *CaseResult) FailedStep() *StepResult {
	for i := range c.Steps {
		if c.Steps[i].Status == StatusFailed {
			return &c.Steps[i]
		}
	}
	return nil
}

// RunSummary aggregates every case result of one run.
type RunSummary struct {
	RunID     string        `yaml:"run_id"              json:"run_id"`
	StartedAt time.Time     `yaml:"started_at"          json:"started_at"`
	EndedAt   time.Time     `yaml:"ended_at"            json:"ended_at"`
	Total     int           `yaml:"total"               json:"total"`
	Passed    int           `yaml:"passed"              json:"passed"`
	Failed    int           `yaml:"failed"              json:"failed"`
	Duration  time.Duration `yaml:"duration"            json:"duration"`
	Cancelled bool          `yaml:"cancelled,omitempty" json:"cancelled,omitempty"`
	Cases     []CaseResult  `yaml:"cases"               json:"cases"`
}

// NewRunSummary starts an empty summary.
func NewRunSummary(runID string, startedAt time.Time) *RunSummary {
	return &RunSummary{RunID: runID, StartedAt: startedAt, Cases: []CaseResult{}}
}

// Add appends a finalized case and updates the counters. Any status other
// than passed counts as a failure so that Passed+Failed always equals Total.
func (s *RunSummary) Add(c CaseResult) {
	if c.Status != StatusPassed {
		c.Status = StatusFailed
		s.Failed++
	} else {
		s.Passed++
	}
	s.Total++
	s.Duration += c.Duration
	s.Cases = append(s.Cases, c)
}

// Finish stamps the end of the run.
func (s *RunSummary) Finish(endedAt time.Time) { s.EndedAt = endedAt }

// PassRate returns Passed/Total, or 0 for an empty run.
func (s *RunSummary) PassRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Passed) / float64(s.Total)
}

// AverageDuration returns the mean case duration, or 0 for an empty run.
func (s *RunSummary) AverageDuration() time.Duration {
	if s.Total == 0 {
		return 0
	}
	return s.Duration / time.Duration(s.Total)
}

// RunRecord is the persisted headline of a past run.
type RunRecord struct {
	RunID     string        `yaml:"run_id"           json:"run_id"`
	StartedAt time.Time     `yaml:"started_at"       json:"started_at"`
	Total     int           `yaml:"total"            json:"total"`
	Passed    int           `yaml:"passed"           json:"passed"`
	Failed    int           `yaml:"failed"           json:"failed"`
	Duration  time.Duration `yaml:"duration"         json:"duration"`
	Report    string        `yaml:"report,omitempty" json:"report,omitempty"`
}

// PassRate returns Passed/Total, or 0 for an empty run.
func (r RunRecord) PassRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Passed) / float64(r.Total)
}

// Record returns the headline of the summary.
func (s *RunSummary) Record() RunRecord {
	return RunRecord{
		RunID:     s.RunID,
		StartedAt: s.StartedAt,
		Total:     s.Total,
		Passed:    s.Passed,
		Failed:    s.Failed,
		Duration:  s.Duration,
	}
}
