package runner

import (
	"time"
)

// Special path values that trigger non-request actions
const (
	ClearCookiesPath = "CLEAR_COOKIES"
)

// TestSuite defines a complete walkthrough of the house
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one page request and its expected outcomes. Redirects are not
// followed, so each hop of the game is a separate step.
// Use path: "CLEAR_COOKIES" to forget the session, like a new browser.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Path         string       `json:"path"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// Response properties
	Status   *int    `json:"status,omitempty"`
	Location *string `json:"location,omitempty"` // Redirect target

	// Session properties, read from /api/session after the step
	History      []string `json:"history,omitempty"` // Exact history, order dependent
	EmptyHistory *bool    `json:"empty_history,omitempty"`
	CurrentPlace *string  `json:"current_place,omitempty"`
	GameOver     *bool    `json:"gameover,omitempty"`

	// Response Analysis
	BodyContains    []string `json:"body_contains,omitempty"`
	BodyNotContains []string `json:"body_not_contains,omitempty"`
	BodyRegex       string   `json:"body_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Status   int
	IsReset  bool // True if this was a CLEAR_COOKIES step (should not count toward pass/fail metrics)
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
}

// SessionInfo mirrors the server's /api/session response.
type SessionInfo struct {
	Started      bool     `json:"started"`
	History      []string `json:"history"`
	CurrentPlace string   `json:"current_place"`
	LastPlace    string   `json:"last_place"`
	GameOver     bool     `json:"gameover"`
}
