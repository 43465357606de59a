package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes walkthroughs against a running fallhouse server
type Runner struct {
	BaseURL           string
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode

	client *http.Client
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Timeout:           30 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite as a new visitor
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	if err := r.resetClient(); err != nil {
		result.Error = fmt.Errorf("failed to create client: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// resetClient gives the runner a fresh cookie jar, i.e. a new visitor.
func (r *Runner) resetClient() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	r.client = &http.Client{
		Jar:     jar,
		Timeout: r.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	if step.Path == ClearCookiesPath {
		result.IsReset = true
		result.Error = r.resetClient()
		result.Success = result.Error == nil
		result.Duration = time.Since(start)
		return result
	}

	status, location, body, err := r.get(ctx, step.Path)
	result.Status = status
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	var session *SessionInfo
	if step.Expectations.needsSession() {
		session, err = r.getSession(ctx)
		if err != nil {
			result.Error = fmt.Errorf("failed to get session: %w", err)
			result.Duration = time.Since(start)
			return result
		}
	}

	result.Error = checkExpectations(step.Expectations, status, location, body, session)
	result.Success = result.Error == nil
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) get(ctx context.Context, path string) (int, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+path, nil)
	if err != nil {
		return 0, "", "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, "", "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", "", fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, resp.Header.Get("Location"), string(body), nil
}

func (r *Runner) getSession(ctx context.Context) (*SessionInfo, error) {
	status, _, body, err := r.get(ctx, "/api/session")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", status, body)
	}

	var info SessionInfo
	if err := json.Unmarshal([]byte(body), &info); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &info, nil
}

func (exp Expectations) needsSession() bool {
	return exp.History != nil || exp.EmptyHistory != nil || exp.CurrentPlace != nil || exp.GameOver != nil
}

// checkExpectations validates the test expectations against the response and session
func checkExpectations(exp Expectations, status int, location, body string, session *SessionInfo) error {
	if exp.Status != nil && status != *exp.Status {
		return fmt.Errorf("expected status %d, got %d", *exp.Status, status)
	}

	if exp.Location != nil && location != *exp.Location {
		return fmt.Errorf("expected redirect to %q, got %q", *exp.Location, location)
	}

	if session != nil {
		if exp.History != nil && !slices.Equal(exp.History, session.History) {
			return fmt.Errorf("expected history %v, got %v", exp.History, session.History)
		}
		if exp.EmptyHistory != nil && (len(session.History) == 0) != *exp.EmptyHistory {
			return fmt.Errorf("expected empty history to be %t, got %v", *exp.EmptyHistory, session.History)
		}
		if exp.CurrentPlace != nil && session.CurrentPlace != *exp.CurrentPlace {
			return fmt.Errorf("expected current place %s, got %s", *exp.CurrentPlace, session.CurrentPlace)
		}
		if exp.GameOver != nil && session.GameOver != *exp.GameOver {
			return fmt.Errorf("expected gameover to be %t, got %t", *exp.GameOver, session.GameOver)
		}
	}

	lowerBody := strings.ToLower(body)
	for _, expectedText := range exp.BodyContains {
		if !strings.Contains(lowerBody, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected body to contain '%s', but it didn't", expectedText)
		}
	}
	for _, unexpectedText := range exp.BodyNotContains {
		if strings.Contains(lowerBody, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected body to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.BodyRegex != "" {
		matched, err := regexp.MatchString(exp.BodyRegex, body)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("body didn't match regex pattern: %s", exp.BodyRegex)
		}
	}

	return nil
}
