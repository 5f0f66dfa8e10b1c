package testutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	// binaryPath caches the path to the built mvtag binary.
	binaryPath string
	buildMu    sync.Mutex
	buildErr   error
)

// CLIResult is the parsed JSON envelope of one CLI run.
type CLIResult struct {
	OK       bool
	Data     map[string]interface{}
	Error    *CLIError
	Warnings []CLIWarning
	Meta     *CLIMeta
	RawJSON  string
	Stderr   string
	ExitCode int
}

// CLIError represents a structured error from the CLI.
type CLIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// CLIWarning represents a warning from the CLI.
type CLIWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// CLIMeta contains metadata from the response.
type CLIMeta struct {
	Count int `json:"count"`
}

// BuildCLI builds the mvtag binary once per test process and returns its path.
func BuildCLI(t *testing.T) string {
	t.Helper()

	buildMu.Lock()
	defer buildMu.Unlock()

	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err == nil {
			return binaryPath
		}
		binaryPath = ""
		buildErr = nil
	}

	root, err := findProjectRoot()
	if err != nil {
		t.Fatalf("failed to find project root: %v", err)
	}

	tmpDir, err := os.MkdirTemp("", "mvtag-cli-bin-*")
	if err != nil {
		t.Fatalf("failed to create build dir: %v", err)
	}
	name := "mvtag"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	path := filepath.Join(tmpDir, name)
	cmd := exec.Command("go", "build", "-o", path, "./cmd/mvtag")
	cmd.Dir = root
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Output: string(output), Err: err}
		t.Fatalf("failed to build CLI: %v", buildErr)
	}

	binaryPath = path
	return binaryPath
}

// BuildError represents an error building the CLI binary.
type BuildError struct {
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return e.Err.Error() + "\n" + e.Output
}

// findProjectRoot walks up from the working directory to go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs the built binary against the library with --json.
func (l *TestLibrary) RunCLI(args ...string) *CLIResult {
	l.t.Helper()
	return l.RunCLIWithStdin("", args...)
}

// RunCLIWithStdin runs the built binary with stdin attached.
func (l *TestLibrary) RunCLIWithStdin(stdin string, args ...string) *CLIResult {
	l.t.Helper()
	binary := BuildCLI(l.t)

	cmdArgs := append([]string{"--config", l.ConfigPath, "--json"}, args...)
	cmd := exec.Command(binary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := &CLIResult{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	result.RawJSON = stdout.String()
	result.Stderr = stderr.String()

	var resp struct {
		OK       bool                   `json:"ok"`
		Data     map[string]interface{} `json:"data,omitempty"`
		Error    *CLIError              `json:"error,omitempty"`
		Warnings []CLIWarning           `json:"warnings,omitempty"`
		Meta     *CLIMeta               `json:"meta,omitempty"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		result.Error = &CLIError{
			Code:    "PARSE_ERROR",
			Message: "failed to parse JSON output: " + err.Error(),
		}
		return result
	}

	result.OK = resp.OK
	result.Data = resp.Data
	result.Error = resp.Error
	result.Warnings = resp.Warnings
	result.Meta = resp.Meta
	return result
}

// MustSucceed fails the test if the CLI command did not succeed.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK || r.ExitCode != 0 {
		errMsg := "unknown error"
		if r.Error != nil {
			errMsg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("expected command to succeed, got error: %s\nRaw output: %s\nStderr: %s", errMsg, r.RawJSON, r.Stderr)
	}
	return r
}

// MustFail fails the test if the CLI command did not fail with the expected code.
func (r *CLIResult) MustFail(t *testing.T, expectedCode string) *CLIResult {
	t.Helper()
	if r.OK {
		t.Fatalf("expected command to fail with code %s, but it succeeded\nRaw output: %s", expectedCode, r.RawJSON)
	}
	if r.ExitCode == 0 {
		t.Errorf("expected non-zero exit code for %s", expectedCode)
	}
	if r.Error == nil {
		t.Fatalf("expected error with code %s, but error is nil\nRaw output: %s", expectedCode, r.RawJSON)
	}
	if r.Error.Code != expectedCode {
		t.Fatalf("expected error code %s, got %s: %s", expectedCode, r.Error.Code, r.Error.Message)
	}
	return r
}

// DataList extracts a list from the Data field.
func (r *CLIResult) DataList(key string) []interface{} {
	if list, ok := r.Data[key].([]interface{}); ok {
		return list
	}
	return nil
}

// DataNumber extracts a number from the Data field.
func (r *CLIResult) DataNumber(key string) float64 {
	if n, ok := r.Data[key].(float64); ok {
		return n
	}
	return 0
}
