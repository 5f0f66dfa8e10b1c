package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/mvtag/internal/model"
	"github.com/aidanlsb/mvtag/internal/testutil"
)

// cliRun is the captured outcome of one in-process command.
type cliRun struct {
	Stdout string
	Stderr string
	Err    error
}

// resetCommandState restores every flag and package global the commands
// mutate, so tests can run commands back to back.
func resetCommandState(t *testing.T) {
	t.Helper()

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		visit := func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
		c.Flags().VisitAll(visit)
		c.PersistentFlags().VisitAll(visit)
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}

	restore := func() {
		reset(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		cfg = nil
		resolvedConfigPath = ""
		out = os.Stdout
	}
	restore()
	t.Cleanup(restore)
}

// setInteractive makes confirmation prompts read from the command's stdin.
func setInteractive(t *testing.T, interactive bool) {
	t.Helper()
	prev := isInteractive
	isInteractive = func() bool { return interactive }
	t.Cleanup(func() { isInteractive = prev })
}

// runCommand executes mvtag in-process against lib's config.
func runCommand(t *testing.T, lib *testutil.TestLibrary, stdin string, args ...string) cliRun {
	t.Helper()
	resetCommandState(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(append([]string{"--config", lib.ConfigPath}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)

	err := rootCmd.Execute()
	return cliRun{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// mustRun fails the test if the command returns an error.
func mustRun(t *testing.T, lib *testutil.TestLibrary, args ...string) string {
	t.Helper()
	res := runCommand(t, lib, "", args...)
	if res.Err != nil {
		t.Fatalf("mvtag %s: %v\nstdout: %s\nstderr: %s", strings.Join(args, " "), res.Err, res.Stdout, res.Stderr)
	}
	return res.Stdout
}

// jsonResponse is Response with raw data for per-test decoding.
type jsonResponse struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

func decodeResponse(t *testing.T, stdout string) jsonResponse {
	t.Helper()
	var resp jsonResponse
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("failed to parse JSON response: %v; out=%s", err, stdout)
	}
	return resp
}

func str(s string) model.Value { return model.String(s) }

func list(items ...string) model.Value { return model.List(items) }
