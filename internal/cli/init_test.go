package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/mvtag/internal/testutil"
)

func TestInitCreatesConfigAndLibrary(t *testing.T) {
	dir := t.TempDir()
	lib := &testutil.TestLibrary{ConfigPath: filepath.Join(dir, "conf", "config.toml")}
	dbPath := filepath.Join(dir, "library.db")

	res := runCommand(t, lib, "", "--json", "--library", dbPath, "init")
	if res.Err != nil {
		t.Fatalf("init failed: %v\n%s", res.Err, res.Stdout)
	}
	resp := decodeResponse(t, res.Stdout)
	var data struct {
		Config        string `json:"config"`
		ConfigCreated bool   `json:"config_created"`
		Library       string `json:"library"`
		Items         int    `json:"items"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if !data.ConfigCreated || data.Config != lib.ConfigPath || data.Library != dbPath || data.Items != 0 {
		t.Errorf("unexpected data: %+v", data)
	}
	for _, p := range []string{lib.ConfigPath, dbPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s to exist: %v", p, err)
		}
	}

	res = runCommand(t, lib, "", "--json", "--library", dbPath, "init")
	if err := json.Unmarshal(decodeResponse(t, res.Stdout).Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.ConfigCreated {
		t.Error("second init should keep the existing config")
	}
}

func TestMissingConfigFails(t *testing.T) {
	lib := &testutil.TestLibrary{ConfigPath: filepath.Join(t.TempDir(), "missing.toml")}

	res := runCommand(t, lib, "", "--json", "ls")
	if res.Err == nil {
		t.Fatal("expected error for missing config")
	}
	if resp := decodeResponse(t, res.Stdout); resp.Error == nil || resp.Error.Code != ErrConfigInvalid {
		t.Errorf("expected CONFIG_INVALID, got %s", res.Stdout)
	}
}
