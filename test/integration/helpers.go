//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	CompanyID       string
	CredentialsFile string
	QboPath         string
	Verbose         bool
}

// LoadTestConfig loads configuration from environment variables. Credentials
// are taken from QBO_CREDENTIALS_FILE or the QB_* variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		CompanyID:       os.Getenv("QBO_SANDBOX_COMPANY_ID"),
		CredentialsFile: os.Getenv("QBO_CREDENTIALS_FILE"),
		QboPath:         getQboPath(),
		Verbose:         os.Getenv("QBO_VERBOSE") == "true",
	}
}

// getQboPath determines the path to the qbo binary
func getQboPath() string {
	if path := os.Getenv("QBO_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../qbo",
		"./qbo",
		"../qbo",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "qbo"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.CompanyID == "" {
		t.Skip("QBO_SANDBOX_COMPANY_ID not set, skipping integration test")
	}

	if config.CredentialsFile == "" && os.Getenv("QB_ACCESS_TOKEN") == "" {
		t.Skip("no sandbox credentials, skipping integration test")
	}

	if _, err := exec.LookPath(config.QboPath); err != nil {
		t.Skipf("qbo binary not found at %s, skipping integration test", config.QboPath)
	}
}

// CommandRunner runs qbo commands against the sandbox company
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

func (runner *CommandRunner) globalArgs() []string {
	args := []string{"--sandbox", "--company", runner.config.CompanyID}
	if runner.config.CredentialsFile != "" {
		args = append(args, "--credentials-file", runner.config.CredentialsFile)
	}

	return args
}

// Run executes a qbo command and returns output
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a qbo command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	args = append(runner.globalArgs(), args...)

	cmd := exec.Command(runner.config.QboPath, args...) // #nosec G204 -- test binary
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.QboPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout := stdoutBuf.String()
	stderr := stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a qbo command with JSON output and decodes the result
func (runner *CommandRunner) RunJSON(input string, target any, args ...string) error {
	stdout, stderr, err := runner.RunWithInput(input, append([]string{"--output", "json"}, args...)...)
	if err != nil {
		return fmt.Errorf("qbo %s: %w: %s", strings.Join(args, " "), err, stderr)
	}

	return json.Unmarshal([]byte(stdout), target)
}

// DeactivateRecord makes a name list record inactive. Customers and
// vendors cannot be deleted.
func (runner *CommandRunner) DeactivateRecord(entity string, record map[string]any) {
	payload, _ := json.Marshal(map[string]any{
		"Id":        record["Id"],
		"SyncToken": record["SyncToken"],
		"sparse":    true,
		"Active":    false,
	})

	stdout, stderr, err := runner.RunWithInput(string(payload), "update", entity)
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %v: %s\nStderr: %s", entity, record["Id"], stdout, stderr)
	}
}

// GenerateTestName creates a unique test record name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// WaitForCondition waits for a condition to be met with timeout
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	timeoutChan := time.After(timeout)

	for {
		select {
		case <-ticker.C:
			if condition() {
				return
			}
		case <-timeoutChan:
			t.Fatalf("Timeout waiting for condition: %s", message)
		}
	}
}

// AssertYAMLOutput verifies command output looks like YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if strings.Contains(output, ":") {
		return
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}
