//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedMarshalgoPath holds the path to a shared marshalgo binary built once for all tests.
	sharedMarshalgoPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getMarshalgoBinary returns the path to the marshalgo binary, building it once if needed.
func getMarshalgoBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "marshalgo-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		marshalgoPath := filepath.Join(tempDir, "marshalgo")
		buildCmd := exec.Command("go", "build", "-o", marshalgoPath, "./cmd/marshalgo")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build marshalgo: %v", err))
		}

		sharedMarshalgoPath = marshalgoPath
	})

	return sharedMarshalgoPath
}

// runMarshalgoCommand runs the marshalgo binary with the given args from a temp
// working directory. HOME is pointed at the same directory so no config file or
// SQLite database leaks into the repo.
func runMarshalgoCommand(t *testing.T, workDir string, args ...string) error {
	marshalgoPath := getMarshalgoBinary()
	cmd := exec.Command(marshalgoPath, args...)
	cmd.Dir = workDir
	cmd.Env = append(os.Environ(), "HOME="+workDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
