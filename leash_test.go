//go:build !windows

package leash_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/pkg/reexec"
	"github.com/stretchr/testify/require"

	"github.com/Paintersrp/leash"
)

func TestMain(m *testing.M) {
	if reexec.Init() {
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func TestCommand(t *testing.T) {
	out, err := leash.Command("echo", "hello", "world").Output()
	require.NoError(t, err)
	require.Equal(t, "hello world\n", string(out))
}

func TestCommandContext(t *testing.T) {
	out, err := leash.CommandContext(context.Background(), "echo", "test").Output()
	require.NoError(t, err)
	require.Equal(t, "test\n", string(out))
}

func TestCommandContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	cmd := leash.CommandContext(ctx, "sleep", "5")

	start := time.Now()
	err := cmd.Run()
	require.Error(t, err, "expected the command to fail once the context expired")
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestCommandExitCodePassesThrough(t *testing.T) {
	cmd := leash.Command("/bin/sh", "-c", "exit 42")
	err := cmd.Run()

	var exitErr *leash.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 42, exitErr.ExitCode())
}

func TestCommandFailure(t *testing.T) {
	err := leash.Command("false").Run()

	var exitErr *leash.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.ExitCode())
}

func TestCommandNotFoundExitsQuickly(t *testing.T) {
	start := time.Now()
	err := leash.Command("this-command-should-not-exist-anywhere").Run()

	var exitErr *leash.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 1, exitErr.ExitCode())
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestCommandEnvironment(t *testing.T) {
	cmd := leash.Command("sh", "-c", "echo $LEASH_TEST_VAR")
	cmd.Env = append(os.Environ(), "LEASH_TEST_VAR=test_value")

	out, err := cmd.Output()
	require.NoError(t, err)
	require.Equal(t, "test_value\n", string(out))
}

func TestCommandWorkingDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	cmd := leash.Command("pwd")
	cmd.Dir = tmpDir

	out, err := cmd.Output()
	require.NoError(t, err)

	got, err := filepathEval(strings.TrimSpace(string(out)))
	require.NoError(t, err)
	want, err := filepathEval(tmpDir)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// filepathEval resolves symlinks so temp dirs compare equal on platforms
// where /tmp is itself a symlink.
func filepathEval(path string) (string, error) {
	return filepath.EvalSymlinks(path)
}

func TestLookPath(t *testing.T) {
	path, err := leash.LookPath("echo")
	require.NoError(t, err)
	require.Contains(t, path, "echo")
}

func TestLookPathNotFound(t *testing.T) {
	_, err := leash.LookPath("this-command-should-not-exist-anywhere")
	require.Error(t, err)
	require.True(t, errors.Is(err, leash.ErrNotFound))
}

func TestConcurrentCommands(t *testing.T) {
	const n = 10
	done := make(chan error, n)

	for i := 0; i < n; i++ {
		go func(i int) {
			out, err := leash.Command("echo", fmt.Sprintf("concurrent-%d", i)).Output()
			if err == nil && string(out) != fmt.Sprintf("concurrent-%d\n", i) {
				err = fmt.Errorf("unexpected output %q", out)
			}
			done <- err
		}(i)
	}

	for i := 0; i < n; i++ {
		require.NoError(t, <-done)
	}
}
