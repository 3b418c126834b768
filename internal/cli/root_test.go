//go:build !windows

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubLaunch(t *testing.T, code int) *[][]string {
	t.Helper()

	var calls [][]string
	orig := launch
	launch = func(args []string) int {
		calls = append(calls, args)
		return code
	}
	t.Cleanup(func() { launch = orig })
	return &calls
}

func TestUsageErrorWithoutArguments(t *testing.T) {
	calls := stubLaunch(t, 0)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(nil)

	err := root.Execute()
	require.Error(t, err)
	require.Empty(t, *calls, "launcher must not run on a usage error")
}

func TestTargetFlagsPassThrough(t *testing.T) {
	calls := stubLaunch(t, 0)

	root := NewRootCmd()
	root.SetArgs([]string{"grep", "-v", "--line-number", "pattern"})

	require.NoError(t, root.Execute())
	require.Equal(t, [][]string{{"grep", "-v", "--line-number", "pattern"}}, *calls)
}

func TestNonzeroStatusSurfacesAsStatusError(t *testing.T) {
	stubLaunch(t, 42)

	root := NewRootCmd()
	root.SetArgs([]string{"false"})

	err := root.Execute()
	require.Error(t, err)

	var status statusError
	require.ErrorAs(t, err, &status)
	require.Equal(t, 42, status.code)
}
