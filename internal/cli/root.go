//go:build !windows

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/leash/internal/supervise"
)

// launch is indirected for tests.
var launch = supervise.RunLauncher

// statusError carries a supervised command's exit status out through cobra
// so Execute can mirror it exactly.
type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "leash <command> [args...]",
		Short: "Run a command that dies when its parent does",
		Long: `leash runs a command and guarantees that the command, together with every
descendant it spawns, is terminated once the process that invoked leash
disappears. The command's exit status is propagated unchanged: its own exit
code on a normal exit, 128+signal when it is killed by a signal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if code := launch(args); code != 0 {
				return statusError{code: code}
			}
			return nil
		},
	}

	// Everything after the first positional belongs to the target command.
	root.Flags().SetInterspersed(false)
	root.SilenceErrors = true
	root.SilenceUsage = true

	return root
}

// Execute runs the CLI entrypoint.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		var status statusError
		if errors.As(err, &status) {
			os.Exit(status.code)
		}
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, root.UsageString())
		os.Exit(1)
	}
}
