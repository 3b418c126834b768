//go:build !windows

package main

import (
	"github.com/docker/docker/pkg/reexec"

	"github.com/Paintersrp/leash/internal/cli"
)

func main() {
	// Re-executions of this binary dispatch straight into their stage.
	if reexec.Init() {
		return
	}
	cli.Execute()
}
