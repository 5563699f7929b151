package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(_ context.Context, _ *cli.Command) error {
			fmt.Printf("scriptsync %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			return nil
		},
	}
}
