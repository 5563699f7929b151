// Package cli provides command definitions for scriptsync.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"scriptsync/internal/config"
	"scriptsync/internal/jamf"
	"scriptsync/internal/model"
	"scriptsync/internal/store"
	"scriptsync/internal/sync"
	"scriptsync/internal/ui"
	"scriptsync/internal/ui/tui"
)

// loadConfig loads the configuration, honoring the global --config flag.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if path := cmd.String("config"); path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// buildStore derives the roots from configuration and opens the store.
func buildStore(cfg *config.Config) (*store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	return store.New(cfg.Roots(cwd)), nil
}

// newDecider picks the interactive prompter when a terminal is attached,
// and the default-answer policy otherwise.
func newDecider(cmd *cli.Command) sync.Decider {
	if cmd.Bool("non-interactive") || !term.IsTerminal(int(os.Stdin.Fd())) {
		return sync.Policy{}
	}
	return NewTerminalDecider()
}

// dial authenticates against the configured server, prompting for the
// password when the configuration leaves it empty.
func dial(ctx context.Context, cfg *config.Config) (*jamf.Client, error) {
	password := cfg.Server.Password
	if password == "" {
		p, err := promptPassword(cfg.Server.Username)
		if err != nil {
			return nil, err
		}
		password = p
	}

	var client *jamf.Client
	err := tui.WithSpinner("Authenticating...", func() error {
		var err error
		client, err = jamf.Dial(ctx, cfg.Server.URL, cfg.Server.Username, password, jamf.Options{
			InsecureSkipVerify: !cfg.TLS.Verify,
			WarnInsecure:       cfg.TLS.Warn,
			Timeout:            time.Duration(cfg.Server.Timeout),
		})
		return err
	})
	return client, err
}

// buildOrchestrator wires the client, store and decider together.
func buildOrchestrator(ctx context.Context, cmd *cli.Command) (*sync.Orchestrator, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	st, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	client, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return sync.New(client, st, newDecider(cmd)), nil
}

// printResult renders a workflow result and converts failures into a
// non-zero exit.
func printResult(result *sync.Result) error {
	fmt.Print(result.Summary())
	if !result.Success() {
		return fmt.Errorf("%d item(s) failed", len(result.Failed()))
	}
	return nil
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage scriptsync configuration",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Display the active configuration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					fmt.Println(renderConfigTable(cfg))
					fmt.Println(ui.Dim("config file: " + config.FilePath()))
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Action: func(_ context.Context, _ *cli.Command) error {
					if config.Exists() {
						return fmt.Errorf("config file already exists at %s", config.FilePath())
					}
					if err := config.Default().Save(); err != nil {
						return err
					}
					fmt.Println(ui.StatusSuccess("wrote " + config.FilePath()))
					return nil
				},
			},
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "List all scripts on the server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := dial(ctx, cfg)
			if err != nil {
				return err
			}

			var scripts []model.RemoteScript
			if err := tui.WithSpinner("Fetching scripts...", func() error {
				var err error
				scripts, err = client.ListScripts(ctx)
				return err
			}); err != nil {
				return err
			}

			fmt.Println(renderScriptsTable(scripts))
			return nil
		},
	}
}

func pullCommand() *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Download remote scripts and their metadata files",
		Description: `Download every script from the server into the configured scripts
   directory, one content file and one metadata file per script.

   Existing metadata files are preserved unless confirmed (they may carry
   local-only edits); existing content files are overwritten by default.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing local files without asking",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			orch, err := buildOrchestrator(ctx, cmd)
			if err != nil {
				return err
			}

			result, err := orch.Pull(ctx, sync.PullOptions{Force: cmd.Bool("force")})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
}

func pushCommand() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "Create or update remote scripts from the local store",
		UsageText: "scriptsync push [--file <path>... | --id <id>...]",
		Description: `Push local scripts to the server. With no selection flags, every
   script under the configured directory with a metadata file is pushed.

   Examples:
     scriptsync push
     scriptsync push --file scripts/deploy.sh --file scripts/cleanup.sh
     scriptsync push --id 42 --id 57`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Script file to push (repeatable)",
			},
			&cli.IntSliceFlag{
				Name:  "id",
				Usage: "Server id to push (repeatable); reconciles names first",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.StringSlice("file")
			ids64 := cmd.IntSlice("id")
			ids := make([]int, len(ids64))
			for i, v := range ids64 {
				ids[i] = int(v)
			}
			if len(files) > 0 && len(ids) > 0 {
				return &sync.UsageError{Msg: "push accepts only one of --file or --id"}
			}

			orch, err := buildOrchestrator(ctx, cmd)
			if err != nil {
				return err
			}

			result, err := orch.Push(ctx, sync.PushOptions{
				All:   len(files) == 0 && len(ids) == 0,
				Files: files,
				IDs:   ids,
			})
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Compare the local store against the server",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			orch, err := buildOrchestrator(ctx, cmd)
			if err != nil {
				return err
			}

			report, err := orch.Verify(ctx)
			if err != nil {
				return err
			}

			fmt.Print(renderVerifyReport(report))
			if !report.InSync() {
				return errors.New("local store and server differ")
			}
			return nil
		},
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a new local script and metadata file",
		UsageText: "scriptsync new <name> [--info <text>] [--notes <text>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "info",
				Usage: "Short description of the script",
			},
			&cli.StringFlag{
				Name:  "notes",
				Usage: "Free-form notes",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("new requires exactly 1 argument: <name>")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := buildStore(cfg)
			if err != nil {
				return err
			}

			// Local-only scaffolding; no server connection needed.
			orch := sync.New(nil, st, newDecider(cmd))
			local, err := orch.NewScript(args.Get(0), cmd.String("info"), cmd.String("notes"))
			if err != nil {
				return err
			}

			fmt.Println(ui.StatusSuccess("created " + local.ScriptPath()))
			fmt.Println(ui.StatusSuccess("created " + local.MetadataPath()))
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a script from the server",
		UsageText: "scriptsync delete <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Delete without confirmation",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.New("delete requires exactly 1 argument: <id>")
			}
			id, err := strconv.Atoi(args.Get(0))
			if err != nil {
				return fmt.Errorf("invalid id %q", args.Get(0))
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := buildStore(cfg)
			if err != nil {
				return err
			}
			client, err := dial(ctx, cfg)
			if err != nil {
				return err
			}

			decider := newDecider(cmd)
			if cmd.Bool("yes") {
				decider = sync.Policy{AllowDelete: true}
			}

			result, err := sync.New(client, st, decider).Delete(ctx, id)
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
}
