// Package cli is the dropwise command line. Every subcommand shares one
// env: config, logger, session and API clients built before it runs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/dropwise/internal/ui"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// stdin is where prompts read from.
var stdin io.Reader = os.Stdin

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

func usagef(format string, a ...any) error {
	return usageError{fmt.Errorf(format, a...)}
}

// Run executes args (without the program name) and returns an exit code.
func Run(ctx context.Context, args []string) int {
	e := &env{}
	root := newRootCmd(e)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	e.close()
	if err == nil {
		return ExitOK
	}

	ui.Fail(err.Error())
	var ue usageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		ui.Hint("Run `dropwise --help` for usage.")
		return ExitUsage
	}
	return ExitError
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "dropwise",
		Short: "Save links now, read them later",
		Long: `dropwise keeps a reading list of "drops" on a Dropwise server.

Run without arguments to open the interactive client.`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.runTUI(cmd.Context())
		},
	}
	root.SetOut(ui.Stdout)
	root.SetErr(ui.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&e.cfgPath, "config", "", "config file (default ~/.dropwise/config.yaml)")
	pf.StringVar(&e.apiURL, "api-url", "", "Dropwise API base URL")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "debug logging to the log file")

	root.AddCommand(
		newLoginCmd(e),
		newSignupCmd(e),
		newLogoutCmd(e),
		newStatusCmd(e),
		newListCmd(e),
		newAddCmd(e),
		newEditCmd(e),
		newRemoveCmd(e),
		newTUICmd(e),
	)
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%s: unexpected argument %q", cmd.CommandPath(), args[0])
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", cmd.UseLine())
		}
		return nil
	}
}
