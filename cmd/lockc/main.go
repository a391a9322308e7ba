package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lockc-project/lockc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build metadata injected via ldflags.
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{
		level:  zap.InfoLevel,
		format: formatJSON,
	}

	root := &cobra.Command{
		Use:   "lockc",
		Short: "Load and attach lockc container policy programs",
		Long: `lockc enforces container security policies with eBPF.

It loads the embedded BPF object, attaches the process tracepoints and the
LSM hooks to the running kernel and keeps them attached until it is stopped.
Every flag can also be set with a LOCKC_ environment variable
(e.g. LOCKC_PIN_PATH) or in the file given with --config.`,
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			if err := applyConfig(c.Flags(), g.configFile); err != nil {
				return err
			}
			logger, err := g.newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			g.logger = logger
			return nil
		},
		PersistentPostRun: func(c *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}

	g.define(root.PersistentFlags())

	root.AddCommand(runCmd(g))
	root.AddCommand(checkCmd(g))
	root.AddCommand(programsCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show kernel and tool version",
		RunE: func(c *cobra.Command, args []string) error {
			out := c.OutOrStdout()
			if version != "" {
				fmt.Fprintf(out, "lockc %s", version)
				if commit != "" {
					fmt.Fprintf(out, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(out, " built %s", date)
				}
				fmt.Fprintln(out)
			} else {
				fmt.Fprintln(out, "lockc (dev)")
			}
			fmt.Fprintf(out, "Bytecode: %s\n", lockc.Profile())

			release, err := lockc.KernelRelease()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Kernel: %s\n", release)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
