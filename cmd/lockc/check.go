package main

import (
	"errors"
	"fmt"

	"github.com/leodido/structcli"
	"github.com/lockc-project/lockc"
	"github.com/spf13/cobra"
)

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	BTF       string `flag:"btf" flagdescr:"Kernel BTF blob to look for (default /sys/kernel/btf/vmlinux)"`
	MountInfo string `flag:"mountinfo" flagdescr:"Mount table used to detect the root filesystem (default /proc/1/mountinfo)"`
	JSON      bool   `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func checkCmd(g *globalOptions) *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check that the running kernel can enforce lockc policies",
		Long: `Check that the running kernel can enforce lockc policies.
Exits with code 0 if all requirements are met, 1 if any are missing.
A root filesystem other than btrfs is reported but is not a failure:
only mount policies are disabled then.`,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			popts := []lockc.Option{lockc.WithLogger(g.logger)}
			if opts.BTF != "" {
				popts = append(popts, lockc.WithKernelTypesPath(opts.BTF))
			}
			if opts.MountInfo != "" {
				popts = append(popts, lockc.WithMountInfoPath(opts.MountInfo))
			}

			r, err := lockc.Preflight(popts...)
			if err != nil {
				return err
			}
			return report(c, r, opts.JSON)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func report(c *cobra.Command, r *lockc.Readiness, asJSON bool) error {
	err := r.Err()
	var re *lockc.RequirementError
	if err != nil && !errors.As(err, &re) {
		return err
	}

	if asJSON {
		out := map[string]any{
			"ok":              err == nil,
			"kernel":          r.KernelRelease,
			"root_filesystem": r.RootFilesystem,
			"mount_policies":  r.MountPolicy.Supported,
		}
		if re != nil {
			out["requirement"] = re.Requirement
			out["reason"] = re.Reason
		}
		if perr := printJSON(c.OutOrStdout(), out); perr != nil {
			return perr
		}
		return err
	}

	fmt.Fprint(c.OutOrStdout(), r)
	fmt.Fprintln(c.OutOrStdout())
	if re != nil {
		fmt.Fprintf(c.ErrOrStderr(), "FAIL: %s: %s\n", re.Requirement, re.Reason)
		return err
	}
	fmt.Fprintln(c.OutOrStdout(), "OK: all requirements satisfied")
	return nil
}
