package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cilium/ebpf/rlimit"
	"github.com/leodido/structcli"
	"github.com/lockc-project/lockc"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultPinPath = "/sys/fs/bpf/lockc"

// RunOptions defines flags for the run subcommand.
type RunOptions struct {
	PinPath   string `flag:"pin-path" flagshort:"p" flagdescr:"Directory for pinned BPF objects (default /sys/fs/bpf/lockc)"`
	BTF       string `flag:"btf" flagdescr:"Kernel BTF blob to resolve attach targets against (default /sys/kernel/btf/vmlinux)"`
	MountInfo string `flag:"mountinfo" flagdescr:"Mount table used to detect the root filesystem (default /proc/1/mountinfo)"`
	Preflight bool   `flag:"preflight" flagdescr:"Refuse to attach when the kernel lacks a requirement"`
}

func (o *RunOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *RunOptions) libraryOptions(logger *zap.Logger) []lockc.Option {
	opts := []lockc.Option{lockc.WithLogger(logger)}
	if o.BTF != "" {
		opts = append(opts, lockc.WithKernelTypesPath(o.BTF))
	}
	if o.MountInfo != "" {
		opts = append(opts, lockc.WithMountInfoPath(o.MountInfo))
	}
	return opts
}

func runCmd(g *globalOptions) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Attach the policy programs and enforce until interrupted",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if opts.PinPath == "" {
				opts.PinPath = defaultPinPath
			}
			return run(c, g.logger, opts)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func run(c *cobra.Command, logger *zap.Logger, opts *RunOptions) error {
	// Kernels before 5.11 charge BPF memory against RLIMIT_MEMLOCK.
	if err := rlimit.RemoveMemlock(); err != nil {
		return fmt.Errorf("remove memlock rlimit: %w", err)
	}

	libOpts := opts.libraryOptions(logger)

	b, err := lockc.Load(opts.PinPath, libOpts...)
	if err != nil {
		logger.Error("loading bytecode failed", zap.Error(err))
		return err
	}
	defer func() {
		if cerr := b.Close(); cerr != nil {
			logger.Warn("releasing programs failed", zap.Error(cerr))
		}
	}()

	if opts.Preflight {
		r, err := lockc.Preflight(append(libOpts, lockc.WithBundle(b))...)
		if err != nil {
			return err
		}
		if err := r.Err(); err != nil {
			logger.Error("kernel is not ready", zap.Error(err))
			return err
		}
	}

	if err := lockc.Attach(b, libOpts...); err != nil {
		for _, o := range b.Outcomes() {
			logger.Info("program outcome", zap.Stringer("outcome", o))
		}
		logger.Error("attaching programs failed", zap.Error(err))
		return err
	}
	fmt.Fprint(c.OutOrStdout(), b)

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("enforcing policies", zap.String("pin_path", b.PinPath()), zap.Bool("bpffs", b.PinnedOnBPFFS()))
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
