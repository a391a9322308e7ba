//go:build linux

package lockc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/cilium/ebpf"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Load ensures the pin directory pinPath exists, creating it and any missing
// parents, then parses the bytecode object into a [Bundle] of unattached
// programs. It does not touch any kernel hook.
//
// Errors are returned as *[LoadError]: IOFailure when the directory cannot
// be created, BytecodeRejected when the object cannot be parsed.
func Load(pinPath string, opts ...Option) (*Bundle, error) {
	s := newSettings(opts)

	if err := os.MkdirAll(pinPath, 0755); err != nil {
		return nil, &LoadError{Kind: IOFailure, Path: pinPath, Err: err}
	}

	obj, profile := s.object, "custom"
	if obj == nil {
		obj, profile = object, objectProfile
	}

	spec, err := ebpf.LoadCollectionSpecFromReader(bytes.NewReader(obj))
	if err != nil {
		return nil, &LoadError{Kind: BytecodeRejected, Path: pinPath, Err: fmt.Errorf("parse object: %w", err)}
	}
	if len(spec.Programs) == 0 {
		return nil, &LoadError{Kind: BytecodeRejected, Path: pinPath, Err: errors.New("object contains no programs")}
	}

	b := newBundle(spec, pinPath)
	b.onBPFFS = onBPFFS(pinPath)

	s.logger.Debug("bytecode parsed",
		zap.String("pin_path", pinPath),
		zap.String("profile", profile),
		zap.Int("programs", len(spec.Programs)),
		zap.Bool("bpffs", b.onBPFFS))

	return b, nil
}

func onBPFFS(path string) bool {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return false
	}
	return uint32(st.Type) == unix.BPF_FS_MAGIC
}
