//go:build linux

package lockc

import (
	"fmt"

	"github.com/cilium/ebpf/btf"
)

const btfPath = "/sys/kernel/btf/vmlinux"

// ResolveKernelTypes reads the running kernel's BTF, or the BTF blob at path
// when path is not empty. Tracepoint and LSM programs are verified against
// it, so a failure is returned as a TypeInfoUnavailable *[AttachError].
func ResolveKernelTypes(path string) (*btf.Spec, error) {
	var (
		spec *btf.Spec
		err  error
	)
	if path == "" {
		spec, err = btf.LoadKernelSpec()
	} else {
		spec, err = btf.LoadSpec(path)
	}
	if err != nil {
		if path == "" {
			path = btfPath
		}
		return nil, &AttachError{Kind: TypeInfoUnavailable, Err: fmt.Errorf("read BTF from %s: %w", path, err)}
	}
	return spec, nil
}
