package lockc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/cilium/ebpf"
)

// RequirementsOf returns the program types the programs of b need from the
// kernel.
//
// The result is deduplicated and sorted. Programs of an unspecified or
// unknown type make it fail instead of being dropped.
func RequirementsOf(b *Bundle) ([]ebpf.ProgramType, error) {
	if b == nil || b.spec == nil {
		return nil, fmt.Errorf("nil bundle")
	}
	return programTypesOf(b.spec)
}

func programTypesOf(spec *ebpf.CollectionSpec) ([]ebpf.ProgramType, error) {
	seen := make(map[ebpf.ProgramType]struct{}, len(spec.Programs))
	for name, prog := range spec.Programs {
		if prog == nil {
			return nil, fmt.Errorf("program %q: nil program spec", name)
		}
		if err := validateProgramType(prog.Type); err != nil {
			return nil, fmt.Errorf("program %q: %w", name, err)
		}
		seen[prog.Type] = struct{}{}
	}

	types := make([]ebpf.ProgramType, 0, len(seen))
	for pt := range seen {
		types = append(types, pt)
	}
	slices.Sort(types)
	return types, nil
}

// programTypesFor falls back to the hook kinds of the program table when
// there is no bundle to inspect.
func programTypesFor(b *Bundle) ([]ebpf.ProgramType, error) {
	if b != nil {
		return RequirementsOf(b)
	}
	var types []ebpf.ProgramType
	for _, p := range programTable {
		if pt := p.Hook.ProgramType(); !slices.Contains(types, pt) {
			types = append(types, pt)
		}
	}
	slices.Sort(types)
	return types, nil
}

func validateProgramType(pt ebpf.ProgramType) error {
	if pt == ebpf.UnspecifiedProgram {
		return fmt.Errorf("unsupported/unspecified program type")
	}
	if strings.HasPrefix(pt.String(), "ProgramType(") {
		return fmt.Errorf("unknown program type %d", pt)
	}
	return nil
}
