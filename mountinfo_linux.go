//go:build linux

package lockc

import (
	"fmt"
	"os"

	"github.com/moby/sys/mountinfo"
)

// RootFilesystemType returns the filesystem type of the "/" mount point
// listed in mountInfoPath, a file in proc(5) mountinfo format. When "/" is
// mounted more than once the last entry, the one visible to lookups, wins.
func RootFilesystemType(mountInfoPath string) (string, error) {
	f, err := os.Open(mountInfoPath)
	if err != nil {
		return "", fmt.Errorf("opening mountinfo: %w", err)
	}
	defer f.Close()

	// SingleEntryFilter stops at the first match; every root entry is needed.
	mounts, err := mountinfo.GetMountsFromReader(f, func(m *mountinfo.Info) (skip, stop bool) {
		return m.Mountpoint != "/", false
	})
	if err != nil {
		return "", fmt.Errorf("reading mountinfo: %w", err)
	}
	if len(mounts) == 0 {
		return "", errNoRootMount
	}
	return mounts[len(mounts)-1].FSType, nil
}
