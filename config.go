//go:build linux

package lockc

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoKernelConfig is returned when no kernel config source is available.
var ErrNoKernelConfig = errors.New("no kernel config found")

// configSource describes a kernel config file location.
type configSource struct {
	path       string
	compressed bool
}

// readKernelConfig tries, in order, /proc/config.gz,
// /boot/config-$(uname -r) and /lib/modules/$(uname -r)/config.
func readKernelConfig() (*KernelConfig, error) {
	release, err := KernelRelease()
	if err != nil {
		return nil, err
	}

	sources := []configSource{
		{path: "/proc/config.gz", compressed: true},
		{path: "/boot/config-" + release},
		{path: "/lib/modules/" + release + "/config"},
	}

	var lastErr error
	for _, src := range sources {
		kc, err := parseConfigFrom(src)
		if err == nil {
			return kc, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %w", ErrNoKernelConfig, lastErr)
}

func parseConfigFrom(src configSource) (*KernelConfig, error) {
	f, err := os.Open(src.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var reader io.Reader = f
	if src.compressed {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		reader = gr
	}

	return parseConfig(reader)
}

// parseConfig extracts CONFIG_* entries set to y or m.
func parseConfig(r io.Reader) (*KernelConfig, error) {
	raw := make(map[string]ConfigValue)
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "CONFIG_") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimPrefix(key, "CONFIG_")

		switch value {
		case "y":
			raw[key] = ConfigBuiltin
		case "m":
			raw[key] = ConfigModule
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewKernelConfig(raw), nil
}
