//go:build !debug

package lockc

import _ "embed"

//go:embed bpf/release/lockc.bpf.o
var object []byte

const objectProfile = "release"
