//go:build debug

package lockc

import _ "embed"

//go:embed bpf/debug/lockc.bpf.o
var object []byte

const objectProfile = "debug"
