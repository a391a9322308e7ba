package lockc

// The embedded object is selected at build time: `-tags debug` embeds the
// unoptimized build, anything else the optimized one.
//
//go:generate llc -march=bpfel -filetype=obj -O0 bpf/lockc.ll -o bpf/debug/lockc.bpf.o
//go:generate llc -march=bpfel -filetype=obj -O2 bpf/lockc.ll -o bpf/release/lockc.bpf.o

// Object returns a copy of the embedded bytecode object.
func Object() []byte {
	return append([]byte(nil), object...)
}

// Profile returns the build profile of the embedded object.
func Profile() string {
	return objectProfile
}
