package herbid

// Version and Build are set by ldflags during compilation.
var (
	Version = "v0.1.0"
	Build   = "n/a"
)
