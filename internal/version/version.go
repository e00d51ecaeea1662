// Package version holds build-time identity for the devlint binary.
package version

// Version is overridden at build time via -ldflags.
var Version = "dev"

// BinaryName is the program name reported in --version output and report metadata.
const BinaryName = "devlint"
