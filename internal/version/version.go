// Package version holds the build version of the engine.
package version

// Version is the semantic version of this build. Release builds override
// it with -ldflags.
var Version = "0.1.0-dev"
