// Package buildinfo carries build-time metadata that is not part of user configuration
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// UnknownValue is reported for metadata that was not injected at build time
const UnknownValue = "unknown"

// BuildInfo provides access to build-time metadata
type BuildInfo interface {
	GetVersion() string
	GetBuildDate() string
}

// Context holds the values injected with -ldflags at build time
type Context struct {
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string
}

// NewContext creates build metadata. An empty version falls back to the
// module version recorded by the Go toolchain, when there is one.
func NewContext(version, buildDate string) *Context {
	if version == "" {
		version = moduleVersion()
	}
	return &Context{Version: version, BuildDate: buildDate}
}

func moduleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return ""
	}
	return info.Main.Version
}

// GetVersion implements BuildInfo.GetVersion
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate implements BuildInfo.GetBuildDate
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// String renders the one-line version banner
func (c *Context) String() string {
	return fmt.Sprintf("sheriff %s (built %s)", c.GetVersion(), c.GetBuildDate())
}
