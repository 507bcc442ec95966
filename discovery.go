// FILE: lixenwraith/envconfig/discovery.go
package envconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiscoveryOptions configures the search for a declaration file
type DiscoveryOptions struct {
	// Base name of the declaration file, without extension
	Name string

	// Extensions tried in order within each directory
	Extensions []string

	// Directories searched before the defaults
	Paths []string

	// Environment variable holding an explicit path
	EnvVar string

	// Search $XDG_CONFIG_HOME/<name> and $XDG_CONFIG_DIRS/<name>
	UseXDG bool

	// Search the working directory
	UseCurrentDir bool
}

// DefaultDiscoveryOptions returns the search used for appName: $APPNAME_SCHEMA,
// then appName.{toml,yaml,yml,json} in the current directory and the XDG config directories.
func DefaultDiscoveryOptions(appName string) DiscoveryOptions {
	return DiscoveryOptions{
		Name:          appName,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json"},
		EnvVar:        strings.ToUpper(appName) + "_SCHEMA",
		UseXDG:        true,
		UseCurrentDir: true,
	}
}

// Candidates lists every file FindDeclaration would check, in order.
// The explicit path from EnvVar is not included.
func (o DiscoveryOptions) Candidates() []string {
	dirs := append([]string(nil), o.Paths...)
	if o.UseCurrentDir {
		if cwd, err := os.Getwd(); err == nil {
			dirs = append(dirs, cwd)
		}
	}
	if o.UseXDG {
		dirs = append(dirs, xdgConfigDirs(o.Name)...)
	}

	candidates := make([]string, 0, len(dirs)*len(o.Extensions))
	for _, dir := range dirs {
		for _, ext := range o.Extensions {
			candidates = append(candidates, filepath.Join(dir, o.Name+ext))
		}
	}
	return candidates
}

// FindDeclaration returns the first declaration file matching opts.
// A path named by opts.EnvVar takes precedence and must exist.
// It fails with ErrDeclarationNotFound when no candidate exists.
func FindDeclaration(opts DiscoveryOptions) (string, error) {
	if opts.EnvVar != "" {
		if path := os.Getenv(opts.EnvVar); path != "" {
			if _, err := os.Stat(path); err != nil {
				return "", fmt.Errorf("%w: %s (from %s)", ErrDeclarationNotFound, path, opts.EnvVar)
			}
			return path, nil
		}
	}

	candidates := opts.Candidates()
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: no %s declaration among %d candidate(s)", ErrDeclarationNotFound, opts.Name, len(candidates))
}

// xdgConfigDirs returns the XDG config directories for appName, user directory first
func xdgConfigDirs(appName string) []string {
	var dirs []string

	switch home := os.Getenv("XDG_CONFIG_HOME"); {
	case home != "":
		dirs = append(dirs, filepath.Join(home, appName))
	case os.Getenv("HOME") != "":
		dirs = append(dirs, filepath.Join(os.Getenv("HOME"), ".config", appName))
	}

	system := filepath.SplitList(os.Getenv("XDG_CONFIG_DIRS"))
	if len(system) == 0 {
		system = []string{"/etc/xdg"}
	}
	for _, dir := range system {
		dirs = append(dirs, filepath.Join(dir, appName))
	}
	return dirs
}
