// Package directories resolves OS-appropriate config/log directories for
// the bridge, honoring XDG overrides via an injected EnvProvider so tests
// can exercise directory selection without touching the real environment.
package directories

import (
	"os"
	"path/filepath"
)

// UserProvider resolves the base user config/cache directories.
type UserProvider interface {
	ConfigDir() (string, error)
	CacheDir() (string, error)
}

// DefaultUserProvider delegates to the standard library's os.UserConfigDir
// and os.UserCacheDir.
type DefaultUserProvider struct{}

func (DefaultUserProvider) ConfigDir() (string, error) { return os.UserConfigDir() }
func (DefaultUserProvider) CacheDir() (string, error)  { return os.UserCacheDir() }

// EnvProvider reads environment variables, allowing tests to substitute a
// fixed map.
type EnvProvider interface {
	Getenv(key string) string
}

// DefaultEnvProvider reads the real process environment.
type DefaultEnvProvider struct{}

func (DefaultEnvProvider) Getenv(key string) string { return os.Getenv(key) }

// DirectoryResolver computes the config/log directories for one named
// application, preferring XDG_CONFIG_HOME/XDG_CACHE_HOME when set.
type DirectoryResolver struct {
	appName         string
	users           UserProvider
	env             EnvProvider
	createIfMissing bool
}

// NewDirectoryResolver constructs a resolver for appName.
func NewDirectoryResolver(appName string, users UserProvider, env EnvProvider, createIfMissing bool) *DirectoryResolver {
	return &DirectoryResolver{appName: appName, users: users, env: env, createIfMissing: createIfMissing}
}

// GetConfigDirectory returns (creating if configured to) the directory
// this application should read/write its config file in.
func (r *DirectoryResolver) GetConfigDirectory() (string, error) {
	return r.resolve(r.env.Getenv("XDG_CONFIG_HOME"), r.users.ConfigDir)
}

// GetLogDirectory returns (creating if configured to) the directory this
// application should write its log file in.
func (r *DirectoryResolver) GetLogDirectory() (string, error) {
	return r.resolve(r.env.Getenv("XDG_CACHE_HOME"), r.users.CacheDir)
}

func (r *DirectoryResolver) resolve(xdgOverride string, fallback func() (string, error)) (string, error) {
	base := xdgOverride
	if base == "" {
		b, err := fallback()
		if err != nil {
			return "", err
		}
		base = b
	}
	dir := filepath.Join(base, r.appName)
	if r.createIfMissing {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	return dir, nil
}
