// Package config carries the ambient, environment-derived state every
// other package needs a handle to without importing each other
// directly (SPEC_FULL.md §1 "Configuration"): a build-time Version
// string, a couple of global mode flags set once at startup, and an
// optional YAML-loadable Settings struct.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is stamped by the release build; "dev" outside of one.
var Version = "dev"

// testMode marks the process as running under the test suite — the
// same flag config.IsTestMode is in the teacher. It is only stored and
// reported by IsTestMode; no code in this module changes its behavior
// (the library dial timeout included) based on it.
var testMode bool

// SetTestMode flips the package-level test flag. Call once, from
// TestMain or an init() in a package that needs it; never mid-test.
func SetTestMode(v bool) { testMode = v }

// IsTestMode reports whether the process is running under the test
// harness.
func IsTestMode() bool { return testMode }

// Settings is the optional mers.yaml document (SPEC_FULL.md §1): a
// trace-log toggle for the type algebra's fits_in oracle (useful when
// debugging a subtype decision) and the library bridge's dial timeout.
type Settings struct {
	TraceFitsIn        bool          `yaml:"trace_fits_in"`
	LibraryDialTimeout time.Duration `yaml:"library_dial_timeout"`
}

// DefaultSettings is used whenever no mers.yaml is present.
func DefaultSettings() Settings {
	return Settings{
		LibraryDialTimeout: 5 * time.Second,
	}
}

// Load reads Settings from path. A missing file is not an error — it
// yields DefaultSettings, since mers.yaml is always optional.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}
