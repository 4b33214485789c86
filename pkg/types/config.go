package types

import "errors"

// Config selects the snapshot backend and where its data lives.
type Config struct {
	Backend  string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir  string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Snapshot string `json:"snapshot" yaml:"snapshot" mapstructure:"snapshot"`
	Capacity int    `json:"capacity" yaml:"capacity" mapstructure:"capacity"`
}

// Supported backend names.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Defaults used when nothing else is configured.
const (
	DefaultBackend  = BackendCSV
	DefaultSnapshot = "national"
	DefaultCapacity = 890
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendCSV:    true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Capacity < 0 {
		return ErrInvalidCapacity
	}
	return nil
}

// SnapshotFile returns the snapshot file name for the backend, adding the
// backend's extension when the configured name has none.
func (c Config) SnapshotFile() string {
	name := c.Snapshot
	if name == "" {
		name = DefaultSnapshot
	}
	ext := ".csv"
	if c.Backend == BackendSQLite {
		ext = ".db"
	}
	if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
		return name
	}
	return name + ext
}
