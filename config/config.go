package config

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// config represents a full configuration file of this project, each tool part
// of this repository share the same configuration file
type config struct {
	// DevelopmentMode enables human readable logging and disables some checks
	DevelopmentMode bool
	// UserAgent to use when making HTTP requests
	UserAgent string

	// Providers selects which implementations to use for pluggable services
	Providers providers
	// Database contains the configuration to connect to the SQL database
	Database database
	// Mongo contains the configuration to connect to the MongoDB database
	Mongo mongo
	// Blob contains the configuration of the blob store
	Blob blob
	// Website contains the configuration of the HTTP frontend
	Website website
	// Ingest contains the configuration of the song ingestion pipeline
	Ingest ingest
	// MusicBrainz contains the configuration of the online metadata lookup
	MusicBrainz musicbrainz
	// Telemetry contains the configuration of tracing, metrics and profiling
	Telemetry telemetry
}

type providers struct {
	// Storage is the name of the persistent record store to use
	Storage string
	// Blob is the name of the blob store to use
	Blob string
	// Lookup is the name of the online metadata lookup provider to use, empty
	// disables online lookups
	Lookup string
}

// database is the configuration for the database/sql package
type database struct {
	// DriverName to pass to database/sql
	DriverName string
	// DSN to pass to database/sql, format depends on driver used
	DSN string
}

// mongo is the configuration for the mongodb storage provider
type mongo struct {
	// URI is the connection string of the mongodb server
	URI string
	// Database is the name of the database to use
	Database string
	// Timeout is the timeout for connecting to the server
	Timeout Duration
}

// blob is the configuration for the filesystem blob store
type blob struct {
	// Path is the root directory all blobs are stored under
	Path string
}

type website struct {
	// WebsiteAddr is the address the HTTP server listens on
	WebsiteAddr ListenAddr
	// MaxUploadSize is the maximum size of an uploaded file in bytes
	MaxUploadSize int64
	// UploaderHeader is the header set by the authenticating proxy in front
	// of us that contains the identity of the user
	UploaderHeader string
	// UploadRateLimit is the amount of uploads allowed per minute per address
	UploadRateLimit int
}

type ingest struct {
	// ScratchDir is the directory used for temporary files during ingestion,
	// empty means the system default
	ScratchDir string
	// FingerprintTools is an ordered list of candidate locations of the
	// acoustic fingerprinting tool, the first one found is used
	FingerprintTools []string
	// FingerprintTimeout is the maximum time the fingerprinting tool may run
	FingerprintTimeout Duration
	// LookupTimeout is the maximum time an online metadata lookup may take
	LookupTimeout Duration
}

type musicbrainz struct {
	// Endpoint is the base URL of the MusicBrainz webservice
	Endpoint URL
	// MinScore is the minimum score a recording needs to be used
	MinScore int
	// MaxRetries is the amount of retries on rate limiting or server errors
	MaxRetries uint64
}

type telemetry struct {
	// Use enables the exporting of telemetry
	Use bool
	// Endpoint is the address of the OTLP gRPC collector
	Endpoint string
	// Auth is the value of the Authorization header sent to the collector
	Auth string
	// Pyroscope contains the configuration of continuous profiling
	Pyroscope pyroscope
}

type pyroscope struct {
	// Endpoint is the URL of the pyroscope server, empty disables profiling
	Endpoint URL
	// UploadRate is how often profiles are uploaded
	UploadRate Duration
}

// errors is a slice of multiple config-file errors
type errors []error

func (e errors) Error() string {
	s := "config: error opening files:"
	if len(e) == 1 {
		return s + " " + e[0].Error()
	}

	for _, err := range e {
		s += "\n" + err.Error()
	}

	return s
}

// Loader is a function that returns a loaded Config
type Loader func() (Config, error)

// Config is a type-safe wrapper around the config type
type Config struct {
	config *atomic.Value
}

// LoadFile loads a configuration file from the filename given, the first
// filename that exists is used. If a filename is the name of an environment
// variable that is set, the value of it is used instead. If no filenames are
// given the defaults are returned
func LoadFile(filenames ...string) (Config, error) {
	var f *os.File
	var err error
	var errs errors

	if len(filenames) == 0 {
		return newConfig(defaultConfig), nil
	}

	for _, filename := range filenames {
		if env, ok := os.LookupEnv(filename); ok {
			filename = env
		}
		if filename == "" {
			continue
		}

		f, err = os.Open(filename)
		if err == nil {
			break
		}

		errs = append(errs, err)
	}

	if f == nil && len(errs) == 0 {
		return newConfig(defaultConfig), nil
	}
	if f == nil {
		return newConfig(defaultConfig), errs
	}
	defer f.Close()

	return Load(f)
}

// Load loads a configuration file from the reader given, it expects TOML as input
func Load(r io.Reader) (Config, error) {
	var c = defaultConfig
	m, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return Config{}, err
	}

	// print out keys that were found but don't have a destination
	undec := m.Undecoded()
	if len(undec) > 0 {
		log.Warn().Any("keys", undec).Msg("config: unknown keys in configuration")
	}

	return newConfig(c), nil
}

// TestConfig returns the default configuration with paths adjusted for tests
func TestConfig() Config {
	c := defaultConfig
	c.DevelopmentMode = true
	c.Blob.Path = "/kotone/testing/music"
	c.Ingest.ScratchDir = "/kotone/testing/scratch"
	c.Ingest.FingerprintTools = nil
	c.Providers.Lookup = ""
	return newConfig(c)
}

func newConfig(c config) Config {
	ac := Config{new(atomic.Value)}
	ac.StoreConf(c)
	return ac
}

// Conf returns the configuration stored inside
//
// NOTE: Conf returns a shallow-copy of the config value stored inside; so do not edit
// any slices or maps that might be inside
func (c Config) Conf() config {
	return c.config.Load().(config)
}

// StoreConf stores the configuration passed
func (c Config) StoreConf(new config) {
	c.config.Store(new)
}

// Save writes the configuration to w in TOML format
func (c Config) Save(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c.Conf())
}

// Value returns a function that returns the value selected by fn from the
// current configuration every time it is called
func Value[T any](cfg Config, fn func(Config) T) func() T {
	return func() T {
		return fn(cfg)
	}
}
