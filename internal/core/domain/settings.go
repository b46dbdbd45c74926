package domain

import "time"

const (
	// ConfigFileName is the configuration file looked up from the working directory upwards.
	ConfigFileName = "haul.yaml"
	// EnvFileName is the optional dotenv file read from the working directory.
	EnvFileName = ".env"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HAUL"
)

const (
	// DigestSHA1 selects the SHA-1 digester.
	DigestSHA1 = "sha1"
	// DigestXXHash selects the xxhash64 digester.
	DigestXXHash = "xxhash"
)

// Settings is the resolved runtime configuration of haul.
type Settings struct {
	// Output is the content store location: a bucket URL or a local directory.
	Output string
	// Workers is the number of concurrent downloads per job.
	Workers int
	// Jobs is the number of jobs the dispatcher runs at once.
	Jobs int
	// Timeout bounds each fetch attempt and is the backoff unit.
	Timeout time.Duration
	// Retries is the total number of attempts per URL.
	Retries int
	// Digest names the digester used for renaming (DigestSHA1 or DigestXXHash).
	Digest string
	// StrictRename records a failure when a rename cannot be applied.
	StrictRename bool
	// LogLevel is the minimum level of emitted log lines.
	LogLevel LogLevel
	// URLs lists URLs to fetch in addition to the ones given on the command line.
	URLs []string
}

// DefaultSettings returns the settings used when no configuration is present.
func DefaultSettings() Settings {
	return Settings{
		Output:   "downloads",
		Workers:  4,
		Jobs:     1,
		Timeout:  30 * time.Second,
		Retries:  3,
		Digest:   DigestSHA1,
		LogLevel: LogLevelInfo,
	}
}

// Policy returns the retry policy described by the settings.
func (s Settings) Policy() RetryPolicy {
	return RetryPolicy{Timeout: s.Timeout, MaxRetries: s.Retries}
}
