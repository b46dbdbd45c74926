package config

import "time"

// Haulfile represents the structure of the haul.yaml configuration file.
// Every field except Version can be overridden by a HAUL_* variable
// (HAUL_OUTPUT, HAUL_STRICT_RENAME, HAUL_URLS, ...).
type Haulfile struct {
	Version      string        `yaml:"version" ignored:"true" validate:"omitempty,oneof=1"`
	Output       string        `yaml:"output" validate:"required"`
	Workers      int           `yaml:"workers" validate:"gte=1,lte=1024"`
	Jobs         int           `yaml:"jobs" validate:"gte=1,lte=64"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	Retries      int           `yaml:"retries" validate:"gte=1"`
	Digest       string        `yaml:"digest" validate:"oneof=sha1 xxhash"`
	StrictRename bool          `yaml:"strictRename" split_words:"true"`
	LogLevel     string        `yaml:"logLevel" split_words:"true" validate:"oneof=debug info warn warning error"`
	URLs         []string      `yaml:"urls" validate:"dive,fetch_url"`
}
