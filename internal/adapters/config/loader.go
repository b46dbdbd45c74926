// Package config provides the configuration loader for haul.
package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.trai.ch/haul/internal/core/domain"
	"go.trai.ch/haul/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader on haul.yaml, .env and HAUL_* variables.
type Loader struct {
	Logger   ports.Logger
	validate *validator.Validate
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) (*Loader, error) {
	v := validator.New()
	if err := v.RegisterValidation("fetch_url", validateFetchURL); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to register validation"), "tag", "fetch_url")
	}
	return &Loader{Logger: logger, validate: v}, nil
}

// Load resolves the settings. Precedence, lowest first: defaults, the
// configuration file, .env in cwd, the process environment.
// With an empty path haul.yaml is searched from cwd upwards and may be absent.
func (l *Loader) Load(cwd, path string) (*domain.Settings, error) {
	file := defaults()

	configPath, err := l.findConfiguration(cwd, path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := readHaulfile(configPath, &file); err != nil {
			return nil, err
		}
		l.Logger.Info("loaded configuration from " + configPath)
	}

	if err := loadDotenv(filepath.Join(cwd, domain.EnvFileName)); err != nil {
		return nil, err
	}
	if err := envconfig.Process(domain.EnvPrefix, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "failed to process environment overrides"), "cause", err.Error())
	}

	if err := l.validate.Struct(&file); err != nil {
		return nil, validationError(err, configPath)
	}

	settings := file.toSettings()
	return &settings, nil
}

func (l *Loader) findConfiguration(cwd, path string) (string, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			path = filepath.Join(cwd, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "failed to read config file"), "path", path)
		}
		return path, nil
	}

	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", nil
		}
		currentDir = parentDir
	}
}

func readHaulfile(path string, out *Haulfile) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse config file"), "path", path)
	}
	return nil
}

// loadDotenv exports the variables of path that are not already set.
func loadDotenv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to load env file"), "path", path)
	}
	return nil
}

func validationError(err error, path string) error {
	wrapped := zerr.Wrap(domain.ErrInvalidConfig, "configuration is invalid")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		wrapped = zerr.With(wrapped, "field", verrs[0].Namespace())
		wrapped = zerr.With(wrapped, "rule", verrs[0].Tag())
	}
	if path != "" {
		wrapped = zerr.With(wrapped, "path", path)
	}
	return wrapped
}

func validateFetchURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func defaults() Haulfile {
	d := domain.DefaultSettings()
	return Haulfile{
		Output:       d.Output,
		Workers:      d.Workers,
		Jobs:         d.Jobs,
		Timeout:      d.Timeout,
		Retries:      d.Retries,
		Digest:       d.Digest,
		StrictRename: d.StrictRename,
		LogLevel:     "info",
	}
}

func (h Haulfile) toSettings() domain.Settings {
	return domain.Settings{
		Output:       h.Output,
		Workers:      h.Workers,
		Jobs:         h.Jobs,
		Timeout:      h.Timeout,
		Retries:      h.Retries,
		Digest:       h.Digest,
		StrictRename: h.StrictRename,
		LogLevel:     domain.ParseLogLevel(h.LogLevel),
		URLs:         h.URLs,
	}
}
