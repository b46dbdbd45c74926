package ports

import "go.trai.ch/haul/internal/core/domain"

// ConfigLoader defines the interface for loading the haul configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at path (or the default one in cwd when
	// path is empty), applies environment overrides and returns the validated settings.
	Load(cwd, path string) (*domain.Settings, error)
}
