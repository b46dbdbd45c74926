// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/haul/internal/adapters/cas"
	_ "go.trai.ch/haul/internal/adapters/config"
	_ "go.trai.ch/haul/internal/adapters/digest"
	_ "go.trai.ch/haul/internal/adapters/httpfetch"
	_ "go.trai.ch/haul/internal/adapters/logger"
	_ "go.trai.ch/haul/internal/adapters/telemetry/progrock"
	// Register app nodes.
	_ "go.trai.ch/haul/internal/app"
)
