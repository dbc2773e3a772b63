package mcpgo

import "time"

// HTTP server constants
const (
	HTTPReadHeaderTimeout = 10 * time.Second
	HTTPIdleTimeout       = 60 * time.Second
	HTTPShutdownTimeout   = 30 * time.Second

	// healthCacheDuration bounds how often /health reaches the plan store
	healthCacheDuration = 10 * time.Second
)
