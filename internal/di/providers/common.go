package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of servers.
	shutdownTimeout = 15 * time.Second
)
