package realtime

import "time"

// Transport limits. Inbound frames are control-only, so the read limit
// stays small; pushes are bounded per client by the send queue.
const (
	defaultSendBuffer = 64

	readLimitBytes = 64 * 1024

	writeTimeout = 10 * time.Second

	heartbeatInterval    = 25 * time.Second
	heartbeatTimeout     = 10 * time.Second
	heartbeatMaxFailures = 3

	// Inbound frames are ignored by the protocol; the limiter only
	// guards against clients flooding the read loop.
	rateLimitFrames = 60
	rateLimitWindow = 10 * time.Second
)
