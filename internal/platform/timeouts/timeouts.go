// Package timeouts defines shared timeout constants used by datastore
// commands. Centralizing these values keeps them discoverable.
package timeouts

import "time"

// TelemetryShutdown caps how long pending spans may take to export on exit.
const TelemetryShutdown = 5 * time.Second

// Flush limits the teardown flush of dirty cache entries once the process
// has been asked to stop, so a wedged store cannot hang shutdown forever.
const Flush = 10 * time.Second
