package store

import (
	"fmt"
	"slices"
	"sync"
)

// DriverConfig selects and configures a KV driver.
type DriverConfig struct {
	// Driver is the registered driver name: sqlite, file, memory.
	Driver string

	// DatabaseFile is the sqlite DSN (file path or ":memory:").
	DatabaseFile string

	// DataDir is the directory used by the file driver.
	DataDir string
}

// DriverFactory creates a ready-to-use KV from cfg.
type DriverFactory func(cfg DriverConfig) (KV, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]DriverFactory)
)

// Register makes a driver available by name. Driver packages call it from
// init().
func Register(name string, factory DriverFactory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = factory
}

// Open creates the KV named by cfg.Driver.
func Open(cfg DriverConfig) (KV, error) {
	driversMu.RLock()
	factory, ok := drivers[cfg.Driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("store: unknown driver %q (available: %v)", cfg.Driver, AvailableDrivers())
	}
	return factory(cfg)
}

// AvailableDrivers returns the sorted names of registered drivers.
func AvailableDrivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
