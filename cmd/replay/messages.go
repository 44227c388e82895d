package main

import "github.com/rxtech-lab/stock-replay/internal/catalog"

// CatalogLoadedMsg carries the catalog once every symbol has been fetched.
type CatalogLoadedMsg struct {
	Catalog *catalog.Catalog
}

// LoadFailedMsg indicates that no catalog could be built.
type LoadFailedMsg struct {
	Err error
}

// TickMsg advances playback by one day. Ticks from an older generation are dropped.
type TickMsg struct {
	Generation int
}
