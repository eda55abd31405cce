// Package app wires together configuration, the NWIS client, the frame
// builder, and the local store into a single Deps struct that commands
// receive at runtime.
package app

import (
	"fmt"

	"github.com/gaugeworks/riverdata/internal/config"
	"github.com/gaugeworks/riverdata/internal/frame"
	"github.com/gaugeworks/riverdata/internal/nwis"
	"github.com/gaugeworks/riverdata/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// Store is opened lazily via RequireStore; commands that never touch the
// local database never open it.
type Deps struct {
	Config *config.Config
	Client *nwis.Client
	Store  *store.Store
}

// New builds a Deps from resolved config. The frame builder is always wired
// on the client; the CLI ships with the tabular facility present.
func New(cfg *config.Config) *Deps {
	client := nwis.NewClient(
		cfg.BaseURL,
		cfg.Timeout,
		cfg.Rate,
		cfg.Debug,
	)
	client.SetFrameBuilder(frame.New())
	return &Deps{
		Config: cfg,
		Client: client,
	}
}

// RequireStore opens the local database if it is not open yet.
func (d *Deps) RequireStore() error {
	if d.Store != nil {
		return nil
	}
	if d.Config.DBPath == "" {
		return fmt.Errorf("no database path configured (set db_path in config.json or %s)", config.EnvDBPath)
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return err
	}
	d.Store = s
	return nil
}

// Close releases any open resources.
func (d *Deps) Close() {
	if d.Store != nil {
		_ = d.Store.Close()
		d.Store = nil
	}
}
