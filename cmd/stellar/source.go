package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/internal/config"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/synth"
)

// Default file names inside data.dir when data.path is unset.
const (
	defaultWorkbook = "stellar.xlsx"
	defaultDatabase = "stellar.db"
)

func dataPath(c *config.Config, fallback string) string {
	if c.Data.Path != "" {
		return c.Data.Path
	}
	return filepath.Join(c.Data.Dir, fallback)
}

func newGenerator(c *config.Config) *synth.Generator {
	g := synth.New(c.Synth.Seed, c.Habitat.Areas, c.Rovers.FarmingSource, c.Rovers.RecyclingSource)
	g.HabitatRows = c.Synth.HabitatRows
	g.RoverRows = c.Synth.RoverRows
	return g
}

// openSource returns the configured table source and a release func.
func openSource(c *config.Config) (data.Source, func() error, error) {
	noop := func() error { return nil }
	switch c.Data.Driver {
	case "csv", "":
		return data.NewCSVSource(c.Data.Dir), noop, nil
	case "xlsx":
		return data.NewXLSXSource(dataPath(c, defaultWorkbook)), noop, nil
	case "sqlite":
		db, err := data.OpenSQLite(dataPath(c, defaultDatabase))
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case "synth":
		return newGenerator(c), noop, nil
	default:
		return nil, nil, eris.Errorf("unknown data driver %q", c.Data.Driver)
	}
}
