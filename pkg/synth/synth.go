// Package synth generates the telemetry datasets the pipeline trains on:
// one habitat table per candidate area and the farming and recycling rover
// logs. Every table is derived from the generator seed and the source name,
// so the same seed always reproduces the same data.
package synth

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
)

// TimeLayout is the timestamp format of generated Time columns.
const TimeLayout = "2006-01-02 15:04:05"

// Category values of the farming rover log.
var (
	Crops             = []string{"Wheat", "Rice", "Corn", "Soybean", "Potato"}
	SoilConditions    = []string{"Sandy", "Clay", "Loamy", "Peaty", "Saline"}
	WeatherConditions = []string{"Sunny", "Cloudy", "Rainy", "Stormy", "Windy"}
)

// Generator produces seeded tables and serves them as a data.Source.
type Generator struct {
	Seed            int64
	HabitatRows     int // half-hour steps per area
	RoverRows       int // six-hour steps per rover
	Start           time.Time
	Areas           []string
	FarmingSource   string
	RecyclingSource string

	mu    sync.Mutex
	cache map[string]*data.Table
}

// New returns a generator with one day of habitat data per area and one year
// of rover data.
func New(seed int64, areas []string, farming, recycling string) *Generator {
	return &Generator{
		Seed:            seed,
		HabitatRows:     48,
		RoverRows:       365 * 4,
		Start:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Areas:           areas,
		FarmingSource:   farming,
		RecyclingSource: recycling,
	}
}

// Names lists every source the generator can produce.
func (g *Generator) Names() []string {
	return append(slices.Clone(g.Areas), g.FarmingSource, g.RecyclingSource)
}

// rand returns the source's own random stream.
func (g *Generator) rand(name string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(g.Seed ^ int64(h.Sum64())))
}

// Load implements data.Source. Unknown names fail like a missing file.
func (g *Generator) Load(ctx context.Context, name string) (*data.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, &data.LoadError{Source: name, Err: err}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.cache[name]; ok {
		return t, nil
	}

	var t *data.Table
	switch {
	case name == g.FarmingSource:
		t = g.Farming(name)
	case name == g.RecyclingSource:
		t = g.Recycling(name)
	case slices.Contains(g.Areas, name):
		t = g.Habitat(name)
	default:
		return nil, &data.LoadError{Source: name, Err: os.ErrNotExist}
	}
	if g.cache == nil {
		g.cache = make(map[string]*data.Table)
	}
	g.cache[name] = t
	return t, nil
}

func uniform(rnd *rand.Rand, lo, hi float64) float64 { return lo + rnd.Float64()*(hi-lo) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// diurnal peaks at noon: 10 degrees above base, falling to 0 at midnight.
func diurnal(t time.Time) float64 {
	hour := float64(t.Hour()) + float64(t.Minute())/60
	return 10 * (1 - math.Abs(12-hour)/12)
}

// Habitat generates the environmental log of one area.
func (g *Generator) Habitat(name string) *data.Table {
	rnd := g.rand(name)
	t := &data.Table{Name: name, Header: schema.Habitat.Names()}
	for i := range g.HabitatRows {
		at := g.Start.Add(time.Duration(i) * 30 * time.Minute)
		t.Rows = append(t.Rows, []string{
			num(uniform(rnd, -10, 30) + diurnal(at)),
			num(uniform(rnd, 10, 30)),
			num(uniform(rnd, 0, 10)),
			num(uniform(rnd, 0, 100)),
			num(uniform(rnd, 0, 10)),
			num(uniform(rnd, 0, 10)),
			num(uniform(rnd, 0, 10)),
			num(uniform(rnd, 0, 10)),
			num(uniform(rnd, 0, 1500)),
			num(uniform(rnd, 0.5, 1.5)),
		})
	}
	return t
}

// CropHealth scores a crop from its temperature and soil quality. Health is
// best at 25 degrees and when soil quality matches a random optimum.
func CropHealth(rnd *rand.Rand, temperature, soilQuality float64) float64 {
	return 100 - math.Abs(soilQuality-uniform(rnd, 3, 10))*5 - math.Abs(temperature-25)*2 + uniform(rnd, 0, 20)
}

// Farming generates the farming rover log.
func (g *Generator) Farming(name string) *data.Table {
	rnd := g.rand(name)
	t := &data.Table{Name: name, Header: append([]string{schema.Time}, schema.Farming.Required()...)}
	for i := range g.RoverRows {
		at := g.Start.Add(time.Duration(i) * 6 * time.Hour)
		temp := uniform(rnd, 15, 35)
		precip := uniform(rnd, 0, 100)
		sun := uniform(rnd, 3, 12)
		soil := uniform(rnd, 3, 10)
		crop := Crops[rnd.Intn(len(Crops))]
		cond := SoilConditions[rnd.Intn(len(SoilConditions))]
		weather := WeatherConditions[rnd.Intn(len(WeatherConditions))]
		t.Rows = append(t.Rows, []string{
			at.Format(TimeLayout),
			num(temp), num(precip), num(sun), num(soil),
			crop, cond, weather,
			num(CropHealth(rnd, temp, soil)),
		})
	}
	return t
}

// Recycling generates the recycling rover log.
func (g *Generator) Recycling(name string) *data.Table {
	rnd := g.rand(name)
	t := &data.Table{Name: name, Header: append([]string{schema.Time}, schema.Recycling.Required()...)}
	for i := range g.RoverRows {
		at := g.Start.Add(time.Duration(i) * 6 * time.Hour)
		t.Rows = append(t.Rows, []string{
			at.Format(TimeLayout),
			num(uniform(rnd, 30, 100)),
			num(uniform(rnd, 0, 100)),
			num(uniform(rnd, 20, 100)),
			num(uniform(rnd, 0, 100)),
			num(uniform(rnd, 0, 100)),
		})
	}
	return t
}
