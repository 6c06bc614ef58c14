package pim

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/lutpim/isa"
	"github.com/sarchlab/lutpim/lut"
)

// Builder can create PIM devices.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	numCores int
	numRows  int
	catalog  *lut.Catalog
}

// NewBuilder returns a builder for a 4-core device with 1024 rows running at
// 1 GHz.
func NewBuilder() Builder {
	return Builder{
		freq:     1 * sim.GHz,
		numCores: 4,
		numRows:  1024,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the device.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithCores sets the number of LUT compute cores. Lowered programs address
// isa.LoweredCores cores, so fewer are not allowed.
func (b Builder) WithCores(n int) Builder {
	if n < isa.LoweredCores || n > 8 {
		panic(fmt.Sprintf("number of cores must be between %d and 8", isa.LoweredCores))
	}

	b.numCores = n

	return b
}

// WithRows sets the number of memory rows.
func (b Builder) WithRows(n int) Builder {
	if n < 1 {
		panic("need at least one row")
	}

	b.numRows = n

	return b
}

// WithCatalog sets where LUT contents are loaded from. The built-in catalog
// is used if none is given.
func (b Builder) WithCatalog(c *lut.Catalog) Builder {
	b.catalog = c
	return b
}

// Build creates a device.
func (b Builder) Build(name string) *Device {
	d := &Device{
		numRows: b.numRows,
		catalog: b.catalog,
	}

	if d.catalog == nil {
		d.catalog = lut.Default()
	}

	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)
	d.state = deviceState{
		Cores:  make([]coreState, b.numCores),
		Counts: make(map[string]int),
	}

	return d
}
