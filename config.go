package satswarm

import (
	"github.com/go-viper/mapstructure/v2"
)

// TopologyConfig names a mesh shape and its dimensions (spec §6).
type TopologyConfig struct {
	Kind string `mapstructure:"kind"`
	Rows int    `mapstructure:"rows"`
	Cols int    `mapstructure:"cols"`
}

// ArchitectureDescription is the full set of tunable parameters for one
// simulation run, decoded from a generic config map (JSON/YAML/flags) rather
// than a bespoke flag-by-flag struct, so the same shape can be loaded from a
// config file or built programmatically by tests.
type ArchitectureDescription struct {
	Topology        TopologyConfig `mapstructure:"topology"`
	DecisionDelay   Time           `mapstructure:"decision_delay"`
	ForkDelay       Time           `mapstructure:"fork_delay"`
	ClausesPerEval  int            `mapstructure:"clauses_per_eval"`
	CyclesPerEval   Time           `mapstructure:"cycles_per_eval"`
	WatchdogCycles  Time           `mapstructure:"watchdog_cycles"`
}

// DecodeArchitecture decodes raw (as loaded from JSON/YAML into a generic
// map) into an ArchitectureDescription, applying the defaults a bare-bones
// config omits: clauses_per_eval and cycles_per_eval default to 1 (one
// clause scanned per cycle), decision_delay and fork_delay default to 0.
func DecodeArchitecture(raw map[string]interface{}) (*ArchitectureDescription, error) {
	desc := &ArchitectureDescription{ClausesPerEval: 1, CyclesPerEval: 1}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           desc,
	})
	if err != nil {
		return nil, inputErrorf("building config decoder: %s", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, inputErrorf("decoding architecture description: %s", err)
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

func (d *ArchitectureDescription) validate() error {
	var errs error
	if d.ClausesPerEval <= 0 {
		errs = appendError(errs, inputErrorf("clauses_per_eval must be positive, got %d", d.ClausesPerEval))
	}
	if d.CyclesPerEval <= 0 {
		errs = appendError(errs, inputErrorf("cycles_per_eval must be positive, got %d", d.CyclesPerEval))
	}
	switch d.Topology.Kind {
	case "grid", "torus":
		if d.Topology.Rows <= 0 || d.Topology.Cols <= 0 {
			errs = appendError(errs, inputErrorf("%s topology requires positive rows and cols, got %dx%d",
				d.Topology.Kind, d.Topology.Rows, d.Topology.Cols))
		}
	case "dense":
		if d.Topology.Cols <= 0 {
			errs = appendError(errs, inputErrorf("dense topology requires a positive node count (cols), got %d", d.Topology.Cols))
		}
	case "":
		errs = appendError(errs, inputErrorf("topology.kind is required"))
	default:
		errs = appendError(errs, inputErrorf("unknown topology kind %q; expected grid, torus, or dense", d.Topology.Kind))
	}
	return errs
}

// BuildMesh constructs the Mesh Arena described by d.Topology.
func (d *ArchitectureDescription) BuildMesh() (*Mesh, error) {
	switch d.Topology.Kind {
	case "grid":
		return NewGrid(d.Topology.Rows, d.Topology.Cols)
	case "torus":
		return NewTorus(d.Topology.Rows, d.Topology.Cols)
	case "dense":
		return NewDense(d.Topology.Cols)
	default:
		return nil, inputErrorf("unknown topology kind %q", d.Topology.Kind)
	}
}

// Costs projects the throughput knobs into the Costs bundle consumed by Node
// and ReplayNode.
func (d *ArchitectureDescription) Costs() Costs {
	return Costs{
		ClausesPerEval: d.ClausesPerEval,
		CyclesPerEval:  d.CyclesPerEval,
		DecisionDelay:  d.DecisionDelay,
	}
}
