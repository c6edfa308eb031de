// Command satswarm runs the SatSwarm cycle-accurate simulator over a
// directory of DIMACS CNF instances, either by driving the direct per-node
// DPLL simulation (C4/C6) or by replaying a pre-recorded reference trace
// across the mesh (C7), and logs one CSV row per instance.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tatestaples/satswarm"
	"github.com/tatestaples/satswarm/internal/oracle"
	"github.com/tatestaples/satswarm/internal/randcnf"
	"github.com/tatestaples/satswarm/internal/resultlog"
)

func main() {
	var (
		mode           = flag.String("mode", "direct", "simulation mode: direct, replay, gen-trace, or gen-random")
		testPath       = flag.String("tests", "", "directory of DIMACS .cnf files to run (required)")
		topologyKind   = flag.String("topology", "grid", "mesh topology: grid, torus, or dense")
		nodes          = flag.Int("nodes", 4, "node count (torus/grid round up to the smallest square side*side holding it; dense uses this directly)")
		clausesPerEval = flag.Int("clauses-per-eval", 1, "clauses evaluated per scan iteration")
		cyclesPerEval  = flag.Uint64("cycles-per-eval", 1, "cycles charged per scan iteration (one batch of clauses-per-eval clauses)")
		decisionDelay  = flag.Uint64("decision-delay", 0, "replay-mode fixed per-decision latency")
		forkDelay      = flag.Uint64("fork-delay", 1, "cycles charged to deliver a fork")
		watchdog       = flag.Uint64("watchdog", 0, "abort a run after this many cycles (0 disables)")
		varFilter      = flag.Int("vars", 0, "skip instances whose variable count does not match (0 disables)")
		logLevel       = flag.String("log-level", "info", "trace, debug, info, warn, or error")
		out            = flag.String("out", "", "CSV result log path (defaults to stdout)")
		genCount       = flag.Int("gen-count", 10, "gen-random: number of instances to write")
		genVars        = flag.Int("gen-vars", 20, "gen-random: variables per instance")
		genClauses     = flag.Int("gen-clauses", 91, "gen-random: clauses per instance")
		genSeed        = flag.Int64("gen-seed", 1, "gen-random: base RNG seed (incremented per instance)")
		genUnsat       = flag.Bool("gen-unsat", false, "gen-random: plant a contradictory core instead of a satisfiable one")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `satswarm: cycle-accurate simulator for a mesh of DPLL solver nodes.

Usage:

  satswarm -tests <dir> [flags]

Modes:
  direct      run the per-node DPLL simulation directly (C4/C6)
  replay      record one reference trace per instance, then replay it (C7)
  gen-trace   write each instance's reference trace to <name>.trace next to it
  gen-random  write randomly generated DIMACS fixtures into -tests, then exit

`)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *mode == "gen-random" {
		if *testPath == "" {
			fmt.Fprintln(os.Stderr, "satswarm: -tests is required")
			flag.Usage()
			os.Exit(2)
		}
		if err := genRandomFixtures(*testPath, *genCount, *genVars, *genClauses, *genSeed, *genUnsat); err != nil {
			log.Fatalf("satswarm: %s", err)
		}
		return
	}

	if *testPath == "" {
		fmt.Fprintln(os.Stderr, "satswarm: -tests is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := satswarm.NewLogger("satswarm", *logLevel)

	rows, err := filepath.Glob(filepath.Join(*testPath, "*.cnf"))
	if err != nil {
		log.Fatalf("satswarm: globbing %s: %s", *testPath, err)
	}
	if len(rows) == 0 {
		log.Fatalf("satswarm: no .cnf files found under %s", *testPath)
	}

	dest := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("satswarm: creating %s: %s", *out, err)
		}
		defer f.Close()
		dest = f
	}
	writer := resultlog.NewWriter(dest, false)

	arch := architectureFromFlags(*topologyKind, *nodes, *clausesPerEval, satswarm.Time(*cyclesPerEval), satswarm.Time(*decisionDelay), satswarm.Time(*forkDelay), satswarm.Time(*watchdog))
	mesh, err := arch.BuildMesh()
	if err != nil {
		log.Fatalf("satswarm: %s", err)
	}

	for _, path := range rows {
		if err := runOne(*mode, path, arch, mesh, *varFilter, writer, logger); err != nil {
			var inputErr *satswarm.InputError
			if errors.As(err, &inputErr) {
				log.Fatalf("satswarm: %s: %s", path, err)
			}
			logger.Error("run failed", "path", path, "error", err)
		}
	}
}

// genRandomFixtures writes count randomly generated DIMACS CNF instances
// into dir, named rand-unsat-NNN.cnf or rand-sat-NNN.cnf to follow the
// file-name convention runOne passes to LoadClauseTable (names containing
// "unsat" are expected UNSAT; the CSV's expected result comes from the
// oracle, not from the name). Each
// instance uses a distinct seed (base+i) so a run is reproducible from the
// seed flag alone.
func genRandomFixtures(dir string, count, numVars, numClauses int, seed int64, unsat bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	kind := "sat"
	if unsat {
		kind = "unsat"
	}
	for i := 0; i < count; i++ {
		var clauses [][]int
		if unsat {
			clauses = randcnf.Unsatisfiable(seed+int64(i), numVars, numClauses)
		} else {
			clauses = randcnf.Satisfiable(seed+int64(i), numVars, numClauses)
		}
		path := filepath.Join(dir, fmt.Sprintf("rand-%s-%03d.cnf", kind, i))
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = satswarm.WriteDIMACS(f, clauses)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func architectureFromFlags(kind string, nodes, clausesPerEval int, cyclesPerEval, decisionDelay, forkDelay, watchdog satswarm.Time) *satswarm.ArchitectureDescription {
	side := 1
	for side*side < nodes {
		side++
	}
	topo := satswarm.TopologyConfig{Kind: kind, Rows: side, Cols: side}
	if kind == "dense" {
		topo = satswarm.TopologyConfig{Kind: kind, Rows: 1, Cols: nodes}
	}
	return &satswarm.ArchitectureDescription{
		Topology:       topo,
		DecisionDelay:  decisionDelay,
		ForkDelay:      forkDelay,
		ClausesPerEval: clausesPerEval,
		CyclesPerEval:  cyclesPerEval,
		WatchdogCycles: watchdog,
	}
}

func runOne(mode, path string, arch *satswarm.ArchitectureDescription, mesh *satswarm.Mesh, varFilter int, writer *resultlog.Writer, logger interface {
	Info(string, ...interface{})
}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	expectedUnsat := strings.Contains(filepath.Base(path), "unsat")
	table, _, err := satswarm.LoadClauseTable(f, expectedUnsat)
	if err != nil {
		return err
	}
	if varFilter > 0 && table.NumberOfVariables() != varFilter {
		return nil
	}

	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	raw, err := satswarm.ParseDIMACS(f)
	if err != nil {
		return err
	}
	oracleResult := oracle.Solve(table.NumberOfVariables(), raw)

	costs := arch.Costs()
	var result satswarm.RunResult

	switch mode {
	case "direct":
		sched := satswarm.NewScheduler(mesh, table, costs, arch.ForkDelay, arch.WatchdogCycles)
		result, err = sched.Run()
	case "replay":
		trace, _, derr := satswarm.RunReferenceDPLL(table.CloneForNode(), nil)
		if derr != nil {
			return derr
		}
		sched := satswarm.NewReplayScheduler(mesh, table, trace, costs, arch.ForkDelay, arch.WatchdogCycles)
		result, err = sched.Run()
	case "gen-trace":
		trace, _, derr := satswarm.RunReferenceDPLL(table.CloneForNode(), nil)
		if derr != nil {
			return derr
		}
		out, cerr := os.Create(path + ".trace")
		if cerr != nil {
			return cerr
		}
		defer out.Close()
		return trace.Encode(out)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	logger.Info("result", "path", path, "sat", result.Satisfiable, "cycles", result.SimulatedCycles)
	return writer.Write(resultlog.Row{
		TestName:        filepath.Base(path),
		NumVars:         table.NumberOfVariables(),
		NumClauses:      table.NumberOfClauses(),
		Topology:        arch.Topology.Kind,
		DecisionDelay:   uint64(arch.DecisionDelay),
		ForkDelay:       uint64(arch.ForkDelay),
		ClausesPerEval:  arch.ClausesPerEval,
		CyclesPerEval:   uint64(arch.CyclesPerEval),
		SimulatedResult: result.Satisfiable,
		SimulatedCycles: uint64(result.SimulatedCycles),
		CyclesBusy:      uint64(result.CyclesBusy),
		CyclesIdle:      uint64(result.CyclesIdle),
		ExpectedResult:  oracleResult.Satisfiable,
		OracleElapsedNs: oracleResult.Elapsed.Nanoseconds(),
	})
}
