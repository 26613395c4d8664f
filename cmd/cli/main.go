// Command cli is the file-based counterpart to cmd/server: it reads the
// same graph/route JSON payload from disk and invokes one of the three
// entry points of spec §6 directly, for the out-of-process "hands graph,
// routes, and a dispatch period to the core" collaborator role (spec §1)
// that doesn't want an HTTP round trip.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/transitlab/railsim/internal/config"
	"github.com/transitlab/railsim/internal/obslog"
	"github.com/transitlab/railsim/internal/optimizer"
	"github.com/transitlab/railsim/internal/payload"
	"github.com/transitlab/railsim/internal/planner"
	"github.com/transitlab/railsim/internal/railmodel"
	"github.com/transitlab/railsim/internal/searchmap"
	"github.com/transitlab/railsim/internal/simulator"
)

var log = obslog.New("cli")

type fileBody struct {
	Graph   payload.GraphPayload   `json:"graph"`
	Routes  []payload.RoutePayload `json:"routes"`
	Source  string                 `json:"source"`
	Target  string                 `json:"target"`
	K       int                    `json:"k"`
	Frequency int                  `json:"frequency"`
	Iterations int                 `json:"iterations"`
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: cli <shortest-paths|simulate|optimize> <payload.json>")
		os.Exit(2)
	}
	command, path := os.Args[1], os.Args[2]

	data, err := os.ReadFile(path)
	if err != nil {
		log.Crit("failed to read payload file", "path", path, "error", err)
		os.Exit(1)
	}

	var body fileBody
	if err := json.Unmarshal(data, &body); err != nil {
		log.Crit("failed to parse payload file", "error", err)
		os.Exit(1)
	}

	g, trackIDs, err := payload.Graph(body.Graph)
	if err != nil {
		log.Crit("invalid graph payload", "error", err)
		os.Exit(1)
	}
	routes, err := payload.Routes(g, trackIDs, body.Routes)
	if err != nil {
		log.Crit("invalid route payload", "error", err)
		os.Exit(1)
	}

	cfg := config.Load()

	switch command {
	case "shortest-paths":
		runShortestPaths(g, routes, body)
	case "simulate":
		runSimulate(g, routes, body, cfg)
	case "optimize":
		runOptimize(g, routes, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		os.Exit(2)
	}
}

func runShortestPaths(g *railmodel.Graph, routes []*railmodel.Route, body fileBody) {
	source, ok := g.StationID(body.Source)
	if !ok {
		log.Crit("unknown source node", "source", body.Source)
		os.Exit(1)
	}
	target, ok := g.StationID(body.Target)
	if !ok {
		log.Crit("unknown target node", "target", body.Target)
		os.Exit(1)
	}
	k := body.K
	if k <= 0 {
		k = 3
	}

	m := searchmap.Build(g, routes)
	paths := planner.KShortest(m, source, target, k)
	for i, p := range paths {
		fmt.Printf("path %d (cost=%.2f):\n", i+1, totalCost(p))
		for _, seg := range p {
			fmt.Printf("  %s -> %s (cost %.2f)\n", g.Stations[seg.StartStation].Name, g.Stations[seg.EndStation].Name, seg.Cost)
		}
	}
}

func totalCost(p planner.Path) float64 {
	var sum float64
	for _, seg := range p {
		sum += seg.Cost
	}
	return sum
}

func runSimulate(g *railmodel.Graph, routes []*railmodel.Route, body fileBody, cfg config.Config) {
	sim, err := simulator.New(g, routes)
	if err != nil {
		log.Crit("failed to build simulator", "error", err)
		os.Exit(1)
	}
	sim.WithStrictInvariants(cfg.StrictInvariants)
	iterations := body.Iterations
	if iterations <= 0 {
		iterations = sim.Constants.SchedulePeriod
	}
	results := sim.Run(iterations, body.Frequency)
	printResults(results)
}

func runOptimize(g *railmodel.Graph, routes []*railmodel.Route, cfg config.Config) {
	constants := cfg.Constants
	trips := optimizer.SynthesizeDemand(g, routes, constants)
	result := optimizer.Run(g, routes, trips, constants.SchedulePeriod, constants.ScheduleGranularity, cfg.SolverTickBudget, cfg.StrictInvariants)
	fmt.Printf("frequencies: %v\n", result.Frequencies)
	if result.Results != nil {
		printResults(result.Results)
	}
}

func printResults(results *simulator.SimulationResults) {
	fmt.Printf("%d trains dispatched across %d recorded ticks\n", len(results.TrainToRoute), len(results.TrainPositions))
}
