// Package httpapi exposes the three external entry points of spec §6 over
// HTTP, generalizing the teacher's internal/api (fiber handlers returning
// fiber.Map JSON, 400 on validation errors) from GTFS route-search to the
// rail-transit simulator's shortest-paths/simulate/optimize surface.
package httpapi

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlab/railsim/internal/cache"
	"github.com/transitlab/railsim/internal/config"
	"github.com/transitlab/railsim/internal/obslog"
	"github.com/transitlab/railsim/internal/optimizer"
	"github.com/transitlab/railsim/internal/payload"
	"github.com/transitlab/railsim/internal/planner"
	"github.com/transitlab/railsim/internal/railmodel"
	"github.com/transitlab/railsim/internal/searchmap"
	"github.com/transitlab/railsim/internal/simulator"
)

var logger = obslog.New("httpapi")

// graphRequest is the request body shared by all three handlers: the graph
// and route payloads of spec §6.
type graphRequest struct {
	Graph  payload.GraphPayload   `json:"graph"`
	Routes []payload.RoutePayload `json:"routes"`
}

func (r graphRequest) build() (*railmodel.Graph, []*railmodel.Route, map[string]int, error) {
	g, trackIDs, err := payload.Graph(r.Graph)
	if err != nil {
		return nil, nil, nil, err
	}
	routes, err := payload.Routes(g, trackIDs, r.Routes)
	if err != nil {
		return nil, nil, nil, err
	}
	return g, routes, trackIDs, nil
}

func validationErrorResponse(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// shortestPathsRequest is graphRequest plus the planner query itself.
type shortestPathsRequest struct {
	graphRequest
	Source string `json:"source"`
	Target string `json:"target"`
	K      int    `json:"k"`
}

// ShortestPaths implements spec §6's shortest_path entry point: "prints
// top-3 paths (diagnostic; no return value contract)" — over HTTP this
// becomes a JSON array of up to k (default 3) candidate paths.
func ShortestPaths(c *fiber.Ctx) error {
	var req shortestPathsRequest
	if err := c.BodyParser(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	g, routes, _, err := req.build()
	if err != nil {
		return validationErrorResponse(c, err)
	}

	source, ok := g.StationID(req.Source)
	if !ok {
		return validationErrorResponse(c, &railmodel.ValidationError{Reason: "unknown source node " + req.Source})
	}
	target, ok := g.StationID(req.Target)
	if !ok {
		return validationErrorResponse(c, &railmodel.ValidationError{Reason: "unknown target node " + req.Target})
	}

	k := req.K
	if k <= 0 {
		k = 3
	}

	ctx := c.Context()
	fingerprint := routeSetFingerprint(routes)
	cacheKey := cache.PathSetKey(source, target, k, fingerprint)

	paths, hit, _ := cache.GetPathSet(ctx, cacheKey)
	if !hit {
		m := searchmap.Build(g, routes)
		paths = planner.KShortest(m, source, target, k)
		if err := cache.SetPathSet(ctx, cacheKey, paths, 10*time.Minute); err != nil {
			logger.Debug("path set cache write skipped", "error", err)
		}
	}
	logger.Info("shortest-paths computed", "source", req.Source, "target", req.Target, "found", len(paths), "cache_hit", hit)

	return c.JSON(fiber.Map{"paths": renderPaths(g, paths)})
}

// routeSetFingerprint reuses cache.FrequencyFingerprint's hashing scheme to
// key the path-set cache on exactly which routes serve the search-map, since
// a k-shortest-path query has no frequency table of its own to fingerprint.
func routeSetFingerprint(routes []*railmodel.Route) string {
	ids := make([][]int, len(routes))
	for i, r := range routes {
		ids[i] = []int{len(r.Stations), r.Offset}
		for _, s := range r.Stations {
			ids[i] = append(ids[i], s)
		}
	}
	return cache.FrequencyFingerprint(ids)
}

// simulateRequest is graphRequest plus the fixed-cadence dispatch frequency.
type simulateRequest struct {
	graphRequest
	Frequency  int `json:"frequency"`
	Iterations int `json:"iterations"`
}

// Simulate implements spec §6's run_simulation entry point.
func Simulate(c *fiber.Ctx) error {
	var req simulateRequest
	if err := c.BodyParser(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	g, routes, trackIDs, err := req.build()
	if err != nil {
		return validationErrorResponse(c, err)
	}

	sim, err := simulator.New(g, routes)
	if err != nil {
		return validationErrorResponse(c, err)
	}
	sim.WithStrictInvariants(config.Load().StrictInvariants)

	iterations := req.Iterations
	if iterations <= 0 {
		iterations = sim.Constants.SchedulePeriod
	}

	results := sim.Run(iterations, req.Frequency)
	logger.Info("simulation complete", "iterations", iterations, "frequency", req.Frequency, "trains", len(results.TrainToRoute))

	return c.JSON(renderResults(g, trackIDs, results))
}

// optimizeRequest is graphRequest plus the granularity governing the
// optimizer's frequency table resolution.
type optimizeRequest struct {
	graphRequest
	Iterations  int `json:"iterations"`
	Granularity int `json:"granularity"`
	TickBudget  int `json:"tick_budget"`
}

// Optimize implements spec §6's run_optimize entry point: it synthesizes its
// own demand set internally (spec §4.7/§4.9's RNG-seeded synthesis).
func Optimize(c *fiber.Ctx) error {
	var req optimizeRequest
	if err := c.BodyParser(&req); err != nil {
		return validationErrorResponse(c, err)
	}

	g, routes, trackIDs, err := req.build()
	if err != nil {
		return validationErrorResponse(c, err)
	}

	cfg := config.Load()
	iterations := req.Iterations
	granularity := req.Granularity
	constants := railmodel.DefaultConstants()
	if iterations <= 0 {
		iterations = constants.SchedulePeriod
	}
	if granularity <= 0 {
		granularity = constants.ScheduleGranularity
	}
	tickBudget := req.TickBudget
	if tickBudget <= 0 {
		tickBudget = cfg.SolverTickBudget
	}

	trips := optimizer.SynthesizeDemand(g, routes, constants)
	result := optimizer.Run(g, routes, trips, iterations, granularity, tickBudget, cfg.StrictInvariants)
	logger.Info("optimize complete", "trips", len(trips), "epochs", len(result.Frequencies))

	resp := fiber.Map{"frequencies": result.Frequencies}
	if result.Results != nil {
		resp["results"] = renderResults(g, trackIDs, result.Results)
	}
	return c.JSON(resp)
}

// wireSegment is one planner.Segment rendered with wire node IDs for the
// shortest-paths diagnostic response; renderPaths builds them.
type wireSegment struct {
	StartNode string `json:"start_node"`
	EndNode   string `json:"end_node"`
	Cost      float64 `json:"cost"`
}

func renderPaths(g *railmodel.Graph, paths []planner.Path) [][]wireSegment {
	out := make([][]wireSegment, 0, len(paths))
	for _, p := range paths {
		var segs []wireSegment
		for _, seg := range p {
			segs = append(segs, wireSegment{
				StartNode: g.Stations[seg.StartStation].Name,
				EndNode:   g.Stations[seg.EndStation].Name,
				Cost:      seg.Cost,
			})
		}
		out = append(out, segs)
	}
	return out
}

// wireTrainPosition mirrors spec §6's result payload shape for one tick's
// train list entry.
type wireTrainPosition struct {
	ID                [2]int  `json:"id"`
	CurrSection       string  `json:"curr_section"`
	Pos               float64 `json:"pos"`
	DistanceTravelled float64 `json:"distance_travelled"`
}

func renderResults(g *railmodel.Graph, trackIDs map[string]int, results *simulator.SimulationResults) fiber.Map {
	wireTrackID := make(map[int]string, len(trackIDs))
	for wire, id := range trackIDs {
		wireTrackID[id] = wire
	}

	sectionWireID := func(sec railmodel.Section) string {
		if sec.Kind == railmodel.SectionStation {
			return g.Stations[sec.ID].Name
		}
		return wireTrackID[sec.ID]
	}

	positions := make(map[int][]wireTrainPosition, len(results.TrainPositions))
	for tick, tps := range results.TrainPositions {
		rendered := make([]wireTrainPosition, 0, len(tps))
		for _, tp := range tps {
			rendered = append(rendered, wireTrainPosition{
				ID:                [2]int{tp.ID.RouteIdx, tp.ID.Count},
				CurrSection:       sectionWireID(tp.Section),
				Pos:               tp.Pos,
				DistanceTravelled: tp.DistanceTravelled,
			})
		}
		positions[tick] = rendered
	}

	trainToRoute := make(map[string]string, len(results.TrainToRoute))
	for id, routeID := range results.TrainToRoute {
		trainToRoute[fmt.Sprintf("%d_%d", id.RouteIdx, id.Count)] = routeID
	}

	stats := make(map[string]fiber.Map, len(results.StationStatistics))
	for stationID, s := range results.StationStatistics {
		perRoute := make(map[int]fiber.Map, len(s.PerRoute))
		for routeIdx, ws := range s.PerRoute {
			perRoute[routeIdx] = fiber.Map{"min_wait": ws.Min, "max_wait": ws.Max, "average_wait": ws.Mean}
		}
		entry := fiber.Map{"arrival_times": perRoute}
		if s.Overall != nil {
			entry["overall_arrival_times"] = fiber.Map{
				"min_wait": s.Overall.Min, "max_wait": s.Overall.Max, "average_wait": s.Overall.Mean,
			}
		}
		stats[g.Stations[stationID].Name] = entry
	}

	return fiber.Map{
		"train_positions":   positions,
		"train_to_route":    trainToRoute,
		"station_statistics": stats,
	}
}
