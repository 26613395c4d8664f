package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/railsim/internal/payload"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Post("/v1/shortest-paths", ShortestPaths)
	app.Post("/v1/simulate", Simulate)
	app.Post("/v1/optimize", Optimize)
	return app
}

func straightLineBody() graphRequest {
	return graphRequest{
		Graph: payload.GraphPayload{
			Nodes: []string{"A", "B", "C"},
			Edges: []payload.EdgePayload{
				{ID: "ab", Source: "A", Target: "B", Weight: 4, Type: payload.EdgeTrack},
				{ID: "bc", Source: "B", Target: "C", Weight: 4, Type: payload.EdgeTrack},
			},
		},
		Routes: []payload.RoutePayload{
			{ID: "R1", Name: "Line 1", Nodes: []string{"A", "B", "C"}, Edges: []string{"ab", "bc"}},
		},
	}
}

func doRequest(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	if len(respBody) > 0 {
		require.NoError(t, json.Unmarshal(respBody, &out))
	}
	return resp.StatusCode, out
}

func TestShortestPathsReturnsPaths(t *testing.T) {
	app := newTestApp()
	req := shortestPathsRequest{graphRequest: straightLineBody(), Source: "A", Target: "C", K: 2}

	status, out := doRequest(t, app, "/v1/shortest-paths", req)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, out["paths"])
}

func TestShortestPathsRejectsUnknownSource(t *testing.T) {
	app := newTestApp()
	req := shortestPathsRequest{graphRequest: straightLineBody(), Source: "ghost", Target: "C"}

	status, out := doRequest(t, app, "/v1/shortest-paths", req)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotEmpty(t, out["error"])
}

func TestSimulateReturnsResults(t *testing.T) {
	app := newTestApp()
	req := simulateRequest{graphRequest: straightLineBody(), Frequency: 3, Iterations: 20}

	status, out := doRequest(t, app, "/v1/simulate", req)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, out, "train_positions")
	assert.Contains(t, out, "train_to_route")
	assert.Contains(t, out, "station_statistics")
}

func TestOptimizeReturnsFrequencies(t *testing.T) {
	app := newTestApp()
	req := optimizeRequest{graphRequest: straightLineBody(), Iterations: 24, Granularity: 12}

	status, out := doRequest(t, app, "/v1/optimize", req)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, out, "frequencies")
}
