package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/homeplan/scheduler/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutingServerAnswersRouteRequests(t *testing.T) {
	in := strings.NewReader(`{"command":"route","from_lat":51.50,"from_lon":-0.10,"to_lat":51.51,"to_lon":-0.11}
{"command":"shutdown"}
`)
	var out bytes.Buffer

	require.NoError(t, runRoutingServer(in, &out, routing.HaversineEngine{}))

	var resp routingResponse
	require.NoError(t, json.NewDecoder(&out).Decode(&resp))
	require.Empty(t, resp.Error)
	assert.Greater(t, resp.DurationSeconds, int64(0))
}

func TestRoutingServerRejectsUnknownCommand(t *testing.T) {
	in := strings.NewReader(`{"command":"teleport"}
{"command":"shutdown"}
`)
	var out bytes.Buffer

	require.NoError(t, runRoutingServer(in, &out, routing.HaversineEngine{}))

	var resp routingResponse
	require.NoError(t, json.NewDecoder(&out).Decode(&resp))
	assert.NotEmpty(t, resp.Error, "expected an error response for an unknown command")
}
