package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/homeplan/scheduler/pkg/domain"
	"github.com/homeplan/scheduler/pkg/log"
	"github.com/homeplan/scheduler/pkg/routing"
)

// routingRequest is a single line of the stdin/stdout protocol spec.md §6
// describes: "route" asks for the travel duration between two locations,
// "shutdown" ends the loop cleanly.
type routingRequest struct {
	Command string  `json:"command"`
	FromLat float64 `json:"from_lat"`
	FromLon float64 `json:"from_lon"`
	ToLat   float64 `json:"to_lat"`
	ToLon   float64 `json:"to_lon"`
}

type routingResponse struct {
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	Error           string `json:"error,omitempty"`
}

var routingServerCmd = &cobra.Command{
	Use:   "routing-server",
	Short: "Serve routing-engine queries over a stdin/stdout JSON line protocol",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var engine routing.RoutingEngine
		if cfg.MapsPath != "" {
			engine = routing.NewHTTPEngine(cfg.MapsPath)
		} else {
			engine = routing.HaversineEngine{}
		}

		return runRoutingServer(os.Stdin, os.Stdout, engine)
	},
}

func runRoutingServer(in io.Reader, out io.Writer, engine routing.RoutingEngine) error {
	logger := log.WithComponent("routing-server")
	scanner := bufio.NewScanner(in)
	encoder := json.NewEncoder(out)
	ctx := context.Background()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req routingRequest
		if err := json.Unmarshal(line, &req); err != nil {
			if encErr := encoder.Encode(routingResponse{Error: fmt.Sprintf("malformed request: %v", err)}); encErr != nil {
				return encErr
			}
			continue
		}

		switch req.Command {
		case "shutdown":
			logger.Info().Msg("shutdown requested")
			return nil
		case "route":
			seconds, err := engine.Duration(ctx, domain.NewLocation(req.FromLat, req.FromLon), domain.NewLocation(req.ToLat, req.ToLon))
			resp := routingResponse{DurationSeconds: seconds}
			if err != nil {
				if errors.Is(err, routing.ErrNoRoute) {
					resp = routingResponse{Error: "no route"}
				} else {
					resp = routingResponse{Error: err.Error()}
				}
			}
			if err := encoder.Encode(resp); err != nil {
				return err
			}
		default:
			if err := encoder.Encode(routingResponse{Error: fmt.Sprintf("unknown command %q", req.Command)}); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
