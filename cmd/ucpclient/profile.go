package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"ucp-agent/internal/model"
	"ucp-agent/internal/negotiation"
)

// profileServer serves the agent profile so merchants can resolve the
// profile URL sent in the UCP-Agent header.
type profileServer struct {
	server *http.Server
	url    string
}

// startProfileServer listens on localhost:port (0 picks a free port) and serves
// the profile at /profile. An empty path serves the agent's own metadata.
func startProfileServer(port int, profilePath string) (*profileServer, error) {
	data, err := profileJSON(profilePath)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "max-age=300")
		w.Write(data)
	})

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return nil, fmt.Errorf("starting profile server: %w", err)
	}

	ps := &profileServer{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		url:    fmt.Sprintf("http://localhost:%d/profile", listener.Addr().(*net.TCPAddr).Port),
	}
	go func() {
		if err := ps.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Profile server error: %v\n", err)
		}
	}()
	return ps, nil
}

func (ps *profileServer) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ps.server.Shutdown(ctx)
}

func profileJSON(path string) ([]byte, error) {
	if path == "" {
		return json.MarshalIndent(model.DiscoveryProfile{UCP: negotiation.AgentMetadata()}, "", "  ")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	var profile model.DiscoveryProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("invalid profile JSON: %w", err)
	}
	return data, nil
}
