// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// runTransitionCLI requests a phase change from a running daemon.
func runTransitionCLI(args []string) int {
	return transition(args, os.Stdout, os.Stderr)
}

func transition(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("transition", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "http://localhost:8080", "API base URL")
	scenario := fs.String("scenario", "default", "scenario id")
	target := fs.String("target", "", "target phase")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *target == "" {
		fmt.Fprintln(stderr, "transition: -target is required")
		return 2
	}

	body, _ := json.Marshal(map[string]string{"target": *target})
	endpoint := *addr + "/api/v1/scenarios/" + url.PathEscape(*scenario) + "/transition"
	client := http.Client{Timeout: *timeout}
	resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(stderr, "transition failed (network): %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(stderr, "transition rejected (%s): %s\n", resp.Status, bytes.TrimSpace(raw))
		return 1
	}
	fmt.Fprintf(stdout, "%s\n", bytes.TrimSpace(raw))
	return 0
}
