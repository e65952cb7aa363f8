// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

// Command openapi-gen writes the OpenAPI document of the handbook HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prmsu-dev/handbook/internal/answer"
	"github.com/prmsu-dev/handbook/internal/handbook"
	"github.com/prmsu-dev/handbook/internal/provider"
	"github.com/prmsu-dev/handbook/internal/server"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

const defaultOutPath = "api/openapi/openapi.json"

func main() {
	doc, err := generateDocument()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	outPath := defaultOutPath
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outPath, doc, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing document: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("OpenAPI document written to %s\n", outPath)
}

// generateDocument builds a server over the embedded handbook with a
// placeholder provider, so the optional generative routes are registered
// too, and returns the document huma derives from the route types.
func generateDocument() ([]byte, error) {
	hb, err := handbook.Default()
	if err != nil {
		return nil, err
	}
	p, err := answer.FromHandbook(hb, nil)
	if err != nil {
		return nil, hberr.Wrapf(err, hberr.CodeCLISetupFailure, "building answer pipeline")
	}

	svc, err := server.NewServices(p, hb.Store, hb.Source, placeholderProvider{})
	if err != nil {
		return nil, hberr.Errorf(hberr.CodeCLISetupFailure, "creating services: %w", err)
	}

	srv, err := server.New(server.Config{ListenAddr: "127.0.0.1:0"}, svc)
	if err != nil {
		return nil, hberr.Errorf(hberr.CodeCLISetupFailure, "creating server: %w", err)
	}
	defer srv.Close()

	return json.MarshalIndent(srv.API().OpenAPI(), "", "  ")
}

// placeholderProvider is never called during document generation.
type placeholderProvider struct{}

func (placeholderProvider) Probe(context.Context) error { return nil }

func (placeholderProvider) Status(context.Context) provider.Status {
	return provider.Status{}
}
