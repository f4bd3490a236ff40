// Package main is the entry point for the smfcodec API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/smfcodec/pkg/api"
	"github.com/james-see/smfcodec/pkg/logging"
	"github.com/james-see/smfcodec/pkg/sequence"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	jobs := flag.Int("jobs", 1, "Tracks decoded or encoded in parallel")
	verbose := flag.Bool("verbose", false, "Log codec diagnostics")
	flag.Parse()

	logger := logging.NewProduction(*verbose)
	defer func() { _ = logger.Sync() }()

	fmt.Printf("Starting smfcodec API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port, logger, sequence.WithConcurrency(*jobs)); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
