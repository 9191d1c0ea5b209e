package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"arena3d/game"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "schemas/snapshot.schema.json", "path to write the JSON schema")
	flag.Parse()

	data, err := json.MarshalIndent(game.SnapshotSchema(), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal schema: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create schema directory: %v\n", err)
		os.Exit(1)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write temp schema: %v\n", err)
		os.Exit(1)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "replace schema: %v\n", err)
		os.Exit(1)
	}
}
