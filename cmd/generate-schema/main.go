package main

import (
	"fmt"
	"os"

	"github.com/evenbre/fmio/pkg/meta"
)

func main() {
	schemaJSON, err := meta.DumpSchemaJSON()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
		os.Exit(1)
	}

	// Write to file
	outputFile := "fmu_meta.json"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if err := os.WriteFile(outputFile, schemaJSON, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("JSON schema written to %s\n", outputFile)
}
