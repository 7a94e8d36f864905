// Command fmio is the command line companion of the fmio library: it
// registers cases, validates metadata documents and emits the metadata
// schema.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evenbre/fmio/internal/logger"
	"github.com/evenbre/fmio/internal/sysinfo"
	"github.com/evenbre/fmio/pkg/export"
	"github.com/evenbre/fmio/pkg/meta"
	"github.com/evenbre/fmio/pkg/settings"
)

const usage = `Usage: fmio <command> [flags]

Commands:
  init-case   Register a case by writing its case metadata document
  validate    Validate a metadata document file
  schema      Print the metadata JSON schema
  version     Print the fmio version

Run 'fmio <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "init-case":
		err = runInitCase(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "schema":
		err = runSchema(os.Args[2:])
	case "version":
		fmt.Println(sysinfo.Version)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInitCase(args []string) error {
	fs := flag.NewFlagSet("init-case", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the global configuration YAML (default: $FMU_GLOBAL_CONFIG)")
	root := fs.String("root", "", "Case root directory (required)")
	name := fs.String("name", "", "Case name (default: base name of the root directory)")
	user := fs.String("user", "", "Registering user (default: current user)")
	description := fs.String("description", "", "Free-text case description")
	logLevel := fs.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.SetLevel(*logLevel)

	if *root == "" {
		return fmt.Errorf("the -root flag is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	caseName := *name
	if caseName == "" {
		caseName = filepath.Base(filepath.Clean(*root))
	}
	caseUser := *user
	if caseUser == "" {
		caseUser = sysinfo.CurrentUser()
	}
	var desc []string
	if *description != "" {
		desc = []string{*description}
	}

	initializer := &export.CaseInitializer{Config: cfg}
	doc, path, err := initializer.InitializeCase(*root, caseName, caseUser, desc)
	if err != nil {
		return err
	}
	if doc == nil {
		fmt.Println("Case already registered; nothing written")
		return nil
	}

	fmt.Printf("Case %s (%s) registered at %s\n", doc.FMU.Case.Name, doc.FMU.Case.UUID, path)
	return nil
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	logLevel := fs.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger.SetLevel(*logLevel)

	if fs.NArg() == 0 {
		return fmt.Errorf("usage: fmio validate <file>...")
	}

	failed := 0
	for _, path := range fs.Args() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		doc, err := meta.Decode(raw)
		if err == nil {
			err = meta.Validate(doc)
		}
		if err != nil {
			failed++
			fmt.Printf("%s: INVALID\n%v\n", path, err)
			continue
		}
		fmt.Printf("%s: OK\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d document(s) failed validation", failed)
	}
	return nil
}

func runSchema(args []string) error {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	output := fs.String("output", "", "Write the schema to a file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	schemaJSON, err := meta.DumpSchemaJSON()
	if err != nil {
		return err
	}
	if *output == "" {
		fmt.Println(string(schemaJSON))
		return nil
	}
	return os.WriteFile(*output, schemaJSON, 0o644)
}

// loadConfig reads the global configuration from the given path, or from
// the FMU_GLOBAL_CONFIG environment variable when no path is given.
func loadConfig(path string) (*settings.GlobalConfig, error) {
	if path == "" {
		path = os.Getenv(settings.GlobalConfigEnv)
	}
	if path == "" {
		return nil, fmt.Errorf("no global configuration: pass -config or set %s", settings.GlobalConfigEnv)
	}
	return settings.LoadGlobalConfig(path)
}
