package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tenantwatch/caselink/internal/app"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/ternarybob/arbor"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths // Multiple -config flags supported
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `CaseLink detainer warrant tracker

Usage:
  caselink [flags] <command> [args]

Commands:
  crawl [docket-id ...]  Check the portal for pleading documents. With no
                         arguments, every pending warrant due for a check is
                         crawled; otherwise only the listed docket ids.
  extract                Download and extract text from pleading documents
                         that have not been fetched yet.
  reconcile              Re-derive judgments from every classified judgment
                         document.
  run                    Run the full pipeline on the configured schedules
                         until interrupted.
  version                Print version information.

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	common.InstallCrashHandler("logs")
	defer common.RecoverWithCrashFile()

	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("caselink version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	command := flag.Arg(0)
	if command == "" {
		usage()
		os.Exit(2)
	}
	if command == "version" {
		fmt.Printf("caselink version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("caselink.toml"); err == nil {
			configFiles = append(configFiles, "caselink.toml")
		} else if _, err := os.Stat("deployments/local/caselink.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/caselink.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("portal", config.Portal.BaseURL).
		Str("sqlite_path", config.Storage.SQLite.Path).
		Msg("Configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	switch command {
	case "crawl":
		err = runCrawl(application, flag.Args()[1:])
	case "extract":
		err = runExtract(application)
	case "reconcile":
		err = runReconcile(application)
	case "run":
		err = runScheduler(application)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}
