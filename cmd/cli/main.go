package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/joho/godotenv"
	"github.com/mchmarny/lingopulse/pkg/config"
	"github.com/mchmarny/lingopulse/pkg/data"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	name    = "lingopulse"
	version = "v0.0.1-default"
	commit  = ""

	dbTarget = ""
	debug    = false

	debugFlag = &cli.BoolFlag{
		Name:        "debug",
		Usage:       "Prints verbose logs (optional, default: false)",
		Destination: &debug,
	}

	dbTargetFlag = &cli.StringFlag{
		Name:        "db",
		Usage:       fmt.Sprintf("Database file path or postgres:// DSN (optional, defaults to $HOME/.%s/data.db)", name),
		Destination: &dbTarget,
	}
)

func main() {
	initLogging()

	// optional local overrides, absence is not an error
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded .env")
	}

	app := &cli.App{
		Name:     name,
		Version:  fmt.Sprintf("%s - (commit: %s)", version, commit),
		Compiled: time.Now(),
		Usage:    "CLI for linguistic dimension scoring and anomaly analysis",
		Flags: []cli.Flag{
			debugFlag,
			dbTargetFlag,
		},
		Commands: []*cli.Command{
			collectCmd,
			classifyCmd,
			analyzeCmd,
			queryCmd,
			serverCmd,
			authCmd,
		},
		Before: func(c *cli.Context) error {
			if c.Bool(debugFlag.Name) {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fatalErr(err)
	}
}

func fatalErr(err error) {
	if err != nil {
		log.Fatalf("fatal error: %v", err)
		os.Exit(1)
	}
}

func initLogging() {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)
	log.SetReportCaller(false)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:          false,
		DisableTimestamp:       true,
		ForceColors:            true,
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
}

// getConfigOrFail loads the app config from the user home dir.
func getConfigOrFail() *config.Config {
	dir, created, err := config.GetOrCreateHomeDir(name)
	if err != nil {
		log.Fatalf("fatal error resolving home dir: %v", err)
		os.Exit(1)
	}
	if created {
		log.Debugf("created app home: %s", dir)
	}
	cfg, err := config.ReadOrCreate(dir)
	if err != nil {
		log.Fatalf("fatal error reading config: %v", err)
		os.Exit(1)
	}
	return cfg
}

// resolveDBTarget picks the store: --db flag, then config, then the default
// embedded file in the app home dir.
func resolveDBTarget(cfg *config.Config) string {
	if dbTarget != "" {
		return dbTarget
	}
	if cfg != nil && cfg.Database != "" {
		return cfg.Database
	}
	dir, _, err := config.GetOrCreateHomeDir(name)
	if err != nil {
		log.Debugf("error resolving home dir, using current dir: %v", err)
		dir = "."
	}
	return path.Join(dir, data.DataFileName)
}

func getDBOrFail(cfg *config.Config) *data.DB {
	db, err := data.Open(resolveDBTarget(cfg))
	if err != nil {
		log.Fatalf("fatal error opening database: %v", err)
		os.Exit(1)
	}
	return db
}

func getEncoder() *json.Encoder {
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e
}
