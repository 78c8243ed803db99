package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bankshot/internal/back"
	"bankshot/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

const databaseDSN = "./bankshot.db"

func main() {
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(command string) error {
	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "Bankshot %s\n", Version)
		return nil
	case "migrate":
		return migrateDatabase()
	case "serve":
		conf, b, err := boot()
		if err != nil {
			return err
		}
		return serve(conf, b)
	case "dev:fixtures":
		_, b, err := boot()
		if err != nil {
			return err
		}
		return b.LoadFixtures()
	case "sign-url":
		conf, err := config.NewFromUserConfigDir()
		if err != nil {
			return err
		}
		signed, err := conf.SignURL(flag.Arg(1), 1*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, signed)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
		return nil
	}
}

func boot() (*config.Config, *back.Back, error) {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return nil, nil, err
	}

	b, err := back.New("sqlite3", databaseDSN, conf)
	if err != nil {
		return nil, nil, err
	}

	return conf, b, nil
}

func help() string {
	return fmt.Sprintf(`
Bankshot tracks the pool games of an office and maintains the Elo
leaderboard everyone argues about.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    migrate      upgrade the database schema to the current version
    serve        start the web server
    sign-url     sign an URL to authorize administrative endpoints
    version      display the current version
`,
		os.Args[0],
	)
}
