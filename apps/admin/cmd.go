package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db *sqlx.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	fmt.Println("  seed -school SCHOOL_ID -year NAME - create a current school year with a demo roster")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	seedSchool := seedCmd.String("school", "", "The school to seed.")
	seedYear := seedCmd.String("year", "", "The school year name, e.g. 2025-2026.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedSchool == "" || *seedYear == "" {
			seedCmd.Usage()
			return errHelp
		}
		return cli.seed(*seedSchool, *seedYear)
	default:
		cli.printUsage()
		return errHelp
	}
}
