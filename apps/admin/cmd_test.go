package main

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli := &commandLine{db: &sqlx.DB{}}

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

type seedTxRecorder struct {
	queries    []string
	failOn     string // substring of the query to fail on
	committed  bool
	rolledBack bool
}

func (tx *seedTxRecorder) Exec(query string, args ...interface{}) (sql.Result, error) {
	if tx.failOn != "" && strings.Contains(query, tx.failOn) {
		return nil, fmt.Errorf("exec failed")
	}
	tx.queries = append(tx.queries, query)
	return driver.RowsAffected(1), nil
}

func (tx *seedTxRecorder) Commit() error   { tx.committed = true; return nil }
func (tx *seedTxRecorder) Rollback() error { tx.rolledBack = true; return nil }

func (tx *seedTxRecorder) countInserts(table string) int {
	count := 0
	for _, q := range tx.queries {
		if strings.Contains(q, "INSERT INTO "+table+" ") {
			count++
		}
	}
	return count
}

func Test_commandLine_seed(t *testing.T) {
	cli := &commandLine{db: &sqlx.DB{}}
	args := []string{"admin", "seed", "-school", "sch-1", "-year", "2025-2026"}

	t.Run("missing flags", func(t *testing.T) {
		if err := cli.run([]string{"admin", "seed", "-school", "sch-1"}); err != errHelp {
			t.Errorf("cli.run() error = %v, wantErr %v", err, errHelp)
		}
	})

	t.Run("inserts year and demo roster", func(t *testing.T) {
		tx := &seedTxRecorder{}
		beginSeedTx = func(db *sqlx.DB) (seedTx, error) { return tx, nil }

		if err := cli.run(args); err != nil {
			t.Fatalf("cli.run() unexpected error = %v", err)
		}
		if !tx.committed {
			t.Error("transaction not committed")
		}
		if !strings.Contains(tx.queries[0], "UPDATE school_years SET current = false") {
			t.Errorf("previous current year not demoted; first query = %s", tx.queries[0])
		}

		wantInserts := map[string]int{
			"school_years":   1,
			"groups":         3,
			"teachers":       2,
			"students":       4,
			"student_groups": 4,
		}
		for table, want := range wantInserts {
			if got := tx.countInserts(table); got != want {
				t.Errorf("inserts into %s = %d, want %d", table, got, want)
			}
		}
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		tx := &seedTxRecorder{failOn: "INSERT INTO students"}
		beginSeedTx = func(db *sqlx.DB) (seedTx, error) { return tx, nil }

		err := cli.run(args)
		if err == nil || !strings.Contains(err.Error(), "inserting demo student") {
			t.Errorf("cli.run() error = %v, want wrapped student insert failure", err)
		}
		if !tx.rolledBack {
			t.Error("transaction not rolled back")
		}
		if tx.committed {
			t.Error("failed transaction committed")
		}
	})
}

func Test_commandLine_run_help(t *testing.T) {
	cli := &commandLine{}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
