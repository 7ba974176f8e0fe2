package main

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// seedTx is the slice of *sqlx.Tx that seeding uses.
type seedTx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Commit() error
	Rollback() error
}

var beginSeedTx = func(db *sqlx.DB) (seedTx, error) { return db.Beginx() } // mockable

// seed creates a current school year for the school plus a small demo roster
// of groups, teachers and students so a fresh install has data to show.
func (cli *commandLine) seed(schoolID, yearName string) error {
	tx, err := beginSeedTx(cli.db)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	yearID, err := seedSchoolYear(tx, schoolID, yearName, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = seedDemoRoster(tx, schoolID, yearID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing seed data")
}

// seedSchoolYear inserts a new current school year, demoting whichever year
// held the flag before. Years run August through July.
func seedSchoolYear(tx seedTx, schoolID, yearName string, now time.Time) (string, error) {
	year := now.Year()
	if now.Month() < time.August {
		year--
	}
	starts := time.Date(year, time.August, 1, 0, 0, 0, 0, time.UTC)
	ends := time.Date(year+1, time.July, 31, 0, 0, 0, 0, time.UTC)

	if _, err := tx.Exec(`UPDATE school_years SET current = false WHERE school_id = $1`, schoolID); err != nil {
		return "", errors.Wrap(err, "demoting current school year")
	}
	id := uuid.New().String()
	_, err := tx.Exec(
		`INSERT INTO school_years (id, school_id, name, starts_on, ends_on, current)
		 VALUES ($1, $2, $3, $4, $5, true)`,
		id, schoolID, yearName, starts, ends)
	if err != nil {
		return "", errors.Wrap(err, "inserting school year")
	}
	return id, nil
}

// seedDemoRoster inserts demo groups, teachers and students (with active
// memberships) under the given school year. The CURPs are syntactically valid
// but made up.
func seedDemoRoster(tx seedTx, schoolID, yearID string) error {
	now := time.Now().UTC()

	demoGroups := []struct {
		grade int
		label string
	}{
		{1, "a"},
		{1, "b"},
		{2, "a"},
	}
	groupIDs := make([]string, 0, len(demoGroups))
	for _, grp := range demoGroups {
		id := uuid.New().String()
		_, err := tx.Exec(
			`INSERT INTO groups (id, grade, label, school_id, school_year_id, status_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, 1, $6, $6)`,
			id, grp.grade, grp.label, schoolID, yearID, now)
		if err != nil {
			return errors.Wrap(err, "inserting demo group")
		}
		groupIDs = append(groupIDs, id)
	}

	demoTeachers := []struct {
		firstName, paternalName, email string
	}{
		{"Laura", "Mendoza", "laura.mendoza@escuela.demo"},
		{"Carlos", "Rivera", "carlos.rivera@escuela.demo"},
	}
	for _, tch := range demoTeachers {
		_, err := tx.Exec(
			`INSERT INTO teachers (id, first_name, paternal_name, email, school_id, status_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, 1, $6, $6)`,
			uuid.New().String(), tch.firstName, tch.paternalName, tch.email, schoolID, now)
		if err != nil {
			return errors.Wrap(err, "inserting demo teacher")
		}
	}

	demoStudents := []struct {
		firstName, paternalName, curp string
		birthDate                     time.Time
		genderID, group               int
	}{
		{"Ana", "López", "LOGA100215MDFPRN08", time.Date(2010, 2, 15, 0, 0, 0, 0, time.UTC), 2, 0},
		{"Juan", "García", "GAXA090101HDFRRN01", time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC), 1, 0},
		{"José", "Martínez", "MAPJ110310HDFRRL05", time.Date(2011, 3, 10, 0, 0, 0, 0, time.UTC), 1, 1},
		{"María", "Hernández", "HESM120522MDFRNR02", time.Date(2012, 5, 22, 0, 0, 0, 0, time.UTC), 2, 2},
	}
	for _, std := range demoStudents {
		id := uuid.New().String()
		_, err := tx.Exec(
			`INSERT INTO students (id, first_name, paternal_name, curp, birth_date, gender_id, school_id, status_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, 1, $8, $8)`,
			id, std.firstName, std.paternalName, std.curp, std.birthDate, std.genderID, schoolID, now)
		if err != nil {
			return errors.Wrap(err, "inserting demo student")
		}
		_, err = tx.Exec(
			`INSERT INTO student_groups (id, student_id, group_id, status_id)
			 VALUES ($1, $2, $3, 1)`,
			uuid.New().String(), id, groupIDs[std.group])
		if err != nil {
			return errors.Wrap(err, "inserting demo membership")
		}
	}
	return nil
}
