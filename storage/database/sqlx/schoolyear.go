package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/schoolyear"
)

type schoolYearRow struct {
	ID       string    `db:"id"`
	SchoolID string    `db:"school_id"`
	Name     string    `db:"name"`
	StartsOn time.Time `db:"starts_on"`
	EndsOn   time.Time `db:"ends_on"`
	Current  bool      `db:"current"`
}

type schoolYearRepository struct {
	exec core.DBExecutor
}

var _ schoolyear.Repository = (*schoolYearRepository)(nil) // interface compliance check

func NewSchoolYearRepository(exec core.DBExecutor) *schoolYearRepository {
	return &schoolYearRepository{exec: exec}
}

func (repo schoolYearRepository) unrow(row schoolYearRow) schoolyear.SchoolYear {
	return schoolyear.SchoolYear{
		ID:       row.ID,
		SchoolID: row.SchoolID,
		Name:     row.Name,
		StartsOn: row.StartsOn,
		EndsOn:   row.EndsOn,
		Current:  row.Current,
	}
}

func (repo schoolYearRepository) QuerySchoolYears(ctx context.Context, schoolID string, exec ...core.DBExecutor) ([]schoolyear.SchoolYear, error) {
	var rows []schoolYearRow
	err := getExec(repo.exec, exec).SelectContext(ctx, &rows,
		`SELECT * FROM school_years WHERE school_id = $1 ORDER BY starts_on DESC`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying school years")
	}
	years := make([]schoolyear.SchoolYear, 0, len(rows))
	for _, row := range rows {
		years = append(years, repo.unrow(row))
	}
	return years, nil
}

func (repo schoolYearRepository) GetCurrentSchoolYear(ctx context.Context, schoolID string, exec ...core.DBExecutor) (schoolyear.SchoolYear, error) {
	var row schoolYearRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row,
		`SELECT * FROM school_years WHERE school_id = $1 AND current = true`, schoolID)
	if err != nil {
		if err == sql.ErrNoRows {
			return schoolyear.SchoolYear{}, schoolyear.ErrNotFound
		}
		return schoolyear.SchoolYear{}, errors.Wrap(err, "getting current school year")
	}
	return repo.unrow(row), nil
}
