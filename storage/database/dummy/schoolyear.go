package dummydb

import (
	"context"
	"sort"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/schoolyear"
)

type schoolYearRepository struct {
	db *schoolYearTable
}

var _ schoolyear.Repository = (*schoolYearRepository)(nil) // interface compliance check

func NewSchoolYearRepository(db *DB) schoolyear.Repository {
	return &schoolYearRepository{db: db.schoolYear}
}

func (repo *schoolYearRepository) QuerySchoolYears(ctx context.Context, schoolID string, _ ...core.DBExecutor) ([]schoolyear.SchoolYear, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	years := make([]schoolyear.SchoolYear, 0, len(repo.db.table))
	for _, yr := range repo.db.table {
		if yr.SchoolID == schoolID {
			years = append(years, *yr)
		}
	}
	sort.Slice(years, func(i, j int) bool { return years[i].StartsOn.After(years[j].StartsOn) })
	return years, nil
}

func (repo *schoolYearRepository) GetCurrentSchoolYear(ctx context.Context, schoolID string, _ ...core.DBExecutor) (schoolyear.SchoolYear, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, yr := range repo.db.table {
		if yr.SchoolID == schoolID && yr.Current {
			return *yr, nil
		}
	}
	return schoolyear.SchoolYear{}, schoolyear.ErrNotFound
}
