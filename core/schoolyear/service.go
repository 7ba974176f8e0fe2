package schoolyear

import (
	"context"

	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core"
)

var (
	// errors
	ErrNotFound = errors.New("school year not found")
)

type (
	Repository interface {
		QuerySchoolYears(ctx context.Context, schoolID string, exec ...core.DBExecutor) ([]SchoolYear, error)
		// GetCurrentSchoolYear returns the year flagged current for the school.
		GetCurrentSchoolYear(ctx context.Context, schoolID string, exec ...core.DBExecutor) (SchoolYear, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) AllBySchool(ctx context.Context, ses core.Session) ([]SchoolYear, error) {
	years, err := svc.repo.QuerySchoolYears(ctx, ses.SchoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying school years")
	}
	return years, nil
}

func (svc *Service) Current(ctx context.Context, ses core.Session) (SchoolYear, error) {
	return svc.repo.GetCurrentSchoolYear(ctx, ses.SchoolID)
}
