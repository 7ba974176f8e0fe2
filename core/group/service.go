package group

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core"
)

var (
	// errors
	ErrNotFound    = errors.New("group not found")
	ErrGroupExists = errors.New("a group with this grade and label already exists for the school year")
)

type (
	Repository interface {
		// QueryGroupsBySchool returns every row for the school, soft-deleted
		// ones included: callers partition in memory instead of paying a
		// second round-trip.
		QueryGroupsBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Group, error)
		GetGroupByID(ctx context.Context, id string, exec ...core.DBExecutor) (Group, error)
		// CheckGroupUniqueness only considers non-deleted rows: a deleted
		// group's grade+label may be reused.
		CheckGroupUniqueness(ctx context.Context, grade int, label, schoolYearID string, excluded []Group, exec ...core.DBExecutor) error
		CreateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		UpdateGroup(ctx context.Context, grp Group, exec ...core.DBExecutor) (Group, error)
		// DeleteGroup sets delete_flag, deleted_at and forces the inactive
		// status; RestoreGroup clears the flags but leaves the status alone.
		DeleteGroup(ctx context.Context, id string, exec ...core.DBExecutor) error
		RestoreGroup(ctx context.Context, id string, exec ...core.DBExecutor) error

		QueryMembershipsBySchool(ctx context.Context, schoolID string, exec ...core.DBExecutor) ([]StudentGroup, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, grade int, label, schoolYearID string, exclGroups ...Group) error {
	if err := svc.repo.CheckGroupUniqueness(ctx, grade, label, schoolYearID, exclGroups); err != nil {
		if err == ErrGroupExists {
			return core.NewValidationError(err, core.FieldError{Field: "label", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) AllBySchool(ctx context.Context, ses core.Session, ordering ...core.DBOrdering) (Collection, error) {
	groups, err := svc.repo.QueryGroupsBySchool(ctx, ses.SchoolID, ordering)
	if err != nil {
		return Collection{}, errors.Wrap(err, "querying groups")
	}
	return Partition(groups), nil
}

func (svc *Service) Get(ctx context.Context, ses core.Session, id string) (Group, error) {
	return svc.getOwned(ctx, ses, id)
}

func (svc *Service) Create(ctx context.Context, ses core.Session, ng NewGroup) (Group, error) {
	if err := ng.Validate(ctx, svc); err != nil {
		return Group{}, err
	}
	now := time.Now().UTC()
	grp := Group{
		Grade:        ng.Grade,
		Label:        ng.Label,
		SchoolID:     ses.SchoolID,
		SchoolYearID: ng.SchoolYearID,
		StatusID:     ng.StatusID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if grp.StatusID == 0 {
		grp.StatusID = StatusActive
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *Service) Update(ctx context.Context, ses core.Session, id string, ug UpdateGroup) (Group, error) {
	orig, err := svc.getOwned(ctx, ses, id)
	if err != nil {
		return Group{}, err
	}
	if orig.Deleted {
		return Group{}, ErrNotFound
	}
	if err = ug.Validate(ctx, orig, svc); err != nil {
		return Group{}, err
	}

	grp := orig
	grp.Grade = ug.Grade
	grp.Label = ug.Label
	if ug.StatusID != 0 {
		grp.StatusID = ug.StatusID
	}
	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGroup(ctx, grp)
}

// Delete soft-deletes and forces the group inactive as a side effect. The row
// stays addressable for restore.
func (svc *Service) Delete(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.DeleteGroup(ctx, id)
}

// Restore clears the delete flags only; the status keeps whatever value it
// had at deletion time. Uniqueness is not re-checked (restore always wins).
func (svc *Service) Restore(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.RestoreGroup(ctx, id)
}

func (svc *Service) Memberships(ctx context.Context, ses core.Session) ([]StudentGroup, error) {
	sgs, err := svc.repo.QueryMembershipsBySchool(ctx, ses.SchoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying memberships")
	}
	return sgs, nil
}

func (svc *Service) getOwned(ctx context.Context, ses core.Session, id string) (Group, error) {
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return Group{}, err
	}
	if grp.SchoolID != ses.SchoolID {
		return Group{}, ErrNotFound
	}
	return grp, nil
}
