package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core"
)

var (
	// errors
	ErrNotFound    = errors.New("teacher not found")
	ErrEmailExists = errors.New("a teacher with this email already exists")
)

type (
	Repository interface {
		// QueryTeachersBySchool returns every row for the school,
		// soft-deleted ones included: callers partition in memory instead of
		// paying a second round-trip.
		QueryTeachersBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id string, exec ...core.DBExecutor) (Teacher, error)
		// CheckEmailUniqueness only considers non-deleted rows.
		CheckEmailUniqueness(ctx context.Context, email string, excluded []Teacher, exec ...core.DBExecutor) error
		CreateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeacher(ctx context.Context, id string, exec ...core.DBExecutor) error
		RestoreTeacher(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) checkEmailUniqueness(ctx context.Context, email string, exclTeachers ...Teacher) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclTeachers); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) AllBySchool(ctx context.Context, ses core.Session, ordering ...core.DBOrdering) (Collection, error) {
	teachers, err := svc.repo.QueryTeachersBySchool(ctx, ses.SchoolID, ordering)
	if err != nil {
		return Collection{}, errors.Wrap(err, "querying teachers")
	}
	return Partition(teachers), nil
}

func (svc *Service) Get(ctx context.Context, ses core.Session, id string) (Teacher, error) {
	return svc.getOwned(ctx, ses, id)
}

func (svc *Service) Create(ctx context.Context, ses core.Session, nt NewTeacher) (Teacher, error) {
	if err := nt.Validate(ctx, svc); err != nil {
		return Teacher{}, err
	}
	now := time.Now().UTC()
	tch := Teacher{
		FirstName:    nt.FirstName,
		PaternalName: nt.PaternalName,
		MaternalName: nt.MaternalName,
		Email:        nt.Email,
		Phone:        nt.Phone,
		SchoolID:     ses.SchoolID,
		StatusID:     nt.StatusID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if tch.StatusID == 0 {
		tch.StatusID = StatusActive
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *Service) Update(ctx context.Context, ses core.Session, id string, ut UpdateTeacher) (Teacher, error) {
	orig, err := svc.getOwned(ctx, ses, id)
	if err != nil {
		return Teacher{}, err
	}
	if orig.Deleted {
		return Teacher{}, ErrNotFound
	}
	if err = ut.Validate(ctx, orig, svc); err != nil {
		return Teacher{}, err
	}

	tch := orig
	tch.FirstName = ut.FirstName
	tch.PaternalName = ut.PaternalName
	tch.MaternalName = ut.MaternalName
	tch.Email = ut.Email
	tch.Phone = ut.Phone
	if ut.StatusID != 0 {
		tch.StatusID = ut.StatusID
	}
	tch.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, tch)
}

func (svc *Service) Delete(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.DeleteTeacher(ctx, id)
}

func (svc *Service) Restore(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.RestoreTeacher(ctx, id)
}

func (svc *Service) getOwned(ctx context.Context, ses core.Session, id string) (Teacher, error) {
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if tch.SchoolID != ses.SchoolID {
		return Teacher{}, ErrNotFound
	}
	return tch, nil
}
