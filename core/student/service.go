package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core"
)

var (
	// errors
	ErrNotFound   = errors.New("student not found")
	ErrCURPExists = errors.New("a student with this CURP already exists")
)

type (
	Repository interface {
		// QueryStudentsBySchool returns every row for the school,
		// soft-deleted ones included: callers partition in memory instead of
		// paying a second round-trip.
		QueryStudentsBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (Student, error)
		// CheckCURPUniqueness only considers non-deleted rows: a deleted
		// student's CURP may be reused.
		CheckCURPUniqueness(ctx context.Context, curp string, excluded []Student, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		// DeleteStudent sets delete_flag and deleted_at; RestoreStudent
		// clears both. Neither touches the status.
		DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error
		RestoreStudent(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) checkCURPUniqueness(ctx context.Context, curp string, exclStudents ...Student) error {
	if err := svc.repo.CheckCURPUniqueness(ctx, curp, exclStudents); err != nil {
		if err == ErrCURPExists {
			return core.NewValidationError(err, core.FieldError{Field: "curp", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) AllBySchool(ctx context.Context, ses core.Session, ordering ...core.DBOrdering) (Collection, error) {
	students, err := svc.repo.QueryStudentsBySchool(ctx, ses.SchoolID, ordering)
	if err != nil {
		return Collection{}, errors.Wrap(err, "querying students")
	}
	return Partition(students), nil
}

func (svc *Service) Get(ctx context.Context, ses core.Session, id string) (Student, error) {
	return svc.getOwned(ctx, ses, id)
}

func (svc *Service) Create(ctx context.Context, ses core.Session, ns NewStudent) (Student, error) {
	if err := ns.Validate(ctx, svc); err != nil {
		return Student{}, err
	}
	birth, err := time.Parse("2006-01-02", ns.BirthDate)
	if err != nil {
		// unreachable after Validate's datetime tag; belt and braces
		return Student{}, core.NewValidationError(err, core.FieldError{Field: "birth_date", Error: "invalid date"})
	}

	now := time.Now().UTC()
	std := Student{
		FirstName:    ns.FirstName,
		PaternalName: ns.PaternalName,
		MaternalName: ns.MaternalName,
		CURP:         ns.CURP,
		BirthDate:    birth,
		GenderID:     ns.GenderID,
		Email:        ns.Email,
		Phone:        ns.Phone,
		Address:      ns.Address,
		SchoolID:     ses.SchoolID,
		StatusID:     ns.StatusID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if std.StatusID == 0 {
		std.StatusID = StatusEnrolled
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) Update(ctx context.Context, ses core.Session, id string, us UpdateStudent) (Student, error) {
	orig, err := svc.getOwned(ctx, ses, id)
	if err != nil {
		return Student{}, err
	}
	if orig.Deleted {
		return Student{}, ErrNotFound
	}
	if err = us.Validate(ctx, orig, svc); err != nil {
		return Student{}, err
	}
	birth, err := time.Parse("2006-01-02", us.BirthDate)
	if err != nil {
		return Student{}, core.NewValidationError(err, core.FieldError{Field: "birth_date", Error: "invalid date"})
	}

	std := orig
	std.FirstName = us.FirstName
	std.PaternalName = us.PaternalName
	std.MaternalName = us.MaternalName
	std.CURP = us.CURP
	std.BirthDate = birth
	std.GenderID = us.GenderID
	std.Email = us.Email
	std.Phone = us.Phone
	std.Address = us.Address
	if us.StatusID != 0 {
		std.StatusID = us.StatusID
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

// Delete soft-deletes; the status is left untouched and the row stays
// addressable for restore. The CURP becomes reusable by new registrations.
func (svc *Service) Delete(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.DeleteStudent(ctx, id)
}

// Restore clears the delete flags only. Uniqueness is not re-checked against
// rows registered since deletion (restore always wins).
func (svc *Service) Restore(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.RestoreStudent(ctx, id)
}

func (svc *Service) getOwned(ctx context.Context, ses core.Session, id string) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if std.SchoolID != ses.SchoolID {
		return Student{}, ErrNotFound
	}
	return std, nil
}
