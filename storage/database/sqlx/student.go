package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/student"
)

type studentRow struct {
	ID           string      `db:"id"`
	FirstName    string      `db:"first_name"`
	PaternalName string      `db:"paternal_name"`
	MaternalName null.String `db:"maternal_name"`
	CURP         string      `db:"curp"`
	BirthDate    time.Time   `db:"birth_date"`
	GenderID     int         `db:"gender_id"`
	Email        null.String `db:"email"`
	Phone        null.String `db:"phone"`
	Address      null.String `db:"address"`
	SchoolID     string      `db:"school_id"`
	StatusID     int         `db:"status_id"`
	DeleteFlag   bool        `db:"delete_flag"`
	DeletedAt    null.Time   `db:"deleted_at"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

var studentOrderings = map[string]string{
	"first_name":    "first_name",
	"paternal_name": "paternal_name",
	"curp":          "curp",
	"status":        "status_id",
	"created_at":    "created_at",
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) row(std student.Student) studentRow {
	return studentRow{
		ID:           std.ID,
		FirstName:    std.FirstName,
		PaternalName: std.PaternalName,
		MaternalName: null.NewString(std.MaternalName, std.MaternalName != ""),
		CURP:         std.CURP,
		BirthDate:    std.BirthDate,
		GenderID:     std.GenderID,
		Email:        null.NewString(std.Email, std.Email != ""),
		Phone:        null.NewString(std.Phone, std.Phone != ""),
		Address:      null.NewString(std.Address, std.Address != ""),
		SchoolID:     std.SchoolID,
		StatusID:     std.StatusID,
		DeleteFlag:   std.Deleted,
		DeletedAt:    null.TimeFromPtr(std.DeletedAt),
		CreatedAt:    std.CreatedAt.UTC(),
		UpdatedAt:    std.UpdatedAt.UTC(),
	}
}

func (repo studentRepository) unrow(row studentRow) student.Student {
	return student.Student{
		ID:           row.ID,
		FirstName:    row.FirstName,
		PaternalName: row.PaternalName,
		MaternalName: row.MaternalName.String,
		CURP:         row.CURP,
		BirthDate:    row.BirthDate,
		GenderID:     row.GenderID,
		Email:        row.Email.String,
		Phone:        row.Phone.String,
		Address:      row.Address.String,
		SchoolID:     row.SchoolID,
		StatusID:     row.StatusID,
		Deleted:      row.DeleteFlag,
		DeletedAt:    row.DeletedAt.Ptr(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) QueryStudentsBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	q := `SELECT * FROM students WHERE school_id = $1` + orderBy(studentOrderings, ordering, "paternal_name, first_name")

	var rows []studentRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, repo.unrow(row))
	}
	return students, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM students WHERE id = $1`, id)
	if err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return repo.unrow(row), nil
}

// CheckCURPUniqueness is scoped to non-deleted rows: a soft-deleted student's
// CURP may be reused.
func (repo studentRepository) CheckCURPUniqueness(ctx context.Context, curp string, excluded []student.Student, exec ...core.DBExecutor) error {
	q := `SELECT COUNT(*) FROM students WHERE curp = $1 AND delete_flag = false`
	args := []interface{}{curp}
	if len(excluded) > 0 {
		q += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}

	var count int
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking CURP uniqueness")
	}
	if count > 0 {
		return student.ErrCURPExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()
	row := repo.row(std)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO students
			(id, first_name, paternal_name, maternal_name, curp, birth_date, gender_id,
			 email, phone, address, school_id, status_id, delete_flag, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		row.ID, row.FirstName, row.PaternalName, row.MaternalName, row.CURP, row.BirthDate, row.GenderID,
		row.Email, row.Phone, row.Address, row.SchoolID, row.StatusID, row.DeleteFlag, row.DeletedAt, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return repo.unrow(row), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	row := repo.row(std)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE students SET
			first_name = $2, paternal_name = $3, maternal_name = $4, curp = $5,
			birth_date = $6, gender_id = $7, email = $8, phone = $9, address = $10,
			status_id = $11, updated_at = $12
		 WHERE id = $1`,
		row.ID, row.FirstName, row.PaternalName, row.MaternalName, row.CURP,
		row.BirthDate, row.GenderID, row.Email, row.Phone, row.Address,
		row.StatusID, row.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE students SET delete_flag = true, deleted_at = $2, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo studentRepository) RestoreStudent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE students SET delete_flag = false, deleted_at = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "restoring student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.ErrNotFound
	}
	return nil
}
