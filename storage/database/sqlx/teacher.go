package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/teacher"
)

type teacherRow struct {
	ID           string      `db:"id"`
	FirstName    string      `db:"first_name"`
	PaternalName string      `db:"paternal_name"`
	MaternalName null.String `db:"maternal_name"`
	Email        string      `db:"email"`
	Phone        null.String `db:"phone"`
	SchoolID     string      `db:"school_id"`
	StatusID     int         `db:"status_id"`
	DeleteFlag   bool        `db:"delete_flag"`
	DeletedAt    null.Time   `db:"deleted_at"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

var teacherOrderings = map[string]string{
	"first_name":    "first_name",
	"paternal_name": "paternal_name",
	"email":         "email",
	"status":        "status_id",
	"created_at":    "created_at",
}

type teacherRepository struct {
	exec core.DBExecutor
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{exec: exec}
}

func (repo teacherRepository) row(tch teacher.Teacher) teacherRow {
	return teacherRow{
		ID:           tch.ID,
		FirstName:    tch.FirstName,
		PaternalName: tch.PaternalName,
		MaternalName: null.NewString(tch.MaternalName, tch.MaternalName != ""),
		Email:        tch.Email,
		Phone:        null.NewString(tch.Phone, tch.Phone != ""),
		SchoolID:     tch.SchoolID,
		StatusID:     tch.StatusID,
		DeleteFlag:   tch.Deleted,
		DeletedAt:    null.TimeFromPtr(tch.DeletedAt),
		CreatedAt:    tch.CreatedAt.UTC(),
		UpdatedAt:    tch.UpdatedAt.UTC(),
	}
}

func (repo teacherRepository) unrow(row teacherRow) teacher.Teacher {
	return teacher.Teacher{
		ID:           row.ID,
		FirstName:    row.FirstName,
		PaternalName: row.PaternalName,
		MaternalName: row.MaternalName.String,
		Email:        row.Email,
		Phone:        row.Phone.String,
		SchoolID:     row.SchoolID,
		StatusID:     row.StatusID,
		Deleted:      row.DeleteFlag,
		DeletedAt:    row.DeletedAt.Ptr(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) QueryTeachersBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	q := `SELECT * FROM teachers WHERE school_id = $1` + orderBy(teacherOrderings, ordering, "paternal_name, first_name")

	var rows []teacherRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, repo.unrow(row))
	}
	return teachers, nil
}

func (repo teacherRepository) GetTeacherByID(ctx context.Context, id string, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var row teacherRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM teachers WHERE id = $1`, id)
	if err != nil {
		return teacher.Teacher{}, repo.trapNoRowsErr(err, "getting teacher")
	}
	return repo.unrow(row), nil
}

func (repo teacherRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded []teacher.Teacher, exec ...core.DBExecutor) error {
	q := `SELECT COUNT(*) FROM teachers WHERE email = $1 AND delete_flag = false`
	args := []interface{}{email}
	if len(excluded) > 0 {
		q += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}

	var count int
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking teacher email uniqueness")
	}
	if count > 0 {
		return teacher.ErrEmailExists
	}
	return nil
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	tch.ID = uuid.New().String()
	row := repo.row(tch)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO teachers
			(id, first_name, paternal_name, maternal_name, email, phone, school_id,
			 status_id, delete_flag, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		row.ID, row.FirstName, row.PaternalName, row.MaternalName, row.Email, row.Phone, row.SchoolID,
		row.StatusID, row.DeleteFlag, row.DeletedAt, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return repo.unrow(row), nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	row := repo.row(tch)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE teachers SET
			first_name = $2, paternal_name = $3, maternal_name = $4, email = $5,
			phone = $6, status_id = $7, updated_at = $8
		 WHERE id = $1`,
		row.ID, row.FirstName, row.PaternalName, row.MaternalName, row.Email,
		row.Phone, row.StatusID, row.UpdatedAt)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo teacherRepository) DeleteTeacher(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE teachers SET delete_flag = true, deleted_at = $2, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}

func (repo teacherRepository) RestoreTeacher(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE teachers SET delete_flag = false, deleted_at = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "restoring teacher")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return teacher.ErrNotFound
	}
	return nil
}
