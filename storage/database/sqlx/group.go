package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/group"
)

type groupRow struct {
	ID           string    `db:"id"`
	Grade        int       `db:"grade"`
	Label        string    `db:"label"`
	SchoolID     string    `db:"school_id"`
	SchoolYearID string    `db:"school_year_id"`
	StatusID     int       `db:"status_id"`
	DeleteFlag   bool      `db:"delete_flag"`
	DeletedAt    null.Time `db:"deleted_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type studentGroupRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	GroupID    string    `db:"group_id"`
	StatusID   int       `db:"status_id"`
	DeleteFlag bool      `db:"delete_flag"`
	DeletedAt  null.Time `db:"deleted_at"`
}

var groupOrderings = map[string]string{
	"grade":      "grade",
	"label":      "label",
	"status":     "status_id",
	"created_at": "created_at",
}

type groupRepository struct {
	exec core.DBExecutor
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(exec core.DBExecutor) *groupRepository {
	return &groupRepository{exec: exec}
}

func (repo groupRepository) row(grp group.Group) groupRow {
	return groupRow{
		ID:           grp.ID,
		Grade:        grp.Grade,
		Label:        grp.Label,
		SchoolID:     grp.SchoolID,
		SchoolYearID: grp.SchoolYearID,
		StatusID:     grp.StatusID,
		DeleteFlag:   grp.Deleted,
		DeletedAt:    null.TimeFromPtr(grp.DeletedAt),
		CreatedAt:    grp.CreatedAt.UTC(),
		UpdatedAt:    grp.UpdatedAt.UTC(),
	}
}

func (repo groupRepository) unrow(row groupRow) group.Group {
	return group.Group{
		ID:           row.ID,
		Grade:        row.Grade,
		Label:        row.Label,
		SchoolID:     row.SchoolID,
		SchoolYearID: row.SchoolYearID,
		StatusID:     row.StatusID,
		Deleted:      row.DeleteFlag,
		DeletedAt:    row.DeletedAt.Ptr(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (repo groupRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return group.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo groupRepository) QueryGroupsBySchool(ctx context.Context, schoolID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]group.Group, error) {
	q := `SELECT * FROM groups WHERE school_id = $1` + orderBy(groupOrderings, ordering, "grade, label")

	var rows []groupRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, schoolID); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, repo.unrow(row))
	}
	return groups, nil
}

func (repo groupRepository) GetGroupByID(ctx context.Context, id string, exec ...core.DBExecutor) (group.Group, error) {
	var row groupRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM groups WHERE id = $1`, id)
	if err != nil {
		return group.Group{}, repo.trapNoRowsErr(err, "getting group")
	}
	return repo.unrow(row), nil
}

func (repo groupRepository) CheckGroupUniqueness(ctx context.Context, grade int, label, schoolYearID string, excluded []group.Group, exec ...core.DBExecutor) error {
	q := `SELECT COUNT(*) FROM groups
		  WHERE grade = $1 AND label = $2 AND school_year_id = $3 AND delete_flag = false`
	args := []interface{}{grade, label, schoolYearID}
	if len(excluded) > 0 {
		// uniqueness re-checks on update exclude the row being edited
		q += ` AND id != $4`
		args = append(args, excluded[0].ID)
	}

	var count int
	if err := getExec(repo.exec, exec).GetContext(ctx, &count, q, args...); err != nil {
		return errors.Wrap(err, "checking group uniqueness")
	}
	if count > 0 {
		return group.ErrGroupExists
	}
	return nil
}

func (repo groupRepository) CreateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	grp.ID = uuid.New().String()
	row := repo.row(grp)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO groups
			(id, grade, label, school_id, school_year_id, status_id, delete_flag, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		row.ID, row.Grade, row.Label, row.SchoolID, row.SchoolYearID, row.StatusID,
		row.DeleteFlag, row.DeletedAt, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "inserting group")
	}
	return repo.unrow(row), nil
}

func (repo groupRepository) UpdateGroup(ctx context.Context, grp group.Group, exec ...core.DBExecutor) (group.Group, error) {
	row := repo.row(grp)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE groups SET grade = $2, label = $3, status_id = $4, updated_at = $5 WHERE id = $1`,
		row.ID, row.Grade, row.Label, row.StatusID, row.UpdatedAt)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return repo.unrow(row), nil
}

// DeleteGroup forces the inactive status alongside the delete flags; a
// restored group keeps that status until someone edits it.
func (repo groupRepository) DeleteGroup(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE groups SET delete_flag = true, deleted_at = $2, status_id = $3, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(), group.StatusInactive)
	if err != nil {
		return errors.Wrap(err, "deleting group")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return group.ErrNotFound
	}
	return nil
}

func (repo groupRepository) RestoreGroup(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE groups SET delete_flag = false, deleted_at = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "restoring group")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return group.ErrNotFound
	}
	return nil
}

func (repo groupRepository) QueryMembershipsBySchool(ctx context.Context, schoolID string, exec ...core.DBExecutor) ([]group.StudentGroup, error) {
	var rows []studentGroupRow
	err := getExec(repo.exec, exec).SelectContext(ctx, &rows,
		`SELECT sg.* FROM student_groups sg
		 JOIN groups g ON g.id = sg.group_id
		 WHERE g.school_id = $1`, schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "querying memberships")
	}
	sgs := make([]group.StudentGroup, 0, len(rows))
	for _, row := range rows {
		sgs = append(sgs, group.StudentGroup{
			ID:        row.ID,
			StudentID: row.StudentID,
			GroupID:   row.GroupID,
			StatusID:  row.StatusID,
			Deleted:   row.DeleteFlag,
			DeletedAt: row.DeletedAt.Ptr(),
		})
	}
	return sgs, nil
}
