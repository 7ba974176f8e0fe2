package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/event"
)

type eventRow struct {
	ID           string      `db:"id"`
	Title        string      `db:"title"`
	Description  null.String `db:"description"`
	SchoolID     string      `db:"school_id"`
	SchoolYearID string      `db:"school_year_id"`
	EventTypeID  int         `db:"event_type_id"`
	StartsAt     time.Time   `db:"starts_at"`
	EndsAt       time.Time   `db:"ends_at"`
	AllDay       bool        `db:"all_day"`
	StatusID     int         `db:"status_id"`
	CreatedBy    string      `db:"created_by"`
	DeleteFlag   bool        `db:"delete_flag"`
	DeletedAt    null.Time   `db:"deleted_at"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

type recipientRow struct {
	ID      string `db:"id"`
	EventID string `db:"event_id"`
	RoleID  int    `db:"role_id"`
}

type eventTypeRow struct {
	ID    int         `db:"id"`
	Name  string      `db:"name"`
	Color null.String `db:"color"`
}

type roleRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type eventRepository struct {
	exec core.DBExecutor
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(exec core.DBExecutor) *eventRepository {
	return &eventRepository{exec: exec}
}

func (repo eventRepository) row(evt event.Event) eventRow {
	return eventRow{
		ID:           evt.ID,
		Title:        evt.Title,
		Description:  null.NewString(evt.Description, evt.Description != ""),
		SchoolID:     evt.SchoolID,
		SchoolYearID: evt.SchoolYearID,
		EventTypeID:  evt.EventTypeID,
		StartsAt:     evt.StartsAt.UTC(),
		EndsAt:       evt.EndsAt.UTC(),
		AllDay:       evt.AllDay,
		StatusID:     evt.StatusID,
		CreatedBy:    evt.CreatedBy,
		DeleteFlag:   evt.Deleted,
		DeletedAt:    null.TimeFromPtr(evt.DeletedAt),
		CreatedAt:    evt.CreatedAt.UTC(),
		UpdatedAt:    evt.UpdatedAt.UTC(),
	}
}

func (repo eventRepository) unrow(row eventRow) event.Event {
	return event.Event{
		ID:           row.ID,
		Title:        row.Title,
		Description:  row.Description.String,
		SchoolID:     row.SchoolID,
		SchoolYearID: row.SchoolYearID,
		EventTypeID:  row.EventTypeID,
		StartsAt:     row.StartsAt,
		EndsAt:       row.EndsAt,
		AllDay:       row.AllDay,
		StatusID:     row.StatusID,
		CreatedBy:    row.CreatedBy,
		Deleted:      row.DeleteFlag,
		DeletedAt:    row.DeletedAt.Ptr(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to event.ErrNotFound
func (repo eventRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return event.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo eventRepository) QueryEvents(ctx context.Context, filter event.QueryFilter, exec ...core.DBExecutor) ([]event.Event, error) {
	q := `SELECT * FROM events WHERE school_id = $1 AND delete_flag = false`
	args := []interface{}{filter.SchoolID}
	if filter.SchoolYearID != "" {
		q += ` AND school_year_id = $2`
		args = append(args, filter.SchoolYearID)
	}
	q += ` ORDER BY starts_at`

	var rows []eventRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	evts := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		evts = append(evts, repo.unrow(row))
	}
	return evts, nil
}

func (repo eventRepository) GetEventByID(ctx context.Context, id string, exec ...core.DBExecutor) (event.Event, error) {
	var row eventRow
	err := getExec(repo.exec, exec).GetContext(ctx, &row, `SELECT * FROM events WHERE id = $1`, id)
	if err != nil {
		return event.Event{}, repo.trapNoRowsErr(err, "getting event")
	}
	return repo.unrow(row), nil
}

func (repo eventRepository) CreateEvent(ctx context.Context, evt event.Event, exec ...core.DBExecutor) (event.Event, error) {
	evt.ID = uuid.New().String()
	row := repo.row(evt)
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO events
			(id, title, description, school_id, school_year_id, event_type_id,
			 starts_at, ends_at, all_day, status_id, created_by, delete_flag, deleted_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		row.ID, row.Title, row.Description, row.SchoolID, row.SchoolYearID, row.EventTypeID,
		row.StartsAt, row.EndsAt, row.AllDay, row.StatusID, row.CreatedBy, row.DeleteFlag, row.DeletedAt, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return repo.unrow(row), nil
}

func (repo eventRepository) UpdateEvent(ctx context.Context, evt event.Event, exec ...core.DBExecutor) (event.Event, error) {
	row := repo.row(evt)
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE events SET
			title = $2, description = $3, event_type_id = $4, starts_at = $5,
			ends_at = $6, all_day = $7, status_id = $8, updated_at = $9
		 WHERE id = $1`,
		row.ID, row.Title, row.Description, row.EventTypeID, row.StartsAt,
		row.EndsAt, row.AllDay, row.StatusID, row.UpdatedAt)
	if err != nil {
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.Event{}, event.ErrNotFound
	}
	return repo.unrow(row), nil
}

func (repo eventRepository) DeleteEvent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE events SET delete_flag = true, deleted_at = $2, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "deleting event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (repo eventRepository) RestoreEvent(ctx context.Context, id string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE events SET delete_flag = false, deleted_at = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "restoring event")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.ErrNotFound
	}
	return nil
}

func (repo eventRepository) QueryEventTypes(ctx context.Context, exec ...core.DBExecutor) ([]event.EventType, error) {
	var rows []eventTypeRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, `SELECT * FROM event_types ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying event types")
	}
	types := make([]event.EventType, 0, len(rows))
	for _, row := range rows {
		types = append(types, event.EventType{ID: row.ID, Name: row.Name, Color: row.Color.String})
	}
	return types, nil
}

func (repo eventRepository) QueryRoles(ctx context.Context, exec ...core.DBExecutor) ([]event.Role, error) {
	var rows []roleRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, `SELECT * FROM roles ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying roles")
	}
	roles := make([]event.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, event.Role{ID: row.ID, Name: row.Name})
	}
	return roles, nil
}

func (repo eventRepository) QueryRecipients(ctx context.Context, eventIDs []string, exec ...core.DBExecutor) ([]event.Recipient, error) {
	if len(eventIDs) == 0 {
		return []event.Recipient{}, nil
	}
	q, args, err := sqlx.In(`SELECT * FROM event_recipients WHERE event_id IN (?)`, eventIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building recipients query")
	}
	q = sqlx.Rebind(sqlx.DOLLAR, q)

	var rows []recipientRow
	if err := getExec(repo.exec, exec).SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying event recipients")
	}
	recips := make([]event.Recipient, 0, len(rows))
	for _, row := range rows {
		recips = append(recips, event.Recipient{ID: row.ID, EventID: row.EventID, RoleID: row.RoleID})
	}
	return recips, nil
}

func (repo eventRepository) CreateRecipients(ctx context.Context, eventID string, roleIDs []int, exec ...core.DBExecutor) ([]event.Recipient, error) {
	recips := make([]event.Recipient, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		r := event.Recipient{ID: uuid.New().String(), EventID: eventID, RoleID: roleID}
		_, err := getExec(repo.exec, exec).ExecContext(ctx,
			`INSERT INTO event_recipients (id, event_id, role_id) VALUES ($1, $2, $3)`,
			r.ID, r.EventID, r.RoleID)
		if err != nil {
			return nil, errors.Wrap(err, "inserting event recipient")
		}
		recips = append(recips, r)
	}
	return recips, nil
}

func (repo eventRepository) DeleteRecipients(ctx context.Context, eventID string, exec ...core.DBExecutor) error {
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`DELETE FROM event_recipients WHERE event_id = $1`, eventID)
	return errors.Wrap(err, "deleting event recipients")
}
