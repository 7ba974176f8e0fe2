package event

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/ltoral/escolar/core"
)

var (
	// errors
	ErrNotFound = errors.New("event not found")
)

type (
	Repository interface {
		// QueryEvents returns non-deleted events matching the filter,
		// recipients not attached.
		QueryEvents(ctx context.Context, filter QueryFilter, exec ...core.DBExecutor) ([]Event, error)
		// GetEventByID also finds soft-deleted events: they stay addressable
		// by id for restore.
		GetEventByID(ctx context.Context, id string, exec ...core.DBExecutor) (Event, error)
		CreateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
		UpdateEvent(ctx context.Context, evt Event, exec ...core.DBExecutor) (Event, error)
		// DeleteEvent sets delete_flag and deleted_at; RestoreEvent clears both.
		DeleteEvent(ctx context.Context, id string, exec ...core.DBExecutor) error
		RestoreEvent(ctx context.Context, id string, exec ...core.DBExecutor) error

		QueryEventTypes(ctx context.Context, exec ...core.DBExecutor) ([]EventType, error)
		QueryRoles(ctx context.Context, exec ...core.DBExecutor) ([]Role, error)

		QueryRecipients(ctx context.Context, eventIDs []string, exec ...core.DBExecutor) ([]Recipient, error)
		CreateRecipients(ctx context.Context, eventID string, roleIDs []int, exec ...core.DBExecutor) ([]Recipient, error)
		DeleteRecipients(ctx context.Context, eventID string, exec ...core.DBExecutor) error
	}

	Service struct {
		db      core.DB
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, mailSvc: mailSvc, logger: logger, conf: conf}
}

// CalendarData fetches everything the calendar screen needs: events scoped to
// the session's school (optionally narrowed to a school year), the event
// types and the recipient roles. Sub-fetches degrade instead of failing the
// whole call: a failure truncates the response to what was already fetched
// plus empty defaults. Partial UI beats no UI.
func (svc *Service) CalendarData(ctx context.Context, ses core.Session, schoolYearID string) CalendarData {
	data := CalendarData{
		Events:     []Event{},
		EventTypes: []EventType{},
		Roles:      []Role{},
	}

	evts, err := svc.repo.QueryEvents(ctx, QueryFilter{SchoolID: ses.SchoolID, SchoolYearID: schoolYearID})
	if err != nil {
		svc.logger.Error("calendar: querying events", err, ses)
		return data
	}
	if err = svc.attachRecipients(ctx, evts); err != nil {
		svc.logger.Error("calendar: querying event recipients", err, ses)
		return data
	}
	data.Events = evts

	types, err := svc.repo.QueryEventTypes(ctx)
	if err != nil {
		svc.logger.Error("calendar: querying event types", err, ses)
		return data
	}
	data.EventTypes = types

	roles, err := svc.repo.QueryRoles(ctx)
	if err != nil {
		svc.logger.Error("calendar: querying roles", err, ses)
		return data
	}
	data.Roles = roles
	return data
}

func (svc *Service) attachRecipients(ctx context.Context, evts []Event) error {
	if len(evts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(evts))
	for i := range evts {
		evts[i].Recipients = []Recipient{}
		ids = append(ids, evts[i].ID)
	}
	recips, err := svc.repo.QueryRecipients(ctx, ids)
	if err != nil {
		return err
	}
	byEvent := make(map[string][]Recipient, len(evts))
	for _, r := range recips {
		byEvent[r.EventID] = append(byEvent[r.EventID], r)
	}
	for i := range evts {
		if rs, ok := byEvent[evts[i].ID]; ok {
			evts[i].Recipients = rs
		}
	}
	return nil
}

func (svc *Service) Get(ctx context.Context, ses core.Session, id string) (Event, error) {
	evt, err := svc.getOwned(ctx, ses, id)
	if err != nil {
		return Event{}, err
	}
	if err = svc.attachRecipients(ctx, []Event{evt}); err != nil {
		return Event{}, errors.Wrap(err, "querying event recipients")
	}
	return evt, nil
}

// Create writes the event row and its recipient rows in one transaction.
func (svc *Service) Create(ctx context.Context, ses core.Session, ne NewEvent) (Event, error) {
	if err := ne.Validate(); err != nil {
		return Event{}, err
	}
	starts, ends, err := svc.normalizeDates(ne.StartDate, ne.EndDate, ses)
	if err != nil {
		return Event{}, err
	}

	now := time.Now().UTC()
	evt := Event{
		Title:        ne.Title,
		Description:  ne.Description,
		SchoolID:     ses.SchoolID,
		SchoolYearID: ne.SchoolYearID,
		EventTypeID:  ne.EventTypeID,
		StartsAt:     starts,
		EndsAt:       ends,
		AllDay:       true,
		StatusID:     StatusScheduled,
		CreatedBy:    ses.UserID,
		Recipients:   []Recipient{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx, err := svc.begin(ctx)
	if err != nil {
		return Event{}, err
	}
	evt, err = svc.repo.CreateEvent(ctx, evt, svc.exec(tx)...)
	if err != nil {
		svc.rollback(tx)
		return Event{}, errors.Wrap(err, "inserting event")
	}
	evt.Recipients = []Recipient{}
	if len(ne.RecipientRoles) > 0 {
		recips, err := svc.repo.CreateRecipients(ctx, evt.ID, ne.RecipientRoles, svc.exec(tx)...)
		if err != nil {
			svc.rollback(tx)
			return Event{}, errors.Wrap(err, "inserting event recipients")
		}
		evt.Recipients = recips
	}
	if err = svc.commit(tx); err != nil {
		return Event{}, errors.Wrap(err, "committing event")
	}

	svc.notify(evt)
	return evt, nil
}

// Update rewrites the event row and replaces its recipients wholesale
// (delete-all-then-insert) in one transaction. The owning school and school
// year are immutable.
func (svc *Service) Update(ctx context.Context, ses core.Session, id string, ue UpdateEvent) (Event, error) {
	orig, err := svc.getOwned(ctx, ses, id)
	if err != nil {
		return Event{}, err
	}
	if orig.Deleted {
		return Event{}, ErrNotFound
	}
	if err = ue.Validate(); err != nil {
		return Event{}, err
	}
	starts, ends, err := svc.normalizeDates(ue.StartDate, ue.EndDate, ses)
	if err != nil {
		return Event{}, err
	}

	evt := orig
	evt.Title = ue.Title
	evt.Description = ue.Description
	evt.EventTypeID = ue.EventTypeID
	evt.StartsAt = starts
	evt.EndsAt = ends
	evt.AllDay = true
	if ue.StatusID != 0 {
		evt.StatusID = ue.StatusID
	}
	evt.UpdatedAt = time.Now().UTC()

	tx, err := svc.begin(ctx)
	if err != nil {
		return Event{}, err
	}
	evt, err = svc.repo.UpdateEvent(ctx, evt, svc.exec(tx)...)
	if err != nil {
		svc.rollback(tx)
		return Event{}, errors.Wrap(err, "updating event")
	}
	if err = svc.repo.DeleteRecipients(ctx, evt.ID, svc.exec(tx)...); err != nil {
		svc.rollback(tx)
		return Event{}, errors.Wrap(err, "clearing event recipients")
	}
	evt.Recipients = []Recipient{}
	if len(ue.RecipientRoles) > 0 {
		recips, err := svc.repo.CreateRecipients(ctx, evt.ID, ue.RecipientRoles, svc.exec(tx)...)
		if err != nil {
			svc.rollback(tx)
			return Event{}, errors.Wrap(err, "inserting event recipients")
		}
		evt.Recipients = recips
	}
	if err = svc.commit(tx); err != nil {
		return Event{}, errors.Wrap(err, "committing event")
	}
	return evt, nil
}

// Delete soft-deletes: the row keeps its data and stays addressable for
// restore. Nothing is ever physically removed.
func (svc *Service) Delete(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.DeleteEvent(ctx, id)
}

func (svc *Service) Restore(ctx context.Context, ses core.Session, id string) error {
	if _, err := svc.getOwned(ctx, ses, id); err != nil {
		return err
	}
	return svc.repo.RestoreEvent(ctx, id)
}

// getOwned scopes lookups to the session's school; foreign events read as
// not found.
func (svc *Service) getOwned(ctx context.Context, ses core.Session, id string) (Event, error) {
	evt, err := svc.repo.GetEventByID(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if evt.SchoolID != ses.SchoolID {
		return Event{}, ErrNotFound
	}
	return evt, nil
}

func (svc *Service) normalizeDates(startRaw, endRaw string, ses core.Session) (starts, ends time.Time, err error) {
	starts, ok := correctUTCDate(startRaw)
	if !ok {
		svc.logger.Warn(fmt.Sprintf("event: unparseable start date %q, falling back to today", startRaw), ses)
	}
	if endRaw == "" {
		return starts, starts, nil
	}
	ends, ok = correctUTCDate(endRaw)
	if !ok {
		svc.logger.Warn(fmt.Sprintf("event: unparseable end date %q, falling back to today", endRaw), ses)
	}
	if ends.Before(starts) {
		return starts, ends, core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "end date cannot precede start date"})
	}
	return starts, ends, nil
}

// notify emails the school's notification addresses about a published event.
// Fire-and-forget: the mail service sends asynchronously and failures only
// surface in its own logs.
func (svc *Service) notify(evt Event) {
	if svc.mailSvc == nil || len(svc.conf.NotificationEmails) == 0 {
		return
	}
	to := make([]mail.Address, 0, len(svc.conf.NotificationEmails))
	for _, addr := range svc.conf.NotificationEmails {
		to = append(to, mail.Address{Address: addr})
	}
	roleNames := make([]string, 0, len(evt.Recipients))
	for _, r := range evt.Recipients {
		roleNames = append(roleNames, TranslateRole(RoleName(r.RoleID)))
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           to,
		Subject:      "Nuevo evento: " + evt.Title,
		TemplateName: "event-created",
		TemplateData: struct {
			Title       string
			Description string
			StartsOn    string
			EndsOn      string
			Roles       []string
		}{
			Title:       evt.Title,
			Description: evt.Description,
			StartsOn:    evt.StartsAt.Format("2006-01-02"),
			EndsOn:      evt.EndsAt.Format("2006-01-02"),
			Roles:       roleNames,
		},
	})
}

// The in-memory repositories run without a database handle; transactions only
// exist when a real DB is wired in.
func (svc *Service) begin(ctx context.Context) (core.DBTransactor, error) {
	if svc.db == nil {
		return nil, nil
	}
	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	return tx, nil
}

func (svc *Service) exec(tx core.DBTransactor) []core.DBExecutor {
	if tx == nil {
		return nil
	}
	return []core.DBExecutor{tx}
}

func (svc *Service) rollback(tx core.DBTransactor) {
	if tx != nil {
		_ = tx.Rollback()
	}
}

func (svc *Service) commit(tx core.DBTransactor) error {
	if tx == nil {
		return nil
	}
	return tx.Commit()
}
