package event_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/event"
	"github.com/ltoral/escolar/services/email"
	"github.com/ltoral/escolar/services/logger"
	"github.com/ltoral/escolar/storage/database/dummy"
)

var (
	conf *core.Config
	ses  = core.Session{UserID: "usr-1", SchoolID: "sch-1"}
)

func TestMain(m *testing.M) {
	os.Setenv("ENV", "TEST")
	conf = core.NewConfig()
	conf.NotificationEmails = []string{"direccion@escuela.test"}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validator.New(), translator)

	os.Exit(m.Run())
}

func setup(t *testing.T) (*event.Service, *dummydb.DB) {
	db, err := dummydb.Open()
	require.NoError(t, err)

	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	return event.NewService(nil, dummydb.NewEventRepository(db), emailsvc.NewConsoleServiceMock(), logger, conf), db
}

func Test_Service_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	evt, err := svc.Create(ctx, ses, event.NewEvent{
		Title:        "  Junta de padres ",
		SchoolYearID: "yr-1",
		EventTypeID:  1,
		StartDate:    "2026-09-10",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, "Junta de padres", evt.Title)
	assert.Equal(t, ses.SchoolID, evt.SchoolID)
	assert.Equal(t, "yr-1", evt.SchoolYearID)
	assert.Equal(t, ses.UserID, evt.CreatedBy)
	assert.Equal(t, event.StatusScheduled, evt.StatusID)
	assert.True(t, evt.AllDay)
	assert.Equal(t, time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC), evt.StartsAt)
	// no end date: single-day event
	assert.Equal(t, evt.StartsAt, evt.EndsAt)
	assert.Empty(t, evt.Recipients)
	assert.False(t, evt.Deleted)
}

func Test_Service_Create_withRecipients(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	evt, err := svc.Create(ctx, ses, event.NewEvent{
		Title:          "Examen bimestral",
		SchoolYearID:   "yr-1",
		EventTypeID:    2,
		StartDate:      "2026-10-01",
		EndDate:        "2026-10-03",
		RecipientRoles: []int{event.RoleTeacher, event.RoleStudent},
	})
	require.NoError(t, err)
	require.Len(t, evt.Recipients, 2)
	for _, r := range evt.Recipients {
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, evt.ID, r.EventID)
	}

	// the stored event reads back with the same recipients
	got, err := svc.Get(ctx, ses, evt.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, evt.Recipients, got.Recipients)
}

func Test_Service_Create_notifies(t *testing.T) {
	svc, _ := setup(t)

	before := len(emailsvc.SentMessages)
	_, err := svc.Create(context.Background(), ses, event.NewEvent{
		Title:          "Festivo",
		SchoolYearID:   "yr-1",
		EventTypeID:    3,
		StartDate:      "2026-11-20",
		RecipientRoles: []int{event.RoleTutor},
	})
	require.NoError(t, err)

	require.Len(t, emailsvc.SentMessages, before+1)
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	assert.Equal(t, "Nuevo evento: Festivo", msg.Subject)
	assert.Len(t, msg.To, 1)
	assert.Equal(t, "direccion@escuela.test", msg.To[0].Address)
	assert.Contains(t, msg.TextContent, "Festivo")
	assert.Contains(t, msg.TextContent, "Tutor")
}

func Test_Service_Create_validates(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.Create(ctx, ses, event.NewEvent{
			SchoolYearID: "yr-1",
			EventTypeID:  1,
			StartDate:    "2026-09-10",
		})
		_, ok := err.(validator.ValidationErrors)
		assert.True(t, ok, "want validator.ValidationErrors; got %T", err)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.Create(ctx, ses, event.NewEvent{
			Title:        "Junta",
			SchoolYearID: "yr-1",
			EventTypeID:  1,
			StartDate:    "2026-09-10",
			EndDate:      "2026-09-08",
		})
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError; got %T", err)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "end_date", vErr.Fields[0].Field)
	})
}

func Test_Service_Get_scopedToSchool(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	evt, err := svc.Create(ctx, ses, event.NewEvent{
		Title:        "Junta",
		SchoolYearID: "yr-1",
		EventTypeID:  1,
		StartDate:    "2026-09-10",
	})
	require.NoError(t, err)

	// a session from another school reads the event as not found
	other := core.Session{UserID: "usr-9", SchoolID: "sch-other"}
	_, err = svc.Get(ctx, other, evt.ID)
	assert.Equal(t, event.ErrNotFound, err)

	_, err = svc.Get(ctx, ses, "nope")
	assert.Equal(t, event.ErrNotFound, err)
}

func Test_Service_Update(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	evt, err := svc.Create(ctx, ses, event.NewEvent{
		Title:          "Junta",
		SchoolYearID:   "yr-1",
		EventTypeID:    1,
		StartDate:      "2026-09-10",
		RecipientRoles: []int{event.RoleAdmin, event.RoleTeacher},
	})
	require.NoError(t, err)

	up, err := svc.Update(ctx, ses, evt.ID, event.UpdateEvent{
		Title:          "Junta general",
		EventTypeID:    2,
		StartDate:      "2026-09-12",
		EndDate:        "2026-09-13",
		StatusID:       event.StatusCancelled,
		RecipientRoles: []int{event.RoleTutor},
	})
	require.NoError(t, err)

	assert.Equal(t, "Junta general", up.Title)
	assert.Equal(t, 2, up.EventTypeID)
	assert.Equal(t, event.StatusCancelled, up.StatusID)
	// the owning school and year never change
	assert.Equal(t, evt.SchoolID, up.SchoolID)
	assert.Equal(t, evt.SchoolYearID, up.SchoolYearID)
	// recipients are replaced wholesale, not merged
	require.Len(t, up.Recipients, 1)
	assert.Equal(t, event.RoleTutor, up.Recipients[0].RoleID)

	got, err := svc.Get(ctx, ses, evt.ID)
	require.NoError(t, err)
	require.Len(t, got.Recipients, 1)
	assert.Equal(t, event.RoleTutor, got.Recipients[0].RoleID)
}

func Test_Service_Update_clearsRecipients(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	evt, err := svc.Create(ctx, ses, event.NewEvent{
		Title:          "Junta",
		SchoolYearID:   "yr-1",
		EventTypeID:    1,
		StartDate:      "2026-09-10",
		RecipientRoles: []int{event.RoleAdmin},
	})
	require.NoError(t, err)

	// nil roles wipe the previous list too
	up, err := svc.Update(ctx, ses, evt.ID, event.UpdateEvent{
		Title:       "Junta",
		EventTypeID: 1,
		StartDate:   "2026-09-10",
	})
	require.NoError(t, err)
	assert.Empty(t, up.Recipients)
}

func Test_Service_DeleteRestore(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	evt, err := svc.Create(ctx, ses, event.NewEvent{
		Title:        "Junta",
		SchoolYearID: "yr-1",
		EventTypeID:  1,
		StartDate:    "2026-09-10",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ses, evt.ID))

	// deleted events stay addressable by id
	got, err := svc.Get(ctx, ses, evt.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.NotNil(t, got.DeletedAt)

	// but refuse edits
	_, err = svc.Update(ctx, ses, evt.ID, event.UpdateEvent{
		Title:       "Junta",
		EventTypeID: 1,
		StartDate:   "2026-09-10",
	})
	assert.Equal(t, event.ErrNotFound, err)

	require.NoError(t, svc.Restore(ctx, ses, evt.ID))
	got, err = svc.Get(ctx, ses, evt.ID)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
	assert.Nil(t, got.DeletedAt)
}

func Test_Service_CalendarData(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	db.SeedEventTypes(
		event.EventType{ID: 1, Name: "Junta", Color: "#007bff"},
		event.EventType{ID: 2, Name: "Examen", Color: "#dc3545"},
	)
	db.SeedRoles(
		event.Role{ID: event.RoleAdmin, Name: "admin"},
		event.Role{ID: event.RoleTeacher, Name: "teacher"},
	)

	evt1, err := svc.Create(ctx, ses, event.NewEvent{
		Title:          "Junta",
		SchoolYearID:   "yr-1",
		EventTypeID:    1,
		StartDate:      "2026-09-10",
		RecipientRoles: []int{event.RoleTeacher},
	})
	require.NoError(t, err)
	evt2, err := svc.Create(ctx, ses, event.NewEvent{
		Title:        "Examen",
		SchoolYearID: "yr-2",
		EventTypeID:  2,
		StartDate:    "2026-10-01",
	})
	require.NoError(t, err)

	// deleted events drop out of the calendar
	gone, err := svc.Create(ctx, ses, event.NewEvent{
		Title:        "Cancelado",
		SchoolYearID: "yr-1",
		EventTypeID:  1,
		StartDate:    "2026-09-15",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, ses, gone.ID))

	data := svc.CalendarData(ctx, ses, "")
	require.Len(t, data.Events, 2)
	assert.Len(t, data.EventTypes, 2)
	assert.Len(t, data.Roles, 2)

	// recipients come attached; events without any get an empty list
	byID := make(map[string]event.Event, len(data.Events))
	for _, e := range data.Events {
		byID[e.ID] = e
	}
	require.Len(t, byID[evt1.ID].Recipients, 1)
	assert.Equal(t, event.RoleTeacher, byID[evt1.ID].Recipients[0].RoleID)
	assert.Empty(t, byID[evt2.ID].Recipients)

	// narrowing to one school year
	data = svc.CalendarData(ctx, ses, "yr-1")
	require.Len(t, data.Events, 1)
	assert.Equal(t, evt1.ID, data.Events[0].ID)

	// another school sees nothing
	data = svc.CalendarData(ctx, core.Session{UserID: "u", SchoolID: "sch-other"}, "")
	assert.Empty(t, data.Events)
}

func Test_Service_CalendarData_degrades(t *testing.T) {
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	svc := event.NewService(nil, failingRepo{}, nil, logger, conf)

	// a failing sub-fetch truncates the response instead of erroring
	data := svc.CalendarData(context.Background(), ses, "")
	assert.NotNil(t, data.Events)
	assert.Empty(t, data.Events)
	assert.NotNil(t, data.EventTypes)
	assert.Empty(t, data.EventTypes)
	assert.NotNil(t, data.Roles)
	assert.Empty(t, data.Roles)
}

type failingRepo struct{}

var errBoom = errors.New("boom")

func (failingRepo) QueryEvents(context.Context, event.QueryFilter, ...core.DBExecutor) ([]event.Event, error) {
	return nil, errBoom
}
func (failingRepo) GetEventByID(context.Context, string, ...core.DBExecutor) (event.Event, error) {
	return event.Event{}, errBoom
}
func (failingRepo) CreateEvent(context.Context, event.Event, ...core.DBExecutor) (event.Event, error) {
	return event.Event{}, errBoom
}
func (failingRepo) UpdateEvent(context.Context, event.Event, ...core.DBExecutor) (event.Event, error) {
	return event.Event{}, errBoom
}
func (failingRepo) DeleteEvent(context.Context, string, ...core.DBExecutor) error  { return errBoom }
func (failingRepo) RestoreEvent(context.Context, string, ...core.DBExecutor) error { return errBoom }
func (failingRepo) QueryEventTypes(context.Context, ...core.DBExecutor) ([]event.EventType, error) {
	return nil, errBoom
}
func (failingRepo) QueryRoles(context.Context, ...core.DBExecutor) ([]event.Role, error) {
	return nil, errBoom
}
func (failingRepo) QueryRecipients(context.Context, []string, ...core.DBExecutor) ([]event.Recipient, error) {
	return nil, errBoom
}
func (failingRepo) CreateRecipients(context.Context, string, []int, ...core.DBExecutor) ([]event.Recipient, error) {
	return nil, errBoom
}
func (failingRepo) DeleteRecipients(context.Context, string, ...core.DBExecutor) error {
	return errBoom
}
