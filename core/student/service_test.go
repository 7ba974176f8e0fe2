package student_test

import (
	"context"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/student"
	"github.com/ltoral/escolar/storage/database/dummy"
)

var ses = core.Session{UserID: "usr-1", SchoolID: "sch-1"}

func TestMain(m *testing.M) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	os.Exit(m.Run())
}

func setup(t *testing.T) *student.Service {
	db, err := dummydb.Open()
	require.NoError(t, err)
	return student.NewService(nil, dummydb.NewStudentRepository(db))
}

func newStudent() student.NewStudent {
	return student.NewStudent{
		FirstName:    "Ana",
		PaternalName: "López",
		MaternalName: "García",
		CURP:         "LOGA100215MDFPRN08",
		BirthDate:    "2010-02-15",
		GenderID:     student.GenderFemale,
		Email:        "Ana@Example.COM",
	}
}

func Test_Service_Create(t *testing.T) {
	svc := setup(t)

	std, err := svc.Create(context.Background(), ses, newStudent())
	require.NoError(t, err)

	assert.NotEmpty(t, std.ID)
	assert.Equal(t, "Ana", std.FirstName)
	assert.Equal(t, "LOGA100215MDFPRN08", std.CURP)
	assert.Equal(t, "2010-02-15", std.BirthDate.Format("2006-01-02"))
	// emails are normalized to lowercase
	assert.Equal(t, "ana@example.com", std.Email)
	assert.Equal(t, ses.SchoolID, std.SchoolID)
	assert.Equal(t, student.StatusEnrolled, std.StatusID)
}

func Test_Service_Create_uppercasesCURP(t *testing.T) {
	svc := setup(t)

	ns := newStudent()
	ns.CURP = "loga100215mdfprn08"
	std, err := svc.Create(context.Background(), ses, ns)
	require.NoError(t, err)
	assert.Equal(t, "LOGA100215MDFPRN08", std.CURP)
}

func Test_Service_Create_validates(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*student.NewStudent)
	}{
		{name: "missing first name", mutate: func(ns *student.NewStudent) { ns.FirstName = "" }},
		{name: "malformed curp", mutate: func(ns *student.NewStudent) { ns.CURP = "NOT-A-CURP" }},
		{name: "short curp", mutate: func(ns *student.NewStudent) { ns.CURP = "LOGA100215M" }},
		{name: "malformed birth date", mutate: func(ns *student.NewStudent) { ns.BirthDate = "15/02/2010" }},
		{name: "bad gender", mutate: func(ns *student.NewStudent) { ns.GenderID = 3 }},
		{name: "bad email", mutate: func(ns *student.NewStudent) { ns.Email = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := newStudent()
			tt.mutate(&ns)
			_, err := svc.Create(ctx, ses, ns)
			_, ok := err.(validator.ValidationErrors)
			assert.True(t, ok, "want validator.ValidationErrors; got %T", err)
		})
	}
}

func Test_Service_Create_curpUniqueness(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ses, newStudent())
	require.NoError(t, err)

	ns := newStudent()
	ns.FirstName = "Otra"
	_, err = svc.Create(ctx, ses, ns)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError; got %T", err)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "curp", vErr.Fields[0].Field)
}

func Test_Service_Update(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	std, err := svc.Create(ctx, ses, newStudent())
	require.NoError(t, err)

	// keeping its own CURP does not collide with itself
	up, err := svc.Update(ctx, ses, std.ID, student.UpdateStudent{
		FirstName:    "Ana María",
		PaternalName: "López",
		CURP:         std.CURP,
		BirthDate:    "2010-02-15",
		GenderID:     student.GenderFemale,
		StatusID:     student.StatusGraduated,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", up.FirstName)
	assert.Equal(t, student.StatusGraduated, up.StatusID)
	assert.Equal(t, std.SchoolID, up.SchoolID)
}

func Test_Service_DeleteRestore(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	std, err := svc.Create(ctx, ses, newStudent())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ses, std.ID))

	got, err := svc.Get(ctx, ses, std.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.NotNil(t, got.DeletedAt)
	// deleting does not touch the status
	assert.Equal(t, student.StatusEnrolled, got.StatusID)

	// the freed CURP may be reused while the row is deleted
	_, err = svc.Create(ctx, ses, newStudent())
	require.NoError(t, err)

	require.NoError(t, svc.Restore(ctx, ses, std.ID))
	got, err = svc.Get(ctx, ses, std.ID)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
	assert.Nil(t, got.DeletedAt)
}

func Test_Service_scopedToSchool(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	std, err := svc.Create(ctx, ses, newStudent())
	require.NoError(t, err)

	other := core.Session{UserID: "usr-9", SchoolID: "sch-other"}
	_, err = svc.Get(ctx, other, std.ID)
	assert.Equal(t, student.ErrNotFound, err)
	assert.Equal(t, student.ErrNotFound, svc.Delete(ctx, other, std.ID))
}

func Test_Service_AllBySchool(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	std, err := svc.Create(ctx, ses, newStudent())
	require.NoError(t, err)

	gone := newStudent()
	gone.CURP = "GAXA090101HDFRRN01"
	deleted, err := svc.Create(ctx, ses, gone)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, ses, deleted.ID))

	col, err := svc.AllBySchool(ctx, ses)
	require.NoError(t, err)
	require.Len(t, col.Active, 1)
	assert.Equal(t, std.ID, col.Active[0].ID)
	require.Len(t, col.Deleted, 1)
	assert.Equal(t, deleted.ID, col.Deleted[0].ID)
}
