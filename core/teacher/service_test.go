package teacher_test

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
	"github.com/ltoral/escolar/core/teacher"
	"github.com/ltoral/escolar/storage/database/dummy"
)

var ses = core.Session{UserID: "usr-1", SchoolID: "sch-1"}

func TestMain(m *testing.M) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validator.New(), translator)

	os.Exit(m.Run())
}

func setup(t *testing.T) *teacher.Service {
	db, err := dummydb.Open()
	require.NoError(t, err)
	return teacher.NewService(nil, dummydb.NewTeacherRepository(db))
}

func Test_Service_Create(t *testing.T) {
	svc := setup(t)

	tch, err := svc.Create(context.Background(), ses, teacher.NewTeacher{
		FirstName:    "Luis",
		PaternalName: "Ramírez",
		Email:        "Luis@Escuela.MX",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, tch.ID)
	assert.Equal(t, "luis@escuela.mx", tch.Email)
	assert.Equal(t, ses.SchoolID, tch.SchoolID)
	assert.Equal(t, teacher.StatusActive, tch.StatusID)
}

func Test_Service_Create_validates(t *testing.T) {
	svc := setup(t)

	_, err := svc.Create(context.Background(), ses, teacher.NewTeacher{
		FirstName:    "Luis",
		PaternalName: "Ramírez",
		Email:        "nope",
	})
	_, ok := err.(validator.ValidationErrors)
	assert.True(t, ok, "want validator.ValidationErrors; got %T", err)
}

func Test_Service_emailUniqueness(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tch, err := svc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	require.NoError(t, err)

	// a second registration with the same email fails, case-insensitively
	_, err = svc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Otro", PaternalName: "Pérez", Email: "LUIS@escuela.mx",
	})
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError; got %T", err)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "email", vErr.Fields[0].Field)

	// keeping its own email on update does not collide with itself
	_, err = svc.Update(ctx, ses, tch.ID, teacher.UpdateTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	assert.NoError(t, err)

	// the freed email may be reused while the row is deleted
	require.NoError(t, svc.Delete(ctx, ses, tch.ID))
	_, err = svc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Otro", PaternalName: "Pérez", Email: "luis@escuela.mx",
	})
	assert.NoError(t, err)
}

func Test_Service_DeleteRestore(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tch, err := svc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ses, tch.ID))
	got, err := svc.Get(ctx, ses, tch.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.NotNil(t, got.DeletedAt)

	// deleted teachers refuse edits
	_, err = svc.Update(ctx, ses, tch.ID, teacher.UpdateTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	assert.Equal(t, teacher.ErrNotFound, err)

	require.NoError(t, svc.Restore(ctx, ses, tch.ID))
	got, err = svc.Get(ctx, ses, tch.ID)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
	assert.Nil(t, got.DeletedAt)
}

func Test_Service_scopedToSchool(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tch, err := svc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	require.NoError(t, err)

	other := core.Session{UserID: "usr-9", SchoolID: "sch-other"}
	_, err = svc.Get(ctx, other, tch.ID)
	assert.Equal(t, teacher.ErrNotFound, err)

	col, err := svc.AllBySchool(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, col.Active)
	assert.Empty(t, col.Deleted)
}
