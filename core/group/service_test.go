package group_test

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
	"github.com/ltoral/escolar/core/group"
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

func setup(t *testing.T) (*group.Service, *dummydb.DB) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	return group.NewService(nil, dummydb.NewGroupRepository(db)), db
}

func Test_Service_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	grp, err := svc.Create(ctx, ses, group.NewGroup{
		Grade:        1,
		Label:        " A ",
		SchoolYearID: "yr-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, grp.ID)
	assert.Equal(t, 1, grp.Grade)
	// labels are normalized to lowercase
	assert.Equal(t, "a", grp.Label)
	assert.Equal(t, ses.SchoolID, grp.SchoolID)
	assert.Equal(t, group.StatusActive, grp.StatusID)
	assert.False(t, grp.Deleted)
}

func Test_Service_Create_uniqueness(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)

	// same grade+label+year is taken, case-insensitively
	_, err = svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "A", SchoolYearID: "yr-1"})
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError; got %T", err)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "label", vErr.Fields[0].Field)

	// same label in another grade or year is fine
	_, err = svc.Create(ctx, ses, group.NewGroup{Grade: 2, Label: "a", SchoolYearID: "yr-1"})
	assert.NoError(t, err)
	_, err = svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-2"})
	assert.NoError(t, err)
}

func Test_Service_Update(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	grp, err := svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)

	// updating with its own grade+label does not collide with itself
	up, err := svc.Update(ctx, ses, grp.ID, group.UpdateGroup{Grade: 1, Label: "a", StatusID: group.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, group.StatusCompleted, up.StatusID)

	// colliding with another group fails
	other, err := svc.Create(ctx, ses, group.NewGroup{Grade: 2, Label: "b", SchoolYearID: "yr-1"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, ses, other.ID, group.UpdateGroup{Grade: 1, Label: "a"})
	_, ok := err.(*core.ValidationError)
	assert.True(t, ok, "want *core.ValidationError; got %T", err)
}

func Test_Service_DeleteRestore(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	grp, err := svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, ses, grp.ID))

	// deleting forces the group inactive
	got, err := svc.Get(ctx, ses, grp.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)
	assert.NotNil(t, got.DeletedAt)
	assert.Equal(t, group.StatusInactive, got.StatusID)

	// the freed grade+label may be reused while the group is deleted
	_, err = svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)

	// restore clears the flags but keeps the status it had at deletion
	require.NoError(t, svc.Restore(ctx, ses, grp.ID))
	got, err = svc.Get(ctx, ses, grp.ID)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
	assert.Nil(t, got.DeletedAt)
	assert.Equal(t, group.StatusInactive, got.StatusID)
}

func Test_Service_scopedToSchool(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	grp, err := svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)

	other := core.Session{UserID: "usr-9", SchoolID: "sch-other"}
	_, err = svc.Get(ctx, other, grp.ID)
	assert.Equal(t, group.ErrNotFound, err)
	assert.Equal(t, group.ErrNotFound, svc.Delete(ctx, other, grp.ID))
	assert.Equal(t, group.ErrNotFound, svc.Restore(ctx, other, grp.ID))
}

func Test_Service_AllBySchool(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "b", SchoolYearID: "yr-1"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, ses, b.ID))

	// foreign rows never show up
	_, err = svc.Create(ctx, core.Session{UserID: "u", SchoolID: "sch-other"}, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)

	col, err := svc.AllBySchool(ctx, ses)
	require.NoError(t, err)
	require.Len(t, col.Active, 1)
	assert.Equal(t, a.ID, col.Active[0].ID)
	require.Len(t, col.Deleted, 1)
	assert.Equal(t, b.ID, col.Deleted[0].ID)
}

func Test_Service_Memberships(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	grp, err := svc.Create(ctx, ses, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)
	foreign, err := svc.Create(ctx, core.Session{UserID: "u", SchoolID: "sch-other"}, group.NewGroup{Grade: 1, Label: "a", SchoolYearID: "yr-1"})
	require.NoError(t, err)

	db.SeedMemberships(
		group.StudentGroup{ID: "sg-1", StudentID: "std-1", GroupID: grp.ID, StatusID: group.MembershipActive},
		group.StudentGroup{ID: "sg-2", StudentID: "std-2", GroupID: foreign.ID, StatusID: group.MembershipActive},
	)

	sgs, err := svc.Memberships(ctx, ses)
	require.NoError(t, err)
	require.Len(t, sgs, 1)
	assert.Equal(t, "sg-1", sgs[0].ID)
}
