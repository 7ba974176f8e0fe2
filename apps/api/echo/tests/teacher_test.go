package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/teacher"
)

func Test_teacherApi_query(t *testing.T) {
	app, _ := setup(t)
	ctx := context.Background()

	tch, err := tchSvc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	require.NoError(t, err)

	gone, err := tchSvc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Marta", PaternalName: "Santos", Email: "marta@escuela.mx",
	})
	require.NoError(t, err)
	require.NoError(t, tchSvc.Delete(ctx, ses, gone.ID))
	gone, err = tchSvc.Get(ctx, ses, gone.ID)
	require.NoError(t, err)

	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, teacher.Collection{Active: []teacher.Teacher{tch}, Deleted: []teacher.Teacher{gone}}),
	}
	req, rec := newAuthRequest(http.MethodGet, "/v1/teachers", getToken(t, ses))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_teacherApi_create(t *testing.T) {
	app, _ := setup(t)
	token := getToken(t, ses)

	body := marchallObj(t, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "Luis@Escuela.MX",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/teachers", token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var tch teacher.Teacher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tch))
	assert.NotEmpty(t, tch.ID)
	assert.Equal(t, "luis@escuela.mx", tch.Email)
	assert.Equal(t, ses.SchoolID, tch.SchoolID)
	assert.Equal(t, teacher.StatusActive, tch.StatusID)

	t.Run("duplicate email", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": teacher.ErrEmailExists.Error()}),
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/teachers", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_teacherApi_retrieve(t *testing.T) {
	app, _ := setup(t)
	token := getToken(t, ses)

	tch, err := tchSvc.Create(context.Background(), ses, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	require.NoError(t, err)

	tests := []httpTest{
		{name: "found", path: "/v1/teachers/" + tch.ID, token: token, wantCode: http.StatusOK, wantData: marchallObj(t, tch)},
		{
			name: "not found", path: "/v1/teachers/nope", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "teacher not found"}),
		},
		{
			name: "foreign school", path: "/v1/teachers/" + tch.ID, token: getToken(t, core.Session{UserID: "u", SchoolID: "sch-other"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "teacher not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_teacherApi_update(t *testing.T) {
	app, _ := setup(t)
	token := getToken(t, ses)

	tch, err := tchSvc.Create(context.Background(), ses, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	require.NoError(t, err)

	body := marchallObj(t, teacher.UpdateTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis.r@escuela.mx", StatusID: teacher.StatusInactive,
	})
	req, rec := newAuthRequest(http.MethodPut, "/v1/teachers/"+tch.ID, token, body)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var up teacher.Teacher
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &up))
	assert.Equal(t, "luis.r@escuela.mx", up.Email)
	assert.Equal(t, teacher.StatusInactive, up.StatusID)
}

func Test_teacherApi_destroyRestore(t *testing.T) {
	app, _ := setup(t)
	token := getToken(t, ses)
	ctx := context.Background()

	tch, err := tchSvc.Create(ctx, ses, teacher.NewTeacher{
		FirstName: "Luis", PaternalName: "Ramírez", Email: "luis@escuela.mx",
	})
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodDelete, "/v1/teachers/"+tch.ID, token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	got, err := tchSvc.Get(ctx, ses, tch.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted)

	req, rec = newAuthRequest(http.MethodPost, "/v1/teachers/"+tch.ID+"/restore", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	got, err = tchSvc.Get(ctx, ses, tch.ID)
	require.NoError(t, err)
	assert.False(t, got.Deleted)
}
