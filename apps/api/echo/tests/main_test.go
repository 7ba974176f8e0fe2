package tests

import (
	"log"
	"net/http"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/ltoral/escolar/apps/api/echo"
	"github.com/ltoral/escolar/core"
	"github.com/ltoral/escolar/core/event"
	"github.com/ltoral/escolar/core/group"
	"github.com/ltoral/escolar/core/schoolyear"
	"github.com/ltoral/escolar/core/student"
	"github.com/ltoral/escolar/core/teacher"
	"github.com/ltoral/escolar/services/email"
	"github.com/ltoral/escolar/services/logger"
	"github.com/ltoral/escolar/storage/database/dummy"
)

var (
	conf *core.Config

	ses = core.Session{UserID: "usr-1", SchoolID: "sch-1"}

	// services behind the server under test; reassigned by setup
	evtSvc *event.Service
	grpSvc *group.Service
	stdSvc *student.Service
	tchSvc *teacher.Service
	yrSvc  *schoolyear.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	os.Setenv("ENV", "TEST")
	conf = core.NewConfig()
	conf.Debug = false // error responses render like in PROD

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	os.Exit(m.Run())
}

// setup wires a fresh in-memory DB behind a full server for each test.
func setup(t *testing.T) (*echoapi.Server, *dummydb.DB) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}

	stdLogger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := emailsvc.NewConsoleServiceMock()

	evtSvc = event.NewService(nil, dummydb.NewEventRepository(db), mailSvc, stdLogger, conf)
	grpSvc = group.NewService(nil, dummydb.NewGroupRepository(db))
	stdSvc = student.NewService(nil, dummydb.NewStudentRepository(db))
	tchSvc = teacher.NewService(nil, dummydb.NewTeacherRepository(db))
	yrSvc = schoolyear.NewService(nil, dummydb.NewSchoolYearRepository(db))

	app := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        stdLogger,
			EventSvc:      evtSvc,
			GroupSvc:      grpSvc,
			StudentSvc:    stdSvc,
			TeacherSvc:    tchSvc,
			SchoolYearSvc: yrSvc,
		},
	)
	return app, db
}

func Test_home(t *testing.T) {
	app, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "Welcome to Escolar API!" {
		t.Errorf("failed! data = %v", rec.Body.String())
	}
}

func Test_authRequired(t *testing.T) {
	app, _ := setup(t)
	wantData := marchallObj(t, errMissingToken)

	tests := []httpTest{
		{name: "calendar", method: http.MethodGet, path: "/v1/calendar"},
		{name: "create event", method: http.MethodPost, path: "/v1/events"},
		{name: "query groups", method: http.MethodGet, path: "/v1/groups"},
		{name: "query students", method: http.MethodGet, path: "/v1/students"},
		{name: "query teachers", method: http.MethodGet, path: "/v1/teachers"},
		{name: "query school years", method: http.MethodGet, path: "/v1/school-years"},
		{name: "current school year", method: http.MethodGet, path: "/v1/school-years/current"},
		{name: "dashboard", method: http.MethodGet, path: "/v1/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.wantCode = http.StatusUnauthorized
			tt.wantData = wantData
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_schoollessTokenRejected(t *testing.T) {
	app, _ := setup(t)

	// a token without a school binding authenticates nothing
	token := getToken(t, core.Session{UserID: "usr-1"})
	req, rec := newAuthRequest(http.MethodGet, "/v1/groups", token)
	app.ServeHTTP(rec, req)

	tt := httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, httpErr{Error: "not authenticated"}),
	}
	checkCodeAndData(t, tt, rec)
}
