package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/tarpaulin-service/internal/events"
	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/ratelimit"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories/objectstore"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/tarpaulin-service/internal/validator"
	"github.com/SAP-F-2025/tarpaulin-service/pkg"
)

const (
	adminSub       = "auth0|admin"
	instructorSub  = "auth0|instructor"
	instructor2Sub = "auth0|instructor2"
	studentSub     = "auth0|student"
	student2Sub    = "auth0|student2"
	duplicateSub   = "auth0|twice"
	strangerSub    = "auth0|nobody"
)

type fakeExchanger struct {
	token string
	err   error
	calls int
}

func (f *fakeExchanger) Exchange(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.token, f.err
}

type fakeInspector struct {
	sub string
	err error
}

func (f *fakeInspector) Inspect(_ context.Context, _ string) (string, error) {
	return f.sub, f.err
}

type testEnv struct {
	db        *gorm.DB
	blobs     *objectstore.MemoryStore
	publisher *events.MockEventPublisher
	exchanger *fakeExchanger
	inspector *fakeInspector
	manager   ServiceManager
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv builds every service on an in-memory sqlite store seeded with
// users 1..7:
//
//	1 admin, 2 and 3 instructors, 4 and 5 students, 6 and 7 share a subject
func newTestEnv(t *testing.T, limiter ratelimit.Limiter) *testEnv {
	t.Helper()

	db, err := pkg.OpenDatabase("sqlite", "", true)
	if err != nil {
		t.Fatalf("OpenDatabase returned error: %v", err)
	}

	blobs := objectstore.NewMemoryStore()
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db, Blob: blobs})
	if err := repoManager.Initialize(); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	users := []*models.User{
		{ID: 1, Sub: adminSub, Role: models.RoleAdmin},
		{ID: 2, Sub: instructorSub, Role: models.RoleInstructor, Courses: []int64{}},
		{ID: 3, Sub: instructor2Sub, Role: models.RoleInstructor, Courses: []int64{}},
		{ID: 4, Sub: studentSub, Role: models.RoleStudent, Courses: []int64{}},
		{ID: 5, Sub: student2Sub, Role: models.RoleStudent, Courses: []int64{}},
		{ID: 6, Sub: duplicateSub, Role: models.RoleAdmin},
		{ID: 7, Sub: duplicateSub, Role: models.RoleAdmin},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("failed to seed users: %v", err)
	}

	logger := quietLogger()
	env := &testEnv{
		db:        db,
		blobs:     blobs,
		publisher: events.NewMockEventPublisher(logger),
		exchanger: &fakeExchanger{token: "issued-token"},
		inspector: &fakeInspector{sub: studentSub},
	}

	if limiter == nil {
		limiter = ratelimit.New(nil, ratelimit.Config{})
	}

	env.manager = NewServiceManager(Dependencies{
		Repositories: repoManager,
		Exchanger:    env.exchanger,
		Inspector:    env.inspector,
		Limiter:      limiter,
		Publisher:    env.publisher,
		Validator:    validator.New(),
		Logger:       logger,
	}, ServiceManagerConfig{ImagesEnabled: true})

	if err := env.manager.Initialize(context.Background()); err != nil {
		t.Fatalf("service manager Initialize returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = env.manager.Shutdown(context.Background())
	})

	return env
}

func (e *testEnv) user(t *testing.T, id int64) *models.User {
	t.Helper()
	var user models.User
	if err := e.db.First(&user, id).Error; err != nil {
		t.Fatalf("failed to load user %d: %v", id, err)
	}
	return &user
}

func (e *testEnv) setCourses(t *testing.T, id int64, courses ...int64) {
	t.Helper()
	user := e.user(t, id)
	user.Courses = courses
	if err := e.db.Save(user).Error; err != nil {
		t.Fatalf("failed to set courses of user %d: %v", id, err)
	}
}

func (e *testEnv) createCourse(t *testing.T, subject string, instructorID int64) *models.Course {
	t.Helper()
	number := validator.FlexInt(101)
	instructor := validator.FlexInt(instructorID)
	course, err := e.manager.Course().Create(context.Background(), adminSub, &CreateCourseRequest{
		Subject:      subject,
		Number:       &number,
		Title:        "Intro",
		Term:         "F24",
		InstructorID: &instructor,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return course
}

func flexInt(n int64) *validator.FlexInt {
	v := validator.FlexInt(n)
	return &v
}

func strPtr(s string) *string {
	return &s
}
