package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories/objectstore"
	"github.com/SAP-F-2025/tarpaulin-service/pkg"
)

func newCachedRepository(t *testing.T) (repositories.Repository, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	db, err := pkg.OpenDatabase("sqlite", "", true)
	if err != nil {
		t.Fatalf("OpenDatabase returned error: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	manager := NewRepositoryManager(RepositoryConfig{
		DB:          db,
		Blob:        objectstore.NewMemoryStore(),
		RedisClient: client,
	})
	if err := manager.Initialize(); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	t.Cleanup(func() { _ = manager.Shutdown(context.Background()) })

	return manager.GetRepository(), db, mr
}

func seedCourse(t *testing.T, repo repositories.Repository, subject string) *models.Course {
	t.Helper()
	course := &models.Course{Subject: subject, Number: 101, Title: "Intro", Term: "F24", InstructorID: 2}
	if err := repo.Course().Create(context.Background(), course); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return course
}

func TestCoursePostgreSQL_GetByIDIsCached(t *testing.T) {
	repo, db, mr := newCachedRepository(t)
	ctx := context.Background()
	course := seedCourse(t, repo, "CS")

	if _, err := repo.Course().GetByID(ctx, course.ID); err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if !mr.Exists("tarpaulin:course:id:1") {
		t.Fatal("course should be cached after a read")
	}

	// a write behind the repository's back is not seen until invalidation
	if err := db.Model(&models.Course{}).Where("id = ?", course.ID).Update("title", "Changed").Error; err != nil {
		t.Fatal(err)
	}
	got, err := repo.Course().GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Title != "Intro" {
		t.Errorf("expected cached title, got %q", got.Title)
	}

	got.Title = "Updated"
	if err := repo.Course().Update(ctx, got); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	got, err = repo.Course().GetByID(ctx, course.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Title != "Updated" {
		t.Errorf("expected fresh title after update, got %q", got.Title)
	}
}

func TestCoursePostgreSQL_MissingCourseIsNotCached(t *testing.T) {
	repo, _, mr := newCachedRepository(t)

	_, err := repo.Course().GetByID(context.Background(), 42)
	if !errors.Is(err, repositories.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if mr.Exists("tarpaulin:course:id:42") {
		t.Error("a miss must not be cached")
	}
}

func TestCoursePostgreSQL_ListPagesInvalidatedByWrites(t *testing.T) {
	repo, _, mr := newCachedRepository(t)
	ctx := context.Background()
	seedCourse(t, repo, "MATH")

	page, err := repo.Course().List(ctx, repositories.CourseFilters{Offset: 0, Limit: 3})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page) != 1 || !mr.Exists("tarpaulin:course:list:0:3") {
		t.Fatalf("expected one cached course, got %d", len(page))
	}

	seedCourse(t, repo, "ART")
	if mr.Exists("tarpaulin:course:list:0:3") {
		t.Fatal("create should drop cached pages")
	}

	page, err = repo.Course().List(ctx, repositories.CourseFilters{Offset: 0, Limit: 3})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(page) != 2 || page[0].Subject != "ART" {
		t.Errorf("unexpected page after create: %+v", page)
	}
}

func TestCoursePostgreSQL_TransactionInvalidatesAfterCommit(t *testing.T) {
	repo, _, mr := newCachedRepository(t)
	ctx := context.Background()
	course := seedCourse(t, repo, "CS")

	if _, err := repo.Course().GetByID(ctx, course.ID); err != nil {
		t.Fatal(err)
	}

	rollback := errors.New("rollback")
	err := repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course.Title = "Never"
		if err := tx.Course().Update(ctx, course); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}
	if !mr.Exists("tarpaulin:course:id:1") {
		t.Error("a rolled back transaction must leave the cache alone")
	}

	err = repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		course.Title = "Committed"
		return tx.Course().Update(ctx, course)
	})
	if err != nil {
		t.Fatalf("WithTransaction returned error: %v", err)
	}
	if mr.Exists("tarpaulin:course:id:1") {
		t.Error("commit should invalidate the course")
	}

	got, err := repo.Course().GetByID(ctx, course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Committed" {
		t.Errorf("expected committed title, got %q", got.Title)
	}
}

func TestCoursePostgreSQL_WithoutRedis(t *testing.T) {
	db, err := pkg.OpenDatabase("sqlite", "", true)
	if err != nil {
		t.Fatal(err)
	}
	manager := NewRepositoryManager(RepositoryConfig{DB: db, Blob: objectstore.NewMemoryStore()})
	if err := manager.Initialize(); err != nil {
		t.Fatal(err)
	}
	repo := manager.GetRepository()
	course := seedCourse(t, repo, "CS")

	got, err := repo.Course().GetByID(context.Background(), course.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Subject != "CS" {
		t.Errorf("unexpected course %+v", got)
	}
}
