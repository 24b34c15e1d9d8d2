package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/tarpaulin-service/internal/events"
	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
)

const rosterSheet = "Roster"

type enrollmentService struct {
	repo      repositories.Repository
	access    AccessService
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEnrollmentService(
	repo repositories.Repository,
	access AccessService,
	publisher events.EventPublisher,
	logger *slog.Logger,
) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		access:    access,
		publisher: publisher,
		logger:    logger,
	}
}

// Update enrolls the students in req.Add and drops those in req.Remove.
// Every id is checked before anything is written; adding an enrolled
// student or removing an absent one changes nothing.
func (s *enrollmentService) Update(ctx context.Context, sub string, courseID int64, req *UpdateEnrollmentRequest) error {
	requester, course, err := s.access.AuthorizeCourseManager(ctx, sub, courseID, "enroll")
	if err != nil {
		return err
	}

	if req == nil {
		return ErrInvalidBody
	}
	add := uniqueIDs(req.Add)
	remove := uniqueIDs(req.Remove)
	if len(add) == 0 && len(remove) == 0 {
		return ErrInvalidBody
	}

	removing := make(map[int64]struct{}, len(remove))
	for _, id := range remove {
		removing[id] = struct{}{}
	}
	for _, id := range add {
		if _, ok := removing[id]; ok {
			return fmt.Errorf("%w: student %d is both added and removed", ErrEnrollmentConflict, id)
		}
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		// Load and check every student first
		toAdd, err := loadStudents(ctx, tx, add)
		if err != nil {
			return err
		}
		toRemove, err := loadStudents(ctx, tx, remove)
		if err != nil {
			return err
		}

		for _, student := range toAdd {
			if !student.AddCourse(course.ID) {
				continue
			}
			if err := tx.User().UpdateCourses(ctx, student); err != nil {
				return storeError("enroll student", err)
			}
		}
		for _, student := range toRemove {
			if !student.RemoveCourse(course.ID) {
				continue
			}
			if err := tx.User().UpdateCourses(ctx, student); err != nil {
				return storeError("unenroll student", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Enrollment updated", "course_id", course.ID, "added", len(add), "removed", len(remove))
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.EnrollmentUpdated, events.EnrollmentEvent{
		CourseID: course.ID,
		Added:    add,
		Removed:  remove,
		ActorID:  requester.ID,
	}))

	return nil
}

func (s *enrollmentService) List(ctx context.Context, sub string, courseID int64) ([]int64, error) {
	_, course, err := s.access.AuthorizeCourseManager(ctx, sub, courseID, "read")
	if err != nil {
		return nil, err
	}

	students, err := s.enrolled(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(students))
	for _, student := range students {
		ids = append(ids, student.ID)
	}
	return ids, nil
}

// ExportRoster renders the enrolled students as an xlsx workbook with one
// row per student.
func (s *enrollmentService) ExportRoster(ctx context.Context, sub string, courseID int64) ([]byte, error) {
	_, course, err := s.access.AuthorizeCourseManager(ctx, sub, courseID, "export")
	if err != nil {
		return nil, err
	}

	students, err := s.enrolled(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close roster workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return nil, fmt.Errorf("failed to name roster sheet: %w", err)
	}
	if err := f.SetSheetRow(rosterSheet, "A1", &[]interface{}{"student_id", "sub"}); err != nil {
		return nil, fmt.Errorf("failed to write roster header: %w", err)
	}
	for i, student := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(rosterSheet, cell, &[]interface{}{student.ID, student.Sub}); err != nil {
			return nil, fmt.Errorf("failed to write roster row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render roster: %w", err)
	}

	s.logger.Info("Roster exported", "course_id", course.ID, "students", len(students))
	return buf.Bytes(), nil
}

// enrolled returns the students whose course list holds courseID, in store
// scan order
func (s *enrollmentService) enrolled(ctx context.Context, courseID int64) ([]*models.User, error) {
	students, err := s.repo.User().ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, storeError("list students", err)
	}

	enrolled := make([]*models.User, 0, len(students))
	for _, student := range students {
		if student.InCourse(courseID) {
			enrolled = append(enrolled, student)
		}
	}
	return enrolled, nil
}

// loadStudents fetches every id and fails with ErrEnrollmentConflict when
// one is missing or not a student
func loadStudents(ctx context.Context, repo repositories.Repository, ids []int64) ([]*models.User, error) {
	students := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := repo.User().GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: user %d does not exist", ErrEnrollmentConflict, id)
			}
			return nil, storeError("get student", err)
		}
		if user.Role != models.RoleStudent {
			return nil, fmt.Errorf("%w: user %d is not a student", ErrEnrollmentConflict, id)
		}
		students = append(students, user)
	}
	return students, nil
}

// uniqueIDs drops repeated ids, keeping first occurrences in order
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
