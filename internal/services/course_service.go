package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/tarpaulin-service/internal/events"
	"github.com/SAP-F-2025/tarpaulin-service/internal/models"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories"
	"github.com/SAP-F-2025/tarpaulin-service/internal/validator"
)

type courseService struct {
	repo      repositories.Repository
	access    AccessService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *slog.Logger
}

func NewCourseService(
	repo repositories.Repository,
	access AccessService,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
) CourseService {
	return &courseService{
		repo:      repo,
		access:    access,
		publisher: publisher,
		validator: validator,
		logger:    logger,
	}
}

// ===== CORE CRUD OPERATIONS =====

// Create stores the course and appends its id to the instructor's course
// list in one transaction. A nil req means the body could not be decoded.
func (s *courseService) Create(ctx context.Context, sub string, req *CreateCourseRequest) (*models.Course, error) {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireAdmin(requester, "create"); err != nil {
		return nil, err
	}

	// Validate request
	if req == nil {
		return nil, ErrInvalidBody
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		Subject:      req.Subject,
		Number:       int(req.Number.Int64()),
		Title:        req.Title,
		Term:         req.Term,
		InstructorID: req.InstructorID.Int64(),
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		instructor, err := loadInstructor(ctx, tx, course.InstructorID)
		if err != nil {
			return err
		}
		if err := tx.Course().Create(ctx, course); err != nil {
			return storeError("create course", err)
		}
		if instructor.AddCourse(course.ID) {
			if err := tx.User().UpdateCourses(ctx, instructor); err != nil {
				return storeError("update instructor courses", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course created", "course_id", course.ID, "instructor_id", course.InstructorID)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.CourseCreated, courseEvent(course, requester.ID)))

	return course, nil
}

func (s *courseService) List(ctx context.Context, offset, limit int) ([]*models.Course, error) {
	if offset < 0 || limit < 1 {
		return nil, ErrInvalidQuery
	}

	courses, err := s.repo.Course().List(ctx, repositories.CourseFilters{Offset: offset, Limit: limit})
	if err != nil {
		return nil, storeError("list courses", err)
	}
	return courses, nil
}

func (s *courseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get course", err)
	}
	return course, nil
}

// Update applies the supplied whitelisted fields. Changing the instructor
// moves the course id from the old instructor's list to the new one's.
func (s *courseService) Update(ctx context.Context, sub string, id int64, req *UpdateCourseRequest) (*models.Course, error) {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireAdmin(requester, "update"); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return nil, storeError("get course", err)
	}

	// Validate request
	if req == nil {
		return nil, ErrInvalidBody
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Empty() {
		return course, nil
	}

	previousInstructor := course.InstructorID
	if req.Subject != nil {
		course.Subject = *req.Subject
	}
	if req.Number != nil {
		course.Number = int(req.Number.Int64())
	}
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Term != nil {
		course.Term = *req.Term
	}
	if req.InstructorID != nil {
		course.InstructorID = req.InstructorID.Int64()
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if req.InstructorID != nil {
			// re-checked even when unchanged, the role may have been revoked
			instructor, err := loadInstructor(ctx, tx, course.InstructorID)
			if err != nil {
				return err
			}
			if previousInstructor != course.InstructorID {
				if err := detachCourse(ctx, tx, previousInstructor, course.ID); err != nil {
					return err
				}
			}
			if instructor.AddCourse(course.ID) {
				if err := tx.User().UpdateCourses(ctx, instructor); err != nil {
					return storeError("update instructor courses", err)
				}
			}
		}

		if err := tx.Course().Update(ctx, course); err != nil {
			return storeError("update course", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course updated", "course_id", course.ID)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.CourseUpdated, courseEvent(course, requester.ID)))

	return course, nil
}

// Delete removes the course id from its instructor and every student, then
// deletes the course, all in one transaction.
func (s *courseService) Delete(ctx context.Context, sub string, id int64) error {
	requester, err := s.access.ResolveRequester(ctx, sub)
	if err != nil {
		return err
	}
	if err := s.access.RequireAdmin(requester, "delete"); err != nil {
		return err
	}

	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		return storeError("get course", err)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := detachCourse(ctx, tx, course.InstructorID, course.ID); err != nil {
			return err
		}

		students, err := tx.User().ListByRole(ctx, models.RoleStudent)
		if err != nil {
			return storeError("list students", err)
		}
		for _, student := range students {
			if !student.RemoveCourse(course.ID) {
				continue
			}
			if err := tx.User().UpdateCourses(ctx, student); err != nil {
				return storeError("update student courses", err)
			}
		}

		if err := tx.Course().Delete(ctx, course.ID); err != nil {
			return storeError("delete course", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Course deleted", "course_id", course.ID)
	publish(ctx, s.publisher, s.logger, events.NewEvent(events.CourseDeleted, events.CourseEvent{
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		ActorID:      requester.ID,
	}))

	return nil
}

// ===== HELPERS =====

// loadInstructor returns the user behind id when it holds the instructor
// role. Anything else is a bad request body.
func loadInstructor(ctx context.Context, repo repositories.Repository, id int64) (*models.User, error) {
	user, err := repo.User().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidBody
		}
		return nil, storeError("get instructor", err)
	}
	if user.Role != models.RoleInstructor {
		return nil, ErrInvalidBody
	}
	return user, nil
}

// detachCourse drops courseID from the user's list. A user that no longer
// exists is skipped.
func detachCourse(ctx context.Context, repo repositories.Repository, userID, courseID int64) error {
	user, err := repo.User().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return storeError("get user", err)
	}
	if !user.RemoveCourse(courseID) {
		return nil
	}
	if err := repo.User().UpdateCourses(ctx, user); err != nil {
		return storeError("update user courses", err)
	}
	return nil
}

func courseEvent(course *models.Course, actorID int64) events.CourseEvent {
	return events.CourseEvent{
		CourseID:     course.ID,
		Subject:      course.Subject,
		Number:       course.Number,
		InstructorID: course.InstructorID,
		ActorID:      actorID,
	}
}
