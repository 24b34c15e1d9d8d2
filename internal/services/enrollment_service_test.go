package services

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestEnrollmentService_AddIsIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	course := env.createCourse(t, "CS", 2)

	req := &UpdateEnrollmentRequest{Add: []int64{4, 5, 4}}
	for i := 0; i < 2; i++ {
		if err := env.manager.Enrollment().Update(ctx, instructorSub, course.ID, req); err != nil {
			t.Fatalf("Update #%d returned error: %v", i+1, err)
		}
	}

	for _, id := range []int64{4, 5} {
		courses := env.user(t, id).Courses
		if len(courses) != 1 || courses[0] != course.ID {
			t.Errorf("user %d courses = %v, want [%d]", id, courses, course.ID)
		}
	}

	ids, err := env.manager.Enrollment().List(ctx, adminSub, course.ID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if !slices.Equal(ids, []int64{4, 5}) {
		t.Errorf("enrolled = %v, want [4 5]", ids)
	}
}

func TestEnrollmentService_Remove(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	course := env.createCourse(t, "CS", 2)
	env.setCourses(t, 4, course.ID)

	// removing a student who is not enrolled changes nothing
	if err := env.manager.Enrollment().Update(ctx, adminSub, course.ID, &UpdateEnrollmentRequest{Remove: []int64{4, 5}}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(env.user(t, 4).Courses) != 0 {
		t.Errorf("user 4 still enrolled: %v", env.user(t, 4).Courses)
	}
}

func TestEnrollmentService_ConflictsLeaveStoreUntouched(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	course := env.createCourse(t, "CS", 2)

	tests := []struct {
		name string
		req  *UpdateEnrollmentRequest
	}{
		{name: "overlap", req: &UpdateEnrollmentRequest{Add: []int64{4, 5}, Remove: []int64{5}}},
		{name: "unknown user", req: &UpdateEnrollmentRequest{Add: []int64{4, 99}}},
		{name: "instructor as student", req: &UpdateEnrollmentRequest{Add: []int64{4, 3}}},
		{name: "admin removed", req: &UpdateEnrollmentRequest{Add: []int64{4}, Remove: []int64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.manager.Enrollment().Update(ctx, adminSub, course.ID, tt.req)
			if !errors.Is(err, ErrEnrollmentConflict) {
				t.Fatalf("expected ErrEnrollmentConflict, got %v", err)
			}
			if len(env.user(t, 4).Courses) != 0 {
				t.Errorf("user 4 was enrolled despite the conflict: %v", env.user(t, 4).Courses)
			}
		})
	}
	if got := len(env.publisher.GetPublishedEvents()); got != 1 {
		t.Errorf("only the course creation should be published, got %d events", got)
	}
}

func TestEnrollmentService_Rejects(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	course := env.createCourse(t, "CS", 2)

	tests := []struct {
		name     string
		sub      string
		courseID int64
		req      *UpdateEnrollmentRequest
		wantErr  error
	}{
		{name: "both empty", sub: adminSub, courseID: course.ID, req: &UpdateEnrollmentRequest{}, wantErr: ErrInvalidBody},
		{name: "undecodable", sub: adminSub, courseID: course.ID, req: nil, wantErr: ErrInvalidBody},
		{name: "other instructor", sub: instructor2Sub, courseID: course.ID, req: &UpdateEnrollmentRequest{Add: []int64{4}}, wantErr: ErrForbidden},
		{name: "student", sub: studentSub, courseID: course.ID, req: nil, wantErr: ErrForbidden},
		{name: "missing course", sub: adminSub, courseID: 999, req: &UpdateEnrollmentRequest{Add: []int64{4}}, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := env.manager.Enrollment().Update(ctx, tt.sub, tt.courseID, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnrollmentService_ExportRoster(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	course := env.createCourse(t, "CS", 2)
	env.setCourses(t, 5, course.ID)

	data, err := env.manager.Enrollment().ExportRoster(ctx, instructorSub, course.ID)
	if err != nil {
		t.Fatalf("ExportRoster returned error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("roster is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(rosterSheet)
	if err != nil {
		t.Fatalf("GetRows returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header and one student, got %v", rows)
	}
	if !slices.Equal(rows[0], []string{"student_id", "sub"}) {
		t.Errorf("unexpected header %v", rows[0])
	}
	if !slices.Equal(rows[1], []string{"5", student2Sub}) {
		t.Errorf("unexpected row %v", rows[1])
	}

	if _, err := env.manager.Enrollment().ExportRoster(ctx, instructor2Sub, course.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden for another instructor, got %v", err)
	}
}
