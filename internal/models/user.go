package models

import (
	"slices"

	"gorm.io/datatypes"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// HasCourses reports whether users with this role carry a course list.
func (r UserRole) HasCourses() bool {
	return r == RoleInstructor || r == RoleStudent
}

// User is provisioned out-of-band; this service only mutates Courses.
type User struct {
	ID   int64    `json:"id" gorm:"primaryKey"`
	Sub  string   `json:"sub" gorm:"not null;size:255;index"`
	Role UserRole `json:"role" gorm:"not null;size:20;index"`

	// Enrollment lives here: a course id in a student's list means enrolled
	Courses datatypes.JSONSlice[int64] `json:"courses"`
}

func (User) TableName() string {
	return "users"
}

// InCourse reports whether courseID appears in the user's course list.
func (u *User) InCourse(courseID int64) bool {
	return slices.Contains(u.Courses, courseID)
}

// AddCourse appends courseID unless already present. It returns true when
// the list changed.
func (u *User) AddCourse(courseID int64) bool {
	if u.InCourse(courseID) {
		return false
	}
	u.Courses = append(u.Courses, courseID)
	return true
}

// RemoveCourse filters every occurrence of courseID out of the list. It
// returns true when the list changed.
func (u *User) RemoveCourse(courseID int64) bool {
	if !u.InCourse(courseID) {
		return false
	}
	kept := make(datatypes.JSONSlice[int64], 0, len(u.Courses))
	for _, id := range u.Courses {
		if id != courseID {
			kept = append(kept, id)
		}
	}
	u.Courses = kept
	return true
}
