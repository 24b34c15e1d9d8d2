package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON integer or a string holding one. Fractions,
// booleans and anything else are rejected.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("integer expected, got null")
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err == nil {
		*f = FlexInt(n)
		return nil
	}

	// 101.0 is still an integer
	fl, ferr := strconv.ParseFloat(raw, 64)
	if ferr != nil || fl != math.Trunc(fl) || math.Abs(fl) > math.MaxInt32 {
		return fmt.Errorf("integer expected, got %s", raw)
	}
	*f = FlexInt(int64(fl))
	return nil
}

func (f *FlexInt) Int64() int64 {
	return int64(*f)
}

// LoginRequest represents the credentials posted to /users/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// CourseCreateRequest represents the request structure for creating courses
type CourseCreateRequest struct {
	Subject      string   `json:"subject" validate:"required,max=100"`
	Number       *FlexInt `json:"number" validate:"required,min=0,max=2147483647"`
	Title        string   `json:"title" validate:"required,max=200"`
	Term         string   `json:"term" validate:"required,max=50"`
	InstructorID *FlexInt `json:"instructor_id" validate:"required,gt=0"`
}

// CourseUpdateRequest carries only the whitelisted course fields. A nil
// field is left untouched.
type CourseUpdateRequest struct {
	Subject      *string  `json:"subject" validate:"omitnil,min=1,max=100"`
	Number       *FlexInt `json:"number" validate:"omitnil,min=0,max=2147483647"`
	Title        *string  `json:"title" validate:"omitnil,min=1,max=200"`
	Term         *string  `json:"term" validate:"omitnil,min=1,max=50"`
	InstructorID *FlexInt `json:"instructor_id" validate:"omitnil,gt=0"`
}

// Empty reports whether no updatable field was supplied
func (r *CourseUpdateRequest) Empty() bool {
	return r.Subject == nil && r.Number == nil && r.Title == nil && r.Term == nil && r.InstructorID == nil
}

// EnrollmentUpdateRequest lists students to add to and remove from a course
type EnrollmentUpdateRequest struct {
	Add    []int64 `json:"add"`
	Remove []int64 `json:"remove"`
}
