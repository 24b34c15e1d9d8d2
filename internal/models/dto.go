package models

// UserSummary is the shape returned by the user listing. Token material is
// never part of it.
type UserSummary struct {
	ID   int64    `json:"id"`
	Role UserRole `json:"role"`
	Sub  string   `json:"sub"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Role      UserRole  `json:"role"`
	Sub       string    `json:"sub"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Courses   *[]string `json:"courses,omitempty"` // set only for instructors and students
}

type CourseResponse struct {
	ID           int64  `json:"id"`
	Subject      string `json:"subject"`
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Term         string `json:"term"`
	InstructorID int64  `json:"instructor_id"`
	Self         string `json:"self"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Next    string            `json:"next,omitempty"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type ImageResponse struct {
	FileName string `json:"file_name"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Blob is a binary object read back from the object store.
type Blob struct {
	Key         string
	ContentType string
	Data        []byte
}
