package models

type Course struct {
	ID           int64  `json:"id" gorm:"primaryKey"`
	Subject      string `json:"subject" gorm:"not null;size:100;index"`
	Number       int    `json:"number" gorm:"not null"`
	Title        string `json:"title" gorm:"not null;size:200"`
	Term         string `json:"term" gorm:"not null;size:50"`
	InstructorID int64  `json:"instructor_id" gorm:"not null;index"`
}

func (Course) TableName() string {
	return "courses"
}
