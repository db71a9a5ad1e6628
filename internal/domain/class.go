package domain

import "time"

type Class struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;index;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	TeacherID   int64     `gorm:"column:teacher_id;index;not null" json:"teacher_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`

	Students []User   `gorm:"many2many:class_students;" json:"students,omitempty"`
	Courses  []Course `gorm:"many2many:course_classes;" json:"courses,omitempty"`
}

func (Class) TableName() string { return "classes" }

type Course struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;index;not null" json:"name"`
	Code        string    `gorm:"column:code;index" json:"code"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Semester    string    `gorm:"column:semester" json:"semester"`
	TeacherID   int64     `gorm:"column:teacher_id;index;not null" json:"teacher_id"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`

	Classes []Class `gorm:"many2many:course_classes;" json:"classes,omitempty"`
}

func (Course) TableName() string { return "courses" }
