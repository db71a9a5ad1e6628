package domain

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// AdminUsername is the built-in account that can never be renamed, demoted or deleted.
const AdminUsername = "admin"

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleTeacher || r == RoleStudent
}

type User struct {
	ID           int64     `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         UserRole  `gorm:"column:role;index;not null" json:"role"`
	Avatar       string    `gorm:"column:avatar" json:"avatar,omitempty"`
	Organization string    `gorm:"column:organization" json:"organization,omitempty"`
	IDNumber     string    `gorm:"column:id_number" json:"id_number,omitempty"`
	Phone        string    `gorm:"column:phone" json:"phone,omitempty"`
	Email        string    `gorm:"column:email" json:"email,omitempty"`
	FirstLogin   bool      `gorm:"column:first_login;default:true" json:"first_login"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`

	Classes []Class `gorm:"many2many:class_students;" json:"-"`
}

func (User) TableName() string { return "users" }

// Principal is the authenticated caller as resolved from the access token.
type Principal struct {
	UserID   int64
	Username string
	Role     UserRole
}

func (p Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p Principal) IsTeacher() bool { return p.Role == RoleTeacher }
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }

// OwnsOrAdmin reports whether the principal may act on a resource owned by ownerID.
func (p Principal) OwnsOrAdmin(ownerID int64) bool {
	return p.IsAdmin() || p.UserID == ownerID
}
