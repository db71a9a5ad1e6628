package repository

import (
	"context"
	"strings"

	"assignportal/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) DB() *gorm.DB {
	return r.db
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Username = strings.TrimSpace(u.Username)
	err := r.db.WithContext(ctx).Create(u).Error
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Save(u).Error
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	return err
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepository) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&users).Error
	return users, err
}

// ListStudentsOutsideClass returns students not enrolled in classID.
func (r *UserRepository) ListStudentsOutsideClass(ctx context.Context, classID int64) ([]domain.User, error) {
	var users []domain.User
	enrolled := r.db.Table("class_students").Select("user_id").Where("class_id = ?", classID)
	err := r.db.WithContext(ctx).
		Where("role = ?", domain.RoleStudent).
		Where("id NOT IN (?)", enrolled).
		Order("username").
		Find(&users).Error
	return users, err
}

// Delete removes a user. Students take their submissions and enrolments with them;
// teachers that still own anything are refused with ErrHasDependents.
func (r *UserRepository) Delete(ctx context.Context, id int64) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.First(&u, id).Error; err != nil {
			return notFound(err)
		}

		if u.Role != domain.RoleStudent {
			owned, err := countOwned(tx, id)
			if err != nil {
				return err
			}
			if owned > 0 {
				return ErrHasDependents
			}
		}

		var err error
		paths, err = purgeStudentSubmissionsTx(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM class_students WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func countOwned(tx *gorm.DB, teacherID int64) (int64, error) {
	var total int64
	for _, model := range []any{&domain.Class{}, &domain.Course{}, &domain.Assignment{}} {
		var n int64
		if err := tx.Model(model).Where("teacher_id = ?", teacherID).Count(&n).Error; err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
