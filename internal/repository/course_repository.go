package repository

import (
	"learnsphere_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// Create persists a course together with its chapter/lesson tree.
func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

// FindByIDAndOwner loads a course with chapters and lessons in unlock
// order. Owner scoping doubles as the authorization check.
func (r *CourseRepository) FindByIDAndOwner(courseID string, ownerID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapters.position ASC")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC")
		}).
		Where("id = ? AND owner_id = ?", courseID, ownerID).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByOwner(ownerID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("chapters.position ASC")
		}).
		Preload("Chapters.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("lessons.position ASC")
		}).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// DeleteByIDAndOwner removes a course owned by the user. Returns
// gorm.ErrRecordNotFound when nothing matched, so the caller can report
// not-found instead of silently succeeding.
func (r *CourseRepository) DeleteByIDAndOwner(courseID string, ownerID uint) error {
	res := r.DB.Where("id = ? AND owner_id = ?", courseID, ownerID).Delete(&model.Course{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CourseRepository) Save(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) SaveLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *CourseRepository) UpdateImageURL(courseID string, ownerID uint, url string) error {
	res := r.DB.Model(&model.Course{}).
		Where("id = ? AND owner_id = ?", courseID, ownerID).
		Update("image_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
