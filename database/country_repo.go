package database

import (
	"context"

	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/gorm"
)

type CountryRepo struct {
	db *gorm.DB
}

func NewCountryRepo(db *gorm.DB) *CountryRepo {
	return &CountryRepo{db}
}

// FindAll returns every country ordered by name
func (r *CountryRepo) FindAll(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	err := r.db.WithContext(ctx).Order("name").Order("id").Find(&countries).Error
	return countries, err
}

// Exists reports whether a country with id exists
func (r *CountryRepo) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Country{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Add inserts a new country
func (r *CountryRepo) Add(ctx context.Context, country *models.Country) error {
	return r.db.WithContext(ctx).Create(country).Error
}
