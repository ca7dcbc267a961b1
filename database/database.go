package database

import (
	"fmt"

	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/gorm"
)

type Database struct {
	db                 *gorm.DB
	blogRepo           *BlogRepo
	countryRepo        *CountryRepo
	tagRepo            *TagRepo
	searchDocumentRepo *SearchDocumentRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		blogRepo:           NewBlogRepo(db),
		countryRepo:        NewCountryRepo(db),
		tagRepo:            NewTagRepo(db),
		searchDocumentRepo: NewSearchDocumentRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) DB() *gorm.DB {
	return d.db
}

func (d Database) BlogRepo() *BlogRepo {
	return d.blogRepo
}

func (d Database) CountryRepo() *CountryRepo {
	return d.countryRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) SearchDocumentRepo() *SearchDocumentRepo {
	return d.searchDocumentRepo
}

// liveSlugIndex keeps slugs unique among rows that are not soft deleted.
// Both postgres and sqlite support partial expression indexes.
const liveSlugIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_blogs_live_slug ON blogs (LOWER(slug)) WHERE deleted_at IS NULL`

// Migrate creates or updates every table owned by this service.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(liveSlugIndex).Error; err != nil {
		return fmt.Errorf("create live slug index: %w", err)
	}
	return nil
}
