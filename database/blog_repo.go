package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rpupo63/blog-admin-backend/errs"
	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogTableColumns is the ordered whitelist a table sort index resolves against.
var BlogTableColumns = []string{
	"id",
	"title",
	"country_id",
	"can_comment",
	"views",
	"published_at",
	"created_at",
	"updated_at",
}

// BlogTableQuery describes one page of the admin table.
type BlogTableQuery struct {
	Offset     int
	Limit      int // negative means no limit
	Keyword    string
	SortColumn string
	Descending bool
}

// BlogTablePage is a page of blogs plus the live row count with and without the keyword.
type BlogTablePage struct {
	Total    int64
	Filtered int64
	Blogs    []*models.Blog
}

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *BlogRepo) GetDB() *gorm.DB {
	return r.db
}

// Table returns one sorted page of blogs with their countries loaded.
func (r *BlogRepo) Table(ctx context.Context, q BlogTableQuery) (BlogTablePage, error) {
	var page BlogTablePage

	if !isBlogTableColumn(q.SortColumn) {
		return page, errs.NewInvalidFieldError("order", fmt.Sprintf("cannot sort by %q", q.SortColumn))
	}

	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Blog{}).Count(&page.Total).Error; err != nil {
		return page, err
	}

	query := db.Model(&models.Blog{})
	page.Filtered = page.Total
	if keyword := strings.TrimSpace(q.Keyword); keyword != "" {
		query = query.Where(keywordCondition(db, keyword))
		if err := query.Session(&gorm.Session{}).Count(&page.Filtered).Error; err != nil {
			return page, err
		}
	}

	err := query.
		Preload("Country").
		Order(clause.OrderByColumn{Column: clause.Column{Name: q.SortColumn}, Desc: q.Descending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: q.Descending}).
		Offset(max(q.Offset, 0)).
		Limit(q.Limit).
		Find(&page.Blogs).Error

	return page, err
}

// keywordCondition matches title OR slug as a literal, case-insensitive substring.
// It is returned as a group so the soft delete condition still applies to both sides.
func keywordCondition(db *gorm.DB, keyword string) *gorm.DB {
	pattern := LikePattern(keyword)
	return db.Session(&gorm.Session{NewDB: true}).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern).
		Or(`LOWER(slug) LIKE ? ESCAPE '\'`, pattern)
}

// LikePattern escapes LIKE wildcards and wraps the lower-cased keyword in %.
func LikePattern(keyword string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(keyword))
	return "%" + escaped + "%"
}

func isBlogTableColumn(column string) bool {
	for _, c := range BlogTableColumns {
		if c == column {
			return true
		}
	}
	return false
}

// FindByID returns a live blog with its country and tags.
func (r *BlogRepo) FindByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).
		Preload("Country").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		First(&blog, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog")
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// FindPublishedByIDs keeps the order of ids and skips drafts and deleted rows.
func (r *BlogRepo) FindPublishedByIDs(ctx context.Context, ids []uint) ([]*models.Blog, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []*models.Blog
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Where("published_at IS NOT NULL").
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]*models.Blog, len(found))
	for _, blog := range found {
		byID[blog.ID] = blog
	}

	blogs := make([]*models.Blog, 0, len(found))
	for _, id := range ids {
		if blog, ok := byID[id]; ok {
			blogs = append(blogs, blog)
		}
	}
	return blogs, nil
}

// SlugTaken reports whether a live blog other than exceptID uses slug, ignoring case.
func (r *BlogRepo) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("LOWER(slug) = ?", strings.ToLower(slug))
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new blog. Associations are managed separately.
func (r *BlogRepo) Create(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(blog).Error
}

// Save writes every column of an existing blog.
func (r *BlogRepo) Save(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(blog).Error
}

// SoftDelete marks a blog deleted and returns the number of rows affected,
// which is zero when the blog is missing or already deleted.
func (r *BlogRepo) SoftDelete(ctx context.Context, id uint) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.Blog{}, id)
	return result.RowsAffected, result.Error
}

// FindTrashedByID loads a blog including soft deleted rows.
func (r *BlogRepo) FindTrashedByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := r.db.WithContext(ctx).Unscoped().First(&blog, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog")
	}
	if err != nil {
		return nil, err
	}
	return &blog, nil
}
