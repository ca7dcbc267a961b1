package models

import (
	"time"

	"gorm.io/gorm"
)

// BlogSearchIndex is the search index blogs are projected into.
const BlogSearchIndex = "blogs"

// Blog represents a blog post managed from the admin area
type Blog struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Slug           string         `json:"slug" gorm:"type:varchar(255);not null;index"`
	Title          string         `json:"title" gorm:"type:text;not null"`
	Cover          string         `json:"cover" gorm:"type:varchar(255);not null;default:''"`
	Content        string         `json:"content" gorm:"type:text"`
	SeoTitle       string         `json:"seo_title" gorm:"type:varchar(255)"`
	SeoURL         string         `json:"seo_url" gorm:"column:seo_url;type:varchar(255)"`
	SeoH1          string         `json:"seo_h1" gorm:"column:seo_h1;type:varchar(255)"`
	SeoKeywords    string         `json:"seo_keywords" gorm:"type:text"`
	SeoDescription string         `json:"seo_description" gorm:"type:text"`
	PublishedAt    *time.Time     `json:"published_at" gorm:"index"`
	CanComment     bool           `json:"can_comment" gorm:"not null"`
	Views          int64          `json:"views" gorm:"not null;default:0"`
	CountryID      uint           `json:"country_id" gorm:"not null;index"`
	Country        *Country       `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Tags           []Tag          `json:"tags,omitempty" gorm:"many2many:blog_tags"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// IsPublished reports whether the post is live.
func (b *Blog) IsPublished() bool {
	return b.PublishedAt != nil
}

// Publish sets or clears published_at from a form flag. Every publish stamps now.
func (b *Blog) Publish(published bool, now time.Time) {
	if !published {
		b.PublishedAt = nil
		return
	}
	b.PublishedAt = &now
}

// CountryName is empty when the country was not loaded or no longer exists.
func (b *Blog) CountryName() string {
	if b.Country == nil {
		return ""
	}
	return b.Country.Name
}

// TagNames lists loaded tag names in order.
func (b *Blog) TagNames() []string {
	names := make([]string, 0, len(b.Tags))
	for _, tag := range b.Tags {
		names = append(names, tag.Name)
	}
	return names
}

func (b *Blog) SearchableAs() string {
	return BlogSearchIndex
}

func (b *Blog) SearchKey() uint {
	return b.ID
}

func (b *Blog) ShouldBeSearchable() bool {
	return b.IsPublished()
}

func (b *Blog) ToSearchableMap() map[string]any {
	return map[string]any{
		"slug":       b.Slug,
		"title":      b.Title,
		"content":    b.Content,
		"country_id": b.CountryID,
	}
}

func (b *Blog) TaggableType() string {
	return "blogs"
}

func (b *Blog) TaggableID() uint {
	return b.ID
}

func (b *Blog) GetCountryID() uint {
	return b.CountryID
}

func (b *Blog) IsTrashed() bool {
	return b.DeletedAt.Valid
}
