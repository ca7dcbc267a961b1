package models

// Country a blog post is published for
type Country struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(255);not null"`
	Alpha2 string `json:"alpha2" gorm:"type:varchar(2);not null;default:''"`
}
