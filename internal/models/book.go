package models

import (
	"time"
)

// Book is a catalog entry. Image and File hold blob-store locators for the
// cover image and the PDF respectively.
type Book struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:500;not null" json:"title"`
	Author      string    `gorm:"size:255;index;not null" json:"author"`
	Description string    `json:"description"`
	Category    string    `gorm:"size:255;index;not null" json:"category"`
	Excerpt     string    `json:"excerpt"`
	Class       string    `gorm:"size:100" json:"class"`
	Image       string    `gorm:"size:500" json:"image"`
	File        string    `gorm:"column:book;size:500" json:"book"`
	Price       float64   `gorm:"default:0" json:"price"`
	DateAdded   time.Time `json:"date_added"`
}

func (Book) TableName() string {
	return "books"
}
