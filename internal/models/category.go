package models

type Category struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"uniqueIndex;not null" json:"title"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`

	Products []Product `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
}
