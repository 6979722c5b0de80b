package models

// Category is one of the fixed storefront browse categories.
type Category struct {
	ID   int    `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;not null;unique"`
}
