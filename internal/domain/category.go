package domain

import "time"

// DefaultCategory — категория-заглушка для товаров без распознанной категории.
const DefaultCategory = "기타"

// Category описывает категорию каталога поставщика
type Category struct {
	ID         string
	SupplierID string
	Name       string
	ParentID   *string
	Level      int
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

func NewCategory(id, supplierID, name string, parentID *string, level int) *Category {
	return &Category{
		ID:         id,
		SupplierID: supplierID,
		Name:       name,
		ParentID:   parentID,
		Level:      level,
		IsActive:   true,
	}
}

func (c *Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
