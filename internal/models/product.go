// internal/models/product.go
package models

import (
	"fmt"
	"time"
)

const DefaultImageMimeType = "image/png"

type Product struct {
	BaseModel
	Number          int64   `json:"id" gorm:"uniqueIndex;not null"`
	Name            string  `json:"name" gorm:"size:255;not null"`
	Description     string  `json:"description" gorm:"type:text;not null"`
	Mrp             float64 `json:"mrp" gorm:"type:decimal(10,2);not null"`
	Discount        float64 `json:"discount" gorm:"type:decimal(5,2);not null"`
	DiscountedPrice float64 `json:"discountedPrice" gorm:"type:decimal(10,2);not null"`
	Category        string  `json:"category" gorm:"size:100;not null;index"`
	Image           string  `json:"-" gorm:"type:text;not null"`
	ImageType       string  `json:"-" gorm:"size:50;not null;default:'image/png'"`
	Stock           int     `json:"stock" gorm:"not null;default:0"`
}

// ImageDataURI renders the stored base64 payload as a data URI.
func (p *Product) ImageDataURI() string {
	return imageDataURI(p.ImageType, p.Image)
}

// DeletedProduct is an append-only snapshot of a product removed from the
// live catalog.
type DeletedProduct struct {
	BaseModel
	ProductID         string    `json:"productId" gorm:"type:uuid;not null;index"`
	Number            int64     `json:"id" gorm:"not null;index"`
	Name              string    `json:"name" gorm:"size:255;not null"`
	Description       string    `json:"description" gorm:"type:text"`
	Mrp               float64   `json:"mrp" gorm:"type:decimal(10,2)"`
	Discount          float64   `json:"discount" gorm:"type:decimal(5,2)"`
	DiscountedPrice   float64   `json:"discountedPrice" gorm:"type:decimal(10,2)"`
	Category          string    `json:"category" gorm:"size:100"`
	Image             string    `json:"-" gorm:"type:text"`
	ImageType         string    `json:"-" gorm:"size:50"`
	Stock             int       `json:"stock"`
	OriginalCreatedAt time.Time `json:"originalCreatedAt"`
	OriginalUpdatedAt time.Time `json:"originalUpdatedAt"`
	ArchivedAt        time.Time `json:"archivedAt" gorm:"not null;index"`
}

func (DeletedProduct) TableName() string {
	return "deleted_products"
}

// NewDeletedProduct copies every field of p into a fresh archive record.
func NewDeletedProduct(p *Product, archivedAt time.Time) *DeletedProduct {
	return &DeletedProduct{
		ProductID:         p.ID.String(),
		Number:            p.Number,
		Name:              p.Name,
		Description:       p.Description,
		Mrp:               p.Mrp,
		Discount:          p.Discount,
		DiscountedPrice:   p.DiscountedPrice,
		Category:          p.Category,
		Image:             p.Image,
		ImageType:         p.ImageType,
		Stock:             p.Stock,
		OriginalCreatedAt: p.CreatedAt,
		OriginalUpdatedAt: p.UpdatedAt,
		ArchivedAt:        archivedAt,
	}
}

func (d *DeletedProduct) ImageDataURI() string {
	return imageDataURI(d.ImageType, d.Image)
}

// Counter holds the last value handed out for a named sequence.
type Counter struct {
	Name string `gorm:"primaryKey;size:50"`
	Seq  int64  `gorm:"not null;default:0"`
}

const ProductCounter = "productId"

func imageDataURI(mimeType, payload string) string {
	if payload == "" {
		return ""
	}
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, payload)
}
