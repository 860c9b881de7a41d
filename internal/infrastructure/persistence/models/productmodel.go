package models

import (
	"time"

	"github.com/candlepin/candlepin-sub005/internal/shared/constants"
)

// ProductModel is one stored version of a product. Versions are shared by
// every owner linking to them through OwnerProductModel.
type ProductModel struct {
	UUID              string                         `gorm:"primaryKey;size:32"`
	ProductID         string                         `gorm:"size:32;not null;index"`
	Name              string                         `gorm:"size:255;not null"`
	Multiplier        int64                          `gorm:"not null;default:1"`
	EntityVersion     int64                          `gorm:"not null;index"`
	Attributes        []ProductAttributeModel        `gorm:"foreignKey:ProductUUID;references:UUID"`
	ProvidedProducts  []ProductProvidedProductModel  `gorm:"foreignKey:ProductUUID;references:UUID"`
	DependentProducts []ProductDependentProductModel `gorm:"foreignKey:ProductUUID;references:UUID"`
	Contents          []ProductContentModel          `gorm:"foreignKey:ProductUUID;references:UUID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ProductModel) TableName() string {
	return constants.TableProducts
}

type ProductAttributeModel struct {
	ID          uint   `gorm:"primaryKey"`
	ProductUUID string `gorm:"size:32;not null;uniqueIndex:idx_product_attribute,priority:1"`
	Name        string `gorm:"size:255;not null;uniqueIndex:idx_product_attribute,priority:2"`
	Value       string `gorm:"size:255"`
}

func (ProductAttributeModel) TableName() string {
	return constants.TableProductAttributes
}

type ProductProvidedProductModel struct {
	ProductUUID       string `gorm:"primaryKey;size:32"`
	ProvidedProductID string `gorm:"primaryKey;size:32;index"`
}

func (ProductProvidedProductModel) TableName() string {
	return constants.TableProductProvidedProducts
}

type ProductDependentProductModel struct {
	ProductUUID        string `gorm:"primaryKey;size:32"`
	DependentProductID string `gorm:"primaryKey;size:32"`
}

func (ProductDependentProductModel) TableName() string {
	return constants.TableProductDependentProducts
}

// ContentModel is one stored version of a content set.
type ContentModel struct {
	UUID             string                        `gorm:"primaryKey;size:32"`
	ContentID        string                        `gorm:"size:32;not null;index"`
	Type             string                        `gorm:"size:255"`
	Label            string                        `gorm:"size:255;not null"`
	Name             string                        `gorm:"size:255"`
	Vendor           string                        `gorm:"size:255"`
	ContentURL       string                        `gorm:"size:255"`
	GPGURL           string                        `gorm:"size:255"`
	Arches           string                        `gorm:"size:255"`
	EntityVersion    int64                         `gorm:"not null;index"`
	ModifiedProducts []ContentModifiedProductModel `gorm:"foreignKey:ContentUUID;references:UUID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (ContentModel) TableName() string {
	return constants.TableContents
}

type ContentModifiedProductModel struct {
	ContentUUID string `gorm:"primaryKey;size:32"`
	ProductID   string `gorm:"primaryKey;size:32;index"`
}

func (ContentModifiedProductModel) TableName() string {
	return constants.TableContentModifiedProducts
}

type ProductContentModel struct {
	ProductUUID string        `gorm:"primaryKey;size:32"`
	ContentUUID string        `gorm:"primaryKey;size:32"`
	Enabled     bool          `gorm:"not null;default:false"`
	Content     *ContentModel `gorm:"foreignKey:ContentUUID;references:UUID"`
}

func (ProductContentModel) TableName() string {
	return constants.TableProductContents
}

// OwnerProductModel links an owner to the product version it currently
// uses for a product ID.
type OwnerProductModel struct {
	OwnerID     string `gorm:"primaryKey;size:32"`
	ProductID   string `gorm:"primaryKey;size:32"`
	ProductUUID string `gorm:"size:32;not null;index"`
}

func (OwnerProductModel) TableName() string {
	return constants.TableOwnerProducts
}
