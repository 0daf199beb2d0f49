package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 报价仓库集合
type Repositories struct {
	Product    *ProductRepository
	Die        *DieRepository
	Cliche     *ClicheRepository
	Inquiry    *InquiryRepository
	SubQuote   *SubQuoteRepository
	SalesOrder *SalesOrderRepository
}

// NewRepositories 创建报价仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:    NewProductRepository(db),
		Die:        NewDieRepository(db),
		Cliche:     NewClicheRepository(db),
		Inquiry:    NewInquiryRepository(db),
		SubQuote:   NewSubQuoteRepository(db),
		SalesOrder: NewSalesOrderRepository(db),
	}
}
