package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ledgerbridge/booksync/internal/adapter/repository"
	domainRepo "github.com/ledgerbridge/booksync/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Connection domainRepo.ConnectionRepository
	Customer   domainRepo.CustomerRepository
	Vendor     domainRepo.VendorRepository
	Item       domainRepo.ItemRepository
	Invoice    domainRepo.InvoiceRepository
	Bill       domainRepo.BillRepository
	Account    domainRepo.AccountRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Connection: repository.NewConnectionRepository(db, logger),
		Customer:   repository.NewCustomerRepository(db, logger),
		Vendor:     repository.NewVendorRepository(db, logger),
		Item:       repository.NewItemRepository(db, logger),
		Invoice:    repository.NewInvoiceRepository(db, logger),
		Bill:       repository.NewBillRepository(db, logger),
		Account:    repository.NewAccountRepository(db, logger),
	}
}
