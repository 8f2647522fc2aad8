package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/domain/connector"
	"github.com/ledgerbridge/booksync/internal/domain/model"
	"github.com/ledgerbridge/booksync/internal/domain/repository"
)

// ReconcileResult counts the rows written by one reconcile pass.
type ReconcileResult struct {
	Inserted int
	Updated  int
}

// Reconciler merges mapped platform records into the unified store by
// natural key (external_id, source_system). Existing rows are updated in
// place keeping their surrogate id; new rows are inserted. Nothing is
// deleted: records gone from the platform simply stop being updated.
type Reconciler struct {
	customers repository.CustomerRepository
	vendors   repository.VendorRepository
	items     repository.ItemRepository
	invoices  repository.InvoiceRepository
	bills     repository.BillRepository
	accounts  repository.AccountRepository
	logger    *zap.Logger
}

// NewReconciler creates a reconciler over the unified store repositories.
func NewReconciler(
	customers repository.CustomerRepository,
	vendors repository.VendorRepository,
	items repository.ItemRepository,
	invoices repository.InvoiceRepository,
	bills repository.BillRepository,
	accounts repository.AccountRepository,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		customers: customers,
		vendors:   vendors,
		items:     items,
		invoices:  invoices,
		bills:     bills,
		accounts:  accounts,
		logger:    logger,
	}
}

// Apply reconciles one batch. Each entity slice is written all-or-nothing
// inside its repository transaction, so a failure leaves the store and the
// caller's watermark untouched.
func (r *Reconciler) Apply(ctx context.Context, batch *connector.Batch) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	if len(batch.Customers) > 0 {
		if err := r.applyCustomers(ctx, batch, result); err != nil {
			return nil, fmt.Errorf("failed to reconcile customers: %w", err)
		}
	}
	if len(batch.Vendors) > 0 {
		if err := r.applyVendors(ctx, batch, result); err != nil {
			return nil, fmt.Errorf("failed to reconcile vendors: %w", err)
		}
	}
	if len(batch.Items) > 0 {
		if err := r.applyItems(ctx, batch, result); err != nil {
			return nil, fmt.Errorf("failed to reconcile items: %w", err)
		}
	}
	if len(batch.Invoices) > 0 {
		if err := r.applyInvoices(ctx, batch, result); err != nil {
			return nil, fmt.Errorf("failed to reconcile invoices: %w", err)
		}
	}
	if len(batch.Bills) > 0 {
		if err := r.applyBills(ctx, batch, result); err != nil {
			return nil, fmt.Errorf("failed to reconcile bills: %w", err)
		}
	}
	if len(batch.Accounts) > 0 {
		if err := r.applyAccounts(ctx, batch, result); err != nil {
			return nil, fmt.Errorf("failed to reconcile accounts: %w", err)
		}
	}

	return result, nil
}

func (r *Reconciler) applyCustomers(ctx context.Context, batch *connector.Batch, result *ReconcileResult) error {
	keys := make([]string, 0, len(batch.Customers))
	for _, rec := range batch.Customers {
		keys = append(keys, rec.ExternalID)
	}
	existing, err := r.customers.ListByExternalIDs(ctx, batch.Source, keys)
	if err != nil {
		return err
	}
	byKey := make(map[string]*model.UnifiedCustomer, len(existing))
	for _, row := range existing {
		byKey[row.ExternalID] = row
	}

	var inserts, updates []*model.UnifiedCustomer
	for _, rec := range batch.Customers {
		if row, ok := byKey[rec.ExternalID]; ok {
			rec.ID = row.ID
			rec.CreatedAt = row.CreatedAt
			updates = append(updates, rec)
		} else {
			inserts = append(inserts, rec)
		}
	}
	if err := r.customers.SaveBatch(ctx, inserts, updates); err != nil {
		return err
	}
	result.Inserted += len(inserts)
	result.Updated += len(updates)
	return nil
}

func (r *Reconciler) applyVendors(ctx context.Context, batch *connector.Batch, result *ReconcileResult) error {
	keys := make([]string, 0, len(batch.Vendors))
	for _, rec := range batch.Vendors {
		keys = append(keys, rec.ExternalID)
	}
	existing, err := r.vendors.ListByExternalIDs(ctx, batch.Source, keys)
	if err != nil {
		return err
	}
	byKey := make(map[string]*model.UnifiedVendor, len(existing))
	for _, row := range existing {
		byKey[row.ExternalID] = row
	}

	var inserts, updates []*model.UnifiedVendor
	for _, rec := range batch.Vendors {
		if row, ok := byKey[rec.ExternalID]; ok {
			rec.ID = row.ID
			rec.CreatedAt = row.CreatedAt
			updates = append(updates, rec)
		} else {
			inserts = append(inserts, rec)
		}
	}
	if err := r.vendors.SaveBatch(ctx, inserts, updates); err != nil {
		return err
	}
	result.Inserted += len(inserts)
	result.Updated += len(updates)
	return nil
}

func (r *Reconciler) applyItems(ctx context.Context, batch *connector.Batch, result *ReconcileResult) error {
	keys := make([]string, 0, len(batch.Items))
	for _, rec := range batch.Items {
		keys = append(keys, rec.ExternalID)
	}
	existing, err := r.items.ListByExternalIDs(ctx, batch.Source, keys)
	if err != nil {
		return err
	}
	byKey := make(map[string]*model.UnifiedItem, len(existing))
	for _, row := range existing {
		byKey[row.ExternalID] = row
	}

	var inserts, updates []*model.UnifiedItem
	for _, rec := range batch.Items {
		if row, ok := byKey[rec.ExternalID]; ok {
			rec.ID = row.ID
			rec.CreatedAt = row.CreatedAt
			updates = append(updates, rec)
		} else {
			inserts = append(inserts, rec)
		}
	}
	if err := r.items.SaveBatch(ctx, inserts, updates); err != nil {
		return err
	}
	result.Inserted += len(inserts)
	result.Updated += len(updates)
	return nil
}

func (r *Reconciler) applyInvoices(ctx context.Context, batch *connector.Batch, result *ReconcileResult) error {
	keys := make([]string, 0, len(batch.Invoices))
	for _, rec := range batch.Invoices {
		keys = append(keys, rec.ExternalID)
	}
	existing, err := r.invoices.ListByExternalIDs(ctx, batch.Source, keys)
	if err != nil {
		return err
	}
	byKey := make(map[string]*model.UnifiedInvoice, len(existing))
	for _, row := range existing {
		byKey[row.ExternalID] = row
	}

	var inserts, updates []*model.UnifiedInvoice
	for _, rec := range batch.Invoices {
		if row, ok := byKey[rec.ExternalID]; ok {
			rec.ID = row.ID
			rec.CreatedAt = row.CreatedAt
			updates = append(updates, rec)
		} else {
			inserts = append(inserts, rec)
		}
	}
	if err := r.invoices.SaveBatch(ctx, inserts, updates); err != nil {
		return err
	}
	result.Inserted += len(inserts)
	result.Updated += len(updates)
	return nil
}

func (r *Reconciler) applyBills(ctx context.Context, batch *connector.Batch, result *ReconcileResult) error {
	keys := make([]string, 0, len(batch.Bills))
	for _, rec := range batch.Bills {
		keys = append(keys, rec.ExternalID)
	}
	existing, err := r.bills.ListByExternalIDs(ctx, batch.Source, keys)
	if err != nil {
		return err
	}
	byKey := make(map[string]*model.UnifiedBill, len(existing))
	for _, row := range existing {
		byKey[row.ExternalID] = row
	}

	var inserts, updates []*model.UnifiedBill
	for _, rec := range batch.Bills {
		if row, ok := byKey[rec.ExternalID]; ok {
			rec.ID = row.ID
			rec.CreatedAt = row.CreatedAt
			updates = append(updates, rec)
		} else {
			inserts = append(inserts, rec)
		}
	}
	if err := r.bills.SaveBatch(ctx, inserts, updates); err != nil {
		return err
	}
	result.Inserted += len(inserts)
	result.Updated += len(updates)
	return nil
}

func (r *Reconciler) applyAccounts(ctx context.Context, batch *connector.Batch, result *ReconcileResult) error {
	keys := make([]string, 0, len(batch.Accounts))
	for _, rec := range batch.Accounts {
		keys = append(keys, rec.ExternalID)
	}
	existing, err := r.accounts.ListByExternalIDs(ctx, batch.Source, keys)
	if err != nil {
		return err
	}
	byKey := make(map[string]*model.ChartOfAccount, len(existing))
	for _, row := range existing {
		byKey[row.ExternalID] = row
	}

	var inserts, updates []*model.ChartOfAccount
	for _, rec := range batch.Accounts {
		if row, ok := byKey[rec.ExternalID]; ok {
			rec.ID = row.ID
			rec.CreatedAt = row.CreatedAt
			updates = append(updates, rec)
		} else {
			inserts = append(inserts, rec)
		}
	}
	if err := r.accounts.SaveBatch(ctx, inserts, updates); err != nil {
		return err
	}
	result.Inserted += len(inserts)
	result.Updated += len(updates)
	return nil
}
