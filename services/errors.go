package services

import "fmt"

// NotFoundError -> entity dengan id tersebut tidak ada.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

// InsufficientStockError -> permintaan konsumsi melebihi quantity tersedia.
type InsufficientStockError struct {
	StockID   uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for stock ID %d (requested %d, available %d)",
		e.StockID, e.Requested, e.Available)
}

// RecipeAlreadyExistsError -> menu sudah punya recipe (maksimal satu per menu).
type RecipeAlreadyExistsError struct {
	MenuID uint
}

func (e *RecipeAlreadyExistsError) Error() string {
	return fmt.Sprintf("recipe already exists for menu ID %d", e.MenuID)
}

// StockInUseError -> stok masih direferensikan oleh recipe, tidak boleh dihapus.
type StockInUseError struct {
	StockID uint
}

func (e *StockInUseError) Error() string {
	return fmt.Sprintf("stock ID %d is still referenced by a recipe", e.StockID)
}

// MenuNotAvailableError -> menu sedang tidak bisa dijual.
type MenuNotAvailableError struct {
	MenuID uint
	Name   string
}

func (e *MenuNotAvailableError) Error() string {
	return fmt.Sprintf("menu %s (ID %d) is not available", e.Name, e.MenuID)
}

// InvalidStatusError -> transisi status transaksi tidak diizinkan.
type InvalidStatusError struct {
	From string
	To   string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// ValidationError -> input request tidak valid.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
