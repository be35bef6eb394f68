package services

import (
	"shopmart/internal/domain"
	errs "shopmart/internal/errors"
	"shopmart/internal/repos"
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) Categories() ([]domain.Category, error) {
	return s.Cats.List()
}

func (s *CatalogService) List() ([]repos.ProductRow, error) {
	return s.Prods.List()
}

func (s *CatalogService) ListFiltered(search string, categoryID int64, sortKey string) ([]repos.ProductRow, error) {
	return s.Prods.ListFiltered(search, categoryID, sortKey)
}

// Get returns nil when the product does not exist; missing is not an error.
func (s *CatalogService) Get(id int64) (*repos.ProductRow, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) Create(p domain.Product) (int64, error) {
	return s.Prods.Create(p)
}

func (s *CatalogService) Update(id int64, p domain.Product) error {
	return s.Prods.Update(id, p)
}

func (s *CatalogService) Delete(id int64) error {
	return s.Prods.Delete(id)
}

func (s *CatalogService) BulkDelete(ids []int64) error {
	return s.Prods.BulkDelete(ids)
}

// BulkRestock validates the amount before touching the store; a non-positive
// amount is a caller error.
func (s *CatalogService) BulkRestock(ids []int64, amount int) error {
	if amount < 1 {
		return errs.ErrInvalidRestock
	}
	return s.Prods.BulkRestock(ids, amount)
}
