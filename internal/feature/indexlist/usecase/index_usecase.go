// Package usecase implements the business logic for listing available indices.
package usecase

import (
	"context"
)

// IndexRepository abstracts the source of index names.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type IndexRepository interface {
	ListNames(ctx context.Context) ([]string, error)
}

// IndexUsecase provides business logic for index listing.
type IndexUsecase struct {
	repo IndexRepository
}

// NewIndexUsecase creates a new IndexUsecase with the given repository.
func NewIndexUsecase(r IndexRepository) *IndexUsecase {
	return &IndexUsecase{repo: r}
}

// ListIndices returns every index name the store holds, never nil.
func (u *IndexUsecase) ListIndices(ctx context.Context) ([]string, error) {
	names, err := u.repo.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}
