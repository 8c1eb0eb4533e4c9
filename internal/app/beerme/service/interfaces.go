package service

import (
	"context"

	"beerme/internal/app/beerme/entity"
)

// BeerCatalog интерфейс внешнего каталога BreweryDB
// Используется для dependency injection и упрощения тестирования
type BeerCatalog interface {
	Random(ctx context.Context, withBreweries bool) (*entity.Beer, error)
	Search(ctx context.Context, query string) ([]entity.Beer, error)
}
