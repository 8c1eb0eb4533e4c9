package service

import (
	"context"
	"fmt"
	"strings"

	"beerme/internal/app/beerme/entity"
)

// MatchScope определяет, по какому полю фильтруются результаты каталога
type MatchScope string

const (
	MatchBeer    MatchScope = "beer"    // Совпадение по имени пива
	MatchBrewery MatchScope = "brewery" // Совпадение по имени любой из пивоварен
)

// ResolverService превращает свободный текст запроса в упорядоченный
// список попаданий каталога
type ResolverService struct {
	catalog BeerCatalog
}

// NewResolverService создает новый сервис резолвинга поисковых запросов
func NewResolverService(catalog BeerCatalog) *ResolverService {
	return &ResolverService{catalog: catalog}
}

// Resolve ищет в каталоге и фильтрует результаты в порядке каталога:
// остается пиво, чье имя (или имя любой пивоварни при MatchBrewery) содержит
// хотя бы один токен запроса без учета регистра. Сбор останавливается,
// как только набрано maxResults попаданий.
//
// Resolve не ограничивает maxResults сверху: обрезка до 10 - это санация
// пользовательского ввода, она живет на границе команд, не здесь
func (s *ResolverService) Resolve(ctx context.Context, query string, maxResults int, scope MatchScope) ([]entity.Beer, error) {
	beers, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}

	tokens := queryTokens(query)

	var hits []entity.Beer
	for _, beer := range beers {
		if len(hits) >= maxResults {
			break
		}
		if matchesTokens(&beer, tokens, scope) {
			hits = append(hits, beer)
		}
	}

	if len(hits) == 0 {
		return nil, ErrNoMatches
	}
	return hits, nil
}

// ResolveOne - соглашение о дизамбигуации для review/vote/describe:
// ровно одно попадание - успех, ноль - ошибка с причиной
func (s *ResolverService) ResolveOne(ctx context.Context, query string) (*entity.Beer, error) {
	hits, err := s.Resolve(ctx, query, 1, MatchBeer)
	if err != nil {
		return nil, err
	}
	return &hits[0], nil
}

func queryTokens(query string) []string {
	fields := strings.Fields(query)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

func matchesTokens(beer *entity.Beer, tokens []string, scope MatchScope) bool {
	switch scope {
	case MatchBrewery:
		for _, brewery := range beer.Breweries {
			name := strings.ToLower(brewery.Name)
			for _, token := range tokens {
				if strings.Contains(name, token) {
					return true
				}
			}
		}
	default:
		name := strings.ToLower(beer.Name)
		for _, token := range tokens {
			if strings.Contains(name, token) {
				return true
			}
		}
	}
	return false
}
