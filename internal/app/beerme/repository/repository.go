package repository

import (
	"context"
	"errors"

	"beerme/internal/app/beerme/entity"
)

var (
	// ErrRecordNotFound - записи для (канал, пиво) еще нет
	// Отличается от ошибок ввода-вывода: те считаются фатальными для операции
	ErrRecordNotFound = errors.New("record not found")
)

// ReviewStore - хранилище отзывов, изолированное по каналам
// Каждый канал - независимая единица хранения, ключи каналов не пересекаются
// Возвращаемые записи - снимки: после мутации запись нужно перечитывать
type ReviewStore interface {
	// Get возвращает запись или ErrRecordNotFound
	Get(ctx context.Context, channel, beerID string) (*entity.ReviewRecord, error)
	// GetAll возвращает все записи канала (пустая map, если их нет)
	GetAll(ctx context.Context, channel string) (map[string]*entity.ReviewRecord, error)
	// UpsertReview дописывает отзыв в существующую запись или создает новую
	// с votes=0 и снимком имени/пивоварни; долговечно после возврата
	UpsertReview(ctx context.Context, channel, beerID, name, brewery string, review entity.Review) (*entity.ReviewRecord, error)
	// SetVotes перезаписывает счетчик голосов; ErrRecordNotFound без записи
	SetVotes(ctx context.Context, channel, beerID string, votes int) error
	// Flush сбрасывает состояние канала на диск (no-op для внешних бэкендов)
	Flush(ctx context.Context, channel string) error
	Close(ctx context.Context) error
}

// MentionStore - хранилище упоминаний, изолированное по каналам
// Отдельное пространство ключей и отдельный файл/хэш/коллекция от отзывов
type MentionStore interface {
	Get(ctx context.Context, channel, beerID string) (*entity.MentionRecord, error)
	GetAll(ctx context.Context, channel string) (map[string]*entity.MentionRecord, error)
	// UpsertMention дописывает упоминание или создает новую запись со снимком полей
	UpsertMention(ctx context.Context, channel, beerID, name, brewery string, ref entity.MentionRef) (*entity.MentionRecord, error)
	Flush(ctx context.Context, channel string) error
	Close(ctx context.Context) error
}
