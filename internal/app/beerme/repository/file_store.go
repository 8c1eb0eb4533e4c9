package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"beerme/internal/app/beerme/entity"
)

// fileScopes - реестр файлов по каналам для одного вида записей
// Файл канала открывается лениво при первом обращении и живет до Close
// Мутации канала сериализуются его собственным мьютексом: хост сейчас
// обрабатывает команды по одной, но хранилище на это не полагается
type fileScopes[R any] struct {
	dir    string
	mu     sync.Mutex // Защищает scopes
	scopes map[string]*scopeFile[R]
}

type scopeFile[R any] struct {
	mu      sync.Mutex
	path    string
	records map[string]*R
}

func newFileScopes[R any](dataDir, kind string) (*fileScopes[R], error) {
	dir := filepath.Join(dataDir, kind)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &fileScopes[R]{
		dir:    dir,
		scopes: make(map[string]*scopeFile[R]),
	}, nil
}

// scope возвращает файл канала, читая его с диска при первом обращении
func (f *fileScopes[R]) scope(channel string) (*scopeFile[R], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sf, ok := f.scopes[channel]; ok {
		return sf, nil
	}

	sf := &scopeFile[R]{
		path:    filepath.Join(f.dir, sanitizeScope(channel)+".json"),
		records: make(map[string]*R),
	}

	data, err := os.ReadFile(sf.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read scope file: %w", err)
		}
	} else if len(data) > 0 {
		if err := json.Unmarshal(data, &sf.records); err != nil {
			return nil, fmt.Errorf("failed to decode scope file %s: %w", sf.path, err)
		}
	}

	f.scopes[channel] = sf
	return sf, nil
}

// flushLocked пишет канал на диск; вызывается под sf.mu
// Запись через временный файл и rename, чтобы не оставить канал полузаписанным
func (sf *scopeFile[R]) flushLocked() error {
	data, err := json.MarshalIndent(sf.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scope file: %w", err)
	}

	tmp := sf.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("failed to write scope file: %w", err)
	}
	if err := os.Rename(tmp, sf.path); err != nil {
		return fmt.Errorf("failed to replace scope file: %w", err)
	}
	return nil
}

// sanitizeScope превращает имя канала в безопасное имя файла
func sanitizeScope(channel string) string {
	out := make([]byte, 0, len(channel))
	for i := 0; i < len(channel); i++ {
		c := channel[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// FileReviewStore хранит отзывы во встроенных JSON-файлах: один файл на канал
type FileReviewStore struct {
	files *fileScopes[entity.ReviewRecord]
}

// NewFileReviewStore создает файловое хранилище отзывов под dataDir/reviews
func NewFileReviewStore(dataDir string) (*FileReviewStore, error) {
	files, err := newFileScopes[entity.ReviewRecord](dataDir, "reviews")
	if err != nil {
		return nil, err
	}
	return &FileReviewStore{files: files}, nil
}

func (s *FileReviewStore) Get(ctx context.Context, channel, beerID string) (*entity.ReviewRecord, error) {
	sf, err := s.files.scope(channel)
	if err != nil {
		return nil, err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	rec, ok := sf.records[beerID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneReviewRecord(rec), nil
}

func (s *FileReviewStore) GetAll(ctx context.Context, channel string) (map[string]*entity.ReviewRecord, error) {
	sf, err := s.files.scope(channel)
	if err != nil {
		return nil, err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	out := make(map[string]*entity.ReviewRecord, len(sf.records))
	for id, rec := range sf.records {
		out[id] = cloneReviewRecord(rec)
	}
	return out, nil
}

func (s *FileReviewStore) UpsertReview(ctx context.Context, channel, beerID, name, brewery string, review entity.Review) (*entity.ReviewRecord, error) {
	sf, err := s.files.scope(channel)
	if err != nil {
		return nil, err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	rec, ok := sf.records[beerID]
	if ok {
		// Запись уже есть: только дописываем отзыв, остальные поля не трогаем
		rec.Reviews = append(rec.Reviews, review)
	} else {
		rec = &entity.ReviewRecord{
			BeerID:        beerID,
			Name:          name,
			BreweryName:   brewery,
			FirstReviewer: review.Author,
			CreatedAt:     time.Now().UTC(),
			Reviews:       []entity.Review{review},
			Votes:         0,
		}
		sf.records[beerID] = rec
	}

	if err := sf.flushLocked(); err != nil {
		return nil, err
	}
	return cloneReviewRecord(rec), nil
}

func (s *FileReviewStore) SetVotes(ctx context.Context, channel, beerID string, votes int) error {
	sf, err := s.files.scope(channel)
	if err != nil {
		return err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	rec, ok := sf.records[beerID]
	if !ok {
		return ErrRecordNotFound
	}
	rec.Votes = votes

	return sf.flushLocked()
}

func (s *FileReviewStore) Flush(ctx context.Context, channel string) error {
	sf, err := s.files.scope(channel)
	if err != nil {
		return err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.flushLocked()
}

// Close сбрасывает все открытые каналы на диск
func (s *FileReviewStore) Close(ctx context.Context) error {
	return closeScopes(s.files)
}

// FileMentionStore хранит упоминания во встроенных JSON-файлах: один файл на канал
// Файлы упоминаний лежат отдельно от файлов отзывов
type FileMentionStore struct {
	files *fileScopes[entity.MentionRecord]
}

// NewFileMentionStore создает файловое хранилище упоминаний под dataDir/mentions
func NewFileMentionStore(dataDir string) (*FileMentionStore, error) {
	files, err := newFileScopes[entity.MentionRecord](dataDir, "mentions")
	if err != nil {
		return nil, err
	}
	return &FileMentionStore{files: files}, nil
}

func (s *FileMentionStore) Get(ctx context.Context, channel, beerID string) (*entity.MentionRecord, error) {
	sf, err := s.files.scope(channel)
	if err != nil {
		return nil, err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	rec, ok := sf.records[beerID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneMentionRecord(rec), nil
}

func (s *FileMentionStore) GetAll(ctx context.Context, channel string) (map[string]*entity.MentionRecord, error) {
	sf, err := s.files.scope(channel)
	if err != nil {
		return nil, err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	out := make(map[string]*entity.MentionRecord, len(sf.records))
	for id, rec := range sf.records {
		out[id] = cloneMentionRecord(rec)
	}
	return out, nil
}

func (s *FileMentionStore) UpsertMention(ctx context.Context, channel, beerID, name, brewery string, ref entity.MentionRef) (*entity.MentionRecord, error) {
	sf, err := s.files.scope(channel)
	if err != nil {
		return nil, err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()

	rec, ok := sf.records[beerID]
	if ok {
		rec.Refs = append(rec.Refs, ref)
	} else {
		rec = &entity.MentionRecord{
			BeerID:      beerID,
			Name:        name,
			BreweryName: brewery,
			Refs:        []entity.MentionRef{ref},
		}
		sf.records[beerID] = rec
	}

	if err := sf.flushLocked(); err != nil {
		return nil, err
	}
	return cloneMentionRecord(rec), nil
}

func (s *FileMentionStore) Flush(ctx context.Context, channel string) error {
	sf, err := s.files.scope(channel)
	if err != nil {
		return err
	}

	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.flushLocked()
}

func (s *FileMentionStore) Close(ctx context.Context) error {
	return closeScopes(s.files)
}

func closeScopes[R any](files *fileScopes[R]) error {
	files.mu.Lock()
	defer files.mu.Unlock()

	var firstErr error
	for _, sf := range files.scopes {
		sf.mu.Lock()
		if err := sf.flushLocked(); err != nil && firstErr == nil {
			firstErr = err
		}
		sf.mu.Unlock()
	}
	files.scopes = make(map[string]*scopeFile[R])
	return firstErr
}

func cloneReviewRecord(rec *entity.ReviewRecord) *entity.ReviewRecord {
	out := *rec
	out.Reviews = append([]entity.Review(nil), rec.Reviews...)
	return &out
}

func cloneMentionRecord(rec *entity.MentionRecord) *entity.MentionRecord {
	out := *rec
	out.Refs = append([]entity.MentionRef(nil), rec.Refs...)
	return &out
}
