package entity

import "time"

// Beer представляет пиво из каталога BreweryDB
// Каталог внешний и read-only: бот хранит только ссылки (id + снимок имени/пивоварни)
type Beer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ABV         string    `json:"abv,omitempty"`
	Description string    `json:"description,omitempty"`
	Style       *Style    `json:"style,omitempty"`
	Glass       *Glass    `json:"glass,omitempty"`
	Breweries   []Brewery `json:"breweries,omitempty"`
}

// Brewery представляет пивоварню из каталога
type Brewery struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Established string `json:"established,omitempty"` // Год основания (может отсутствовать)
}

// Style представляет стиль пива
type Style struct {
	Name string `json:"name"`
}

// Glass представляет рекомендуемый бокал
type Glass struct {
	Name string `json:"name"`
}

// PrimaryBrewery возвращает имя первой пивоварни или пустую строку
func (b *Beer) PrimaryBrewery() string {
	if len(b.Breweries) == 0 {
		return ""
	}
	return b.Breweries[0].Name
}

// Review - один отзыв внутри ReviewRecord
// Timestamp хранится строкой в том виде, в котором его показывает бот
type Review struct {
	Rating      float64 `json:"rating" bson:"rating"`
	Description string  `json:"description" bson:"description"`
	Author      string  `json:"author" bson:"author"`
	Timestamp   string  `json:"timestamp" bson:"timestamp"`
}

// ReviewRecord - агрегат отзывов по одному пиву в рамках одного канала
// Name и BreweryName - денормализованный снимок на момент первого отзыва:
// каталог не обязан оставаться доступным или стабильным
type ReviewRecord struct {
	BeerID        string    `json:"beer_id" bson:"beer_id"`
	Name          string    `json:"name" bson:"name"`
	BreweryName   string    `json:"brewery_name" bson:"brewery_name"`
	FirstReviewer string    `json:"first_reviewer" bson:"first_reviewer"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	Reviews       []Review  `json:"reviews" bson:"reviews"` // Append-only, хронологический порядок
	Votes         int       `json:"votes" bson:"votes"`     // Никогда не уходит ниже нуля
}

// AverageRating считает среднюю оценку по всем отзывам
// Запись без отзывов не существует, поэтому деления на ноль здесь не бывает
func (r *ReviewRecord) AverageRating() float64 {
	var sum float64
	for _, rev := range r.Reviews {
		sum += rev.Rating
	}
	return sum / float64(len(r.Reviews))
}

// MentionRef - одно упоминание пива в канале
type MentionRef struct {
	Author    string `json:"author" bson:"author"`
	Timestamp string `json:"timestamp" bson:"timestamp"`
}

// MentionRecord - агрегат упоминаний по одному пиву в рамках одного канала
type MentionRecord struct {
	BeerID      string       `json:"beer_id" bson:"beer_id"`
	Name        string       `json:"name" bson:"name"`
	BreweryName string       `json:"brewery_name" bson:"brewery_name"`
	Refs        []MentionRef `json:"refs" bson:"refs"` // Append-only
}

// DistinctMentioners возвращает число уникальных авторов упоминаний
func (m *MentionRecord) DistinctMentioners() int {
	seen := make(map[string]struct{}, len(m.Refs))
	for _, ref := range m.Refs {
		seen[ref.Author] = struct{}{}
	}
	return len(seen)
}

// BeerEvent представляет событие бота для Kafka
type BeerEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"` // REVIEW_CREATED, VOTE_APPLIED, MENTION_RECORDED, LEADERBOARD_DIGEST
	Channel   string    `json:"channel"`
	BeerID    string    `json:"beer_id,omitempty"`
	BeerName  string    `json:"beer_name,omitempty"`
	Author    string    `json:"author,omitempty"`
	Rating    float64   `json:"rating,omitempty"`
	Votes     int       `json:"votes,omitempty"`
	Payload   string    `json:"payload,omitempty"` // Текст дайджеста для LEADERBOARD_DIGEST
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventReviewCreated     = "REVIEW_CREATED"
	EventVoteApplied       = "VOTE_APPLIED"
	EventMentionRecorded   = "MENTION_RECORDED"
	EventLeaderboardDigest = "LEADERBOARD_DIGEST"
)
