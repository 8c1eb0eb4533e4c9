package entity

// CommandRequest - входящая команда бота через webhook
type CommandRequest struct {
	Channel string `json:"channel" validate:"required"`
	Author  string `json:"author" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

// CommandResponse - ответ бота: ноль или больше строк для канала
type CommandResponse struct {
	Replies []string `json:"replies"`
}

// ReviewSubmission - разобранный текст команды review ("name; rating; description")
type ReviewSubmission struct {
	BeerName    string  `validate:"required"`
	Rating      float64 `validate:"gte=0,lte=10"`
	Description string  `validate:"required"`
}

// RatedBeer - строка топа по средней оценке
type RatedBeer struct {
	BeerID      string  `json:"beer_id"`
	Name        string  `json:"name"`
	BreweryName string  `json:"brewery_name"`
	Average     float64 `json:"average"`
	ReviewCount int     `json:"review_count"`
	Votes       int     `json:"votes"`
}

// RatingLeaderboard - топ по оценкам плюс подсказка ширины колонки для выравнивания
type RatingLeaderboard struct {
	Entries     []RatedBeer `json:"entries"`
	ColumnWidth int         `json:"column_width"`
}

// MentionedBeer - строка топа по числу упоминаний
type MentionedBeer struct {
	BeerID      string `json:"beer_id"`
	Name        string `json:"name"`
	BreweryName string `json:"brewery_name"`
	Mentions    int    `json:"mentions"`
	Mentioners  int    `json:"mentioners"` // Уникальные авторы упоминаний
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
