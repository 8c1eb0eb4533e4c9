package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers

	// ErrNoMatches - каталог ответил, но фильтр отсеял все кандидаты
	// Для пользователя это другое сообщение, чем недоступный каталог
	ErrNoMatches = errors.New("no search results matched")

	// ErrNoPriorRecord - голос по пиву, у которого еще нет записи:
	// сначала нужен хотя бы один отзыв
	ErrNoPriorRecord = errors.New("no review record to vote on")
)
