package format

import (
	"strings"

	"beerme/internal/app/beerme/entity"
)

// FieldKind - закрытый набор полей пива, которые умеет показывать бот
type FieldKind int

const (
	FieldName FieldKind = iota
	FieldStyle
	FieldABV
	FieldGlass
	FieldDescription
	FieldBrewery
)

// Цвета mIRC по полям (как в оригинальном плагине)
const (
	colorOrange    = "07"
	colorBrown     = "05"
	colorDarkGrey  = "14"
	colorPurple    = "06"
	colorLightGrey = "15"
	colorDarkBlue  = "02"
)

// maxBreweries ограничивает число пивоварен в выводе поля brewery
const maxBreweries = 3

// ParseFields разбирает список имен полей в FieldKind
// Понимает алиасы desc и brew/breweries; неизвестные имена молча пропускаются
func ParseFields(names []string) []FieldKind {
	kinds := make([]FieldKind, 0, len(names))
	for _, name := range names {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "name":
			kinds = append(kinds, FieldName)
		case "style":
			kinds = append(kinds, FieldStyle)
		case "abv":
			kinds = append(kinds, FieldABV)
		case "glass":
			kinds = append(kinds, FieldGlass)
		case "description", "desc":
			kinds = append(kinds, FieldDescription)
		case "brewery", "breweries", "brew":
			kinds = append(kinds, FieldBrewery)
		}
	}
	return kinds
}

// NeedsBreweries сообщает, требует ли список полей данных о пивоварнях
// (каталог отдает их только при withBreweries=Y)
func NeedsBreweries(kinds []FieldKind) bool {
	for _, k := range kinds {
		if k == FieldBrewery {
			return true
		}
	}
	return false
}

// Extract достает сырое значение поля из пива без оформления
// Второй результат false, когда поля у этого пива нет
func (k FieldKind) Extract(beer *entity.Beer) (string, bool) {
	switch k {
	case FieldName:
		return nonEmpty(beer.Name)
	case FieldStyle:
		if beer.Style == nil {
			return "", false
		}
		return nonEmpty(beer.Style.Name)
	case FieldABV:
		return nonEmpty(beer.ABV)
	case FieldGlass:
		if beer.Glass == nil {
			return "", false
		}
		return nonEmpty(beer.Glass.Name)
	case FieldDescription:
		return nonEmpty(beer.Description)
	case FieldBrewery:
		if len(beer.Breweries) == 0 {
			return "", false
		}
		parts := make([]string, 0, maxBreweries)
		for i, brewery := range beer.Breweries {
			if i >= maxBreweries {
				break
			}
			if brewery.Established != "" {
				parts = append(parts, brewery.Name+", est. "+brewery.Established)
			} else {
				parts = append(parts, brewery.Name)
			}
		}
		return strings.Join(parts, " | "), true
	}
	return "", false
}

func nonEmpty(s string) (string, bool) {
	return s, s != ""
}

// Renderer оформляет поля пива в строку для канала
// Colors включает цветовые коды mIRC (выключается в тестах и для не-IRC транспортов)
type Renderer struct {
	Colors bool
}

// Render собирает строку из присутствующих полей в заданном порядке:
// имя без скобок, остальные поля в квадратных скобках, ABV с суффиксом "% ABV"
func (r Renderer) Render(beer *entity.Beer, kinds []FieldKind) string {
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		value, ok := k.Extract(beer)
		if !ok {
			continue
		}

		if k == FieldABV {
			value += "% ABV"
		}
		value = r.colorize(value, fieldColor(k))
		if k != FieldName {
			value = "[" + value + "]"
		}
		out = append(out, value)
	}
	return strings.Join(out, " ")
}

func fieldColor(k FieldKind) string {
	switch k {
	case FieldName:
		return colorOrange
	case FieldStyle:
		return colorBrown
	case FieldABV:
		return colorDarkGrey
	case FieldGlass:
		return colorPurple
	case FieldDescription:
		return colorLightGrey
	case FieldBrewery:
		return colorDarkBlue
	}
	return ""
}

func (r Renderer) colorize(s, color string) string {
	if !r.Colors || color == "" {
		return s
	}
	return "\x03" + color + s + "\x03"
}
