package facets

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Таблица отображаемых имен значений по полям. Для всего, чего здесь
// нет, работает Title-Case преобразование сырого ключа.
var displayNames = map[string]map[string]string{
	"type": {
		"institution":       "Institutions",
		"program":           "Programs",
		"funding":           "Funding",
		"contentItem":       "Articles & Guides",
		"applicationRecord": "Applications",
	},
	"institution.country": {
		"us": "United States",
		"uk": "United Kingdom",
		"de": "Germany",
		"nl": "Netherlands",
		"au": "Australia",
	},
	"program.degree": {
		"bachelor": "Bachelor's",
		"master":   "Master's",
		"phd":      "PhD",
	},
}

// DisplayName возвращает отображаемое имя значения фасета
func DisplayName(field, key string) string {
	if table, ok := displayNames[field]; ok {
		if name, ok := table[key]; ok {
			return name
		}
	}
	return titleCase(key)
}

// titleCase превращает сырой ключ в читаемый вид:
// "computer_science" -> "Computer Science"
func titleCase(key string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ").Replace(key)
	words := strings.Fields(replaced)
	for i, word := range words {
		// Первая руна может быть многобайтовой, срезать по байту нельзя
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
