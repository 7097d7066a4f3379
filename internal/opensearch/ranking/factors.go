package ranking

import (
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/rx3lixir/search-service/internal/opensearch/models"
)

// Factors - семь независимых факторов релевантности, каждый в [0,1]
type Factors struct {
	TextRelevance    float64 `json:"text_relevance"`
	Popularity       float64 `json:"popularity"`
	Recency          float64 `json:"recency"`
	Authority        float64 `json:"authority"`
	UserPreference   float64 `json:"user_preference"`
	ClickThroughRate float64 `json:"click_through_rate"`
	Completeness     float64 `json:"completeness"`
}

// UserContext - контекст пользователя для персонализации
type UserContext struct {
	Preferences   []string
	SearchHistory []string
	Location      string
	UserType      string
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// textRelevance оценивает текстовое совпадение документа с запросом.
// Точное совпадение заголовка дороже вхождения фразы, вхождение фразы
// дороже перекрытия по токенам; сырой счет нормируется делением на 5.
func textRelevance(doc *models.Document, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	title := strings.ToLower(doc.Title)
	desc := strings.ToLower(doc.Description)
	qTokens := strings.Fields(q)

	var score float64

	switch {
	case title == q:
		score += 2.0
	case strings.Contains(title, q):
		score += 1.5
	default:
		score += overlapRatio(title, qTokens)
	}

	if desc != "" {
		if strings.Contains(desc, q) {
			score += 1.0
		} else {
			score += 0.5 * overlapRatio(desc, qTokens)
		}
	}

	// Плотность совпадений в теле, с потолком
	if doc.Content != "" {
		content := strings.ToLower(doc.Content)
		contentTokens := strings.Fields(content)
		if len(contentTokens) > 0 {
			matches := 0
			for _, t := range contentTokens {
				for _, qt := range qTokens {
					if t == qt {
						matches++
						break
					}
				}
			}
			density := float64(matches) / float64(len(contentTokens))
			score += math.Min(density*5, 0.5)
		}
	}

	for _, tag := range doc.Tags {
		lt := strings.ToLower(tag)
		if strings.Contains(lt, q) || strings.Contains(q, lt) {
			score += 0.3
			break
		}
	}

	if doc.Category != "" && strings.Contains(strings.ToLower(doc.Category), q) {
		score += 0.2
	}

	return clamp01(score / 5)
}

// overlapRatio - доля токенов запроса, встречающихся в тексте
func overlapRatio(text string, qTokens []string) float64 {
	if len(qTokens) == 0 {
		return 0
	}
	matched := 0
	for _, t := range qTokens {
		if strings.Contains(text, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(qTokens))
}

// popularity складывает логарифмы счетчиков вовлеченности и, когда они
// есть, обратный рейтинг и обратный процент зачисления. Отсутствующий
// вход просто ничего не добавляет - типы без атрибута не штрафуются.
func popularity(doc *models.Document) float64 {
	score := 0.3*math.Min(1, math.Log10(float64(doc.ViewCount)+1)/6) +
		0.2*math.Min(1, math.Log10(float64(doc.LikeCount)+1)/4) +
		0.2*math.Min(1, math.Log10(float64(doc.ShareCount)+1)/4)

	if doc.Institution != nil {
		if rank := doc.Institution.Ranking; rank > 0 && rank <= 1000 {
			score += 0.2 * float64(1000-rank) / 1000
		}
		if ar := doc.Institution.AcceptanceRate; ar != nil && *ar > 0 && *ar <= 100 {
			score += 0.1 * (100 - *ar) / 100
		}
	}

	return clamp01(score)
}

// recency - ступенчатая функция от возраста документа.
// Границы 7/30/90/365/730 дней включительны снизу.
func recency(doc *models.Document, now time.Time) float64 {
	at := doc.UpdatedOrCreated()
	if at.IsZero() {
		// Неизвестная дата - нейтральная оценка
		return 0.5
	}

	days := now.Sub(at).Hours() / 24
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.9
	case days <= 90:
		return 0.7
	case days <= 365:
		return 0.5
	case days <= 730:
		return 0.3
	default:
		return 0.1
	}
}

// Таблица авторитетности доменов. TLD включены как fallback,
// точные хосты перекрывают их.
var domainAuthority = map[string]float64{
	"edu":           0.3,
	"gov":           0.3,
	"ac.uk":         0.3,
	"org":           0.15,
	"harvard.edu":   0.3,
	"mit.edu":       0.3,
	"ox.ac.uk":      0.3,
	"stanford.edu":  0.3,
	"daad.de":       0.25,
	"fulbright.org": 0.25,
}

// authority оценивает авторитетность источника документа
func authority(doc *models.Document) float64 {
	score := 0.5

	if doc.MetaBool("author_verified") {
		score += 0.1
	}

	switch doc.MetaString("source_type") {
	case "official", "institution":
		score += 0.3
	case "verified":
		score += 0.2
	case "community":
		score += 0.1
	}

	if doc.URL != "" {
		score += domainBonus(doc.URL)
	}

	if citations, ok := doc.MetaFloat("citation_count"); ok && citations > 0 {
		score += math.Min(0.2, math.Log10(citations+1)/10)
	}

	return clamp01(score)
}

// domainBonus возвращает бонус авторитетности по хосту URL, потолок 0.3
func domainBonus(rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return 0
	}
	host := strings.ToLower(u.Hostname())

	if bonus, ok := domainAuthority[host]; ok {
		return math.Min(bonus, 0.3)
	}

	// Пробуем суффиксы хоста: сначала более длинные (ac.uk раньше uk)
	parts := strings.Split(host, ".")
	for i := 0; i < len(parts)-1; i++ {
		suffix := strings.Join(parts[i:], ".")
		if bonus, ok := domainAuthority[suffix]; ok {
			return math.Min(bonus, 0.3)
		}
	}
	return 0
}

// userPreference оценивает соответствие документа контексту пользователя
func userPreference(doc *models.Document, user *UserContext) float64 {
	score := 0.5
	if user == nil {
		return score
	}

	for _, pref := range user.Preferences {
		lp := strings.ToLower(pref)
		for _, tag := range doc.Tags {
			if strings.Contains(strings.ToLower(tag), lp) {
				score += 0.1
				break
			}
		}
	}

	if user.Location != "" {
		docLocation := strings.ToLower(doc.MetaString("location"))
		if docLocation != "" && strings.Contains(docLocation, strings.ToLower(user.Location)) {
			score += 0.2
		}
	}

	if len(user.SearchHistory) > 0 {
		title := strings.ToLower(doc.Title)
		for _, past := range user.SearchHistory {
			for _, token := range strings.Fields(strings.ToLower(past)) {
				if strings.Contains(title, token) {
					score += 0.05
				}
			}
		}
	}

	if user.UserType != "" {
		audience := strings.ToLower(doc.MetaString("target_audience"))
		if audience != "" && strings.Contains(audience, strings.ToLower(user.UserType)) {
			score += 0.15
		}
	}

	return clamp01(score)
}

// Базовые CTR по типам документов
var baseCTR = map[string]float64{
	models.TypeInstitution: 0.15,
	models.TypeProgram:     0.12,
	models.TypeFunding:     0.18,
	models.TypeContentItem: 0.08,
}

const defaultCTR = 0.10

// clickThroughRate - базовый CTR типа плюс ограниченный бонус за
// популярность, общий потолок 0.5
func clickThroughRate(doc *models.Document) float64 {
	rate, ok := baseCTR[doc.Type]
	if !ok {
		rate = defaultCTR
	}

	rate += math.Min(0.2, math.Log10(float64(doc.ViewCount)+1)/30)

	return math.Min(rate, 0.5)
}

// completeness - взвешенный чеклист заполненности документа.
// Четыре обязательных поля с весом 2, пять опциональных с весом 1,
// плюс бонусы за длинное тело и богатый набор тегов.
func completeness(doc *models.Document) float64 {
	const possible = 15.0 // 4*2 + 5*1 + 2 бонуса

	var earned float64

	if doc.Title != "" {
		earned += 2
	}
	if doc.Description != "" {
		earned += 2
	}
	if doc.Category != "" {
		earned += 2
	}
	if len(doc.Tags) > 0 {
		earned += 2
	}

	if doc.Content != "" {
		earned++
	}
	if doc.Author != "" {
		earned++
	}
	if doc.URL != "" {
		earned++
	}
	if doc.ImageURL != "" {
		earned++
	}
	if doc.UpdatedAt != nil && !doc.UpdatedAt.IsZero() {
		earned++
	}

	if len(doc.Content) > 500 {
		earned++
	}
	if len(doc.Tags) > 3 {
		earned++
	}

	return clamp01(earned / possible)
}
