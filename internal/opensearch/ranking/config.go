package ranking

import (
	"github.com/rx3lixir/search-service/pkg/errs"
)

// Имена профилей ранжирования для A/B экспериментов
const (
	ProfileControl      = "control"
	ProfileExperimental = "experimental"
)

// Weights - веса семи факторов релевантности. Сумма не обязана равняться 1.
type Weights struct {
	TextRelevance    float64 `mapstructure:"text_relevance"`
	Popularity       float64 `mapstructure:"popularity"`
	Recency          float64 `mapstructure:"recency"`
	Authority        float64 `mapstructure:"authority"`
	UserPreference   float64 `mapstructure:"user_preference"`
	ClickThroughRate float64 `mapstructure:"click_through_rate"`
	Completeness     float64 `mapstructure:"completeness"`
}

// Boosts - множители для особых типов совпадений
type Boosts struct {
	TitleMatch   float64 `mapstructure:"title_match"`
	ExactMatch   float64 `mapstructure:"exact_match"`
	PhraseMatch  float64 `mapstructure:"phrase_match"`
	SynonymMatch float64 `mapstructure:"synonym_match"`
}

// Penalties - понижающие множители
type Penalties struct {
	DuplicateContent float64 `mapstructure:"duplicate_content"`
	LowQuality       float64 `mapstructure:"low_quality"`
	Outdated         float64 `mapstructure:"outdated"`
}

// Config - полная конфигурация ранжирования. Передается по значению
// в каждый вызов скоринга: общих мутируемых экземпляров нет, поэтому
// конкурентные вызовы с разными профилями не пересекаются.
type Config struct {
	Profile   string
	Weights   Weights
	Boosts    Boosts
	Penalties Penalties
}

// ControlConfig возвращает конфигурацию контрольного профиля
func ControlConfig() Config {
	return Config{
		Profile: ProfileControl,
		Weights: Weights{
			TextRelevance:    0.40,
			Popularity:       0.15,
			Recency:          0.10,
			Authority:        0.15,
			UserPreference:   0.10,
			ClickThroughRate: 0.05,
			Completeness:     0.05,
		},
		Boosts: Boosts{
			TitleMatch:   1.5,
			ExactMatch:   2.0,
			PhraseMatch:  1.3,
			SynonymMatch: 1.1,
		},
		Penalties: Penalties{
			DuplicateContent: 0.5,
			LowQuality:       0.6,
			Outdated:         0.8,
		},
	}
}

// ExperimentalConfig возвращает конфигурацию экспериментального профиля:
// сильнее поведенческие сигналы, слабее текстовая релевантность
func ExperimentalConfig() Config {
	cfg := ControlConfig()
	cfg.Profile = ProfileExperimental
	cfg.Weights = Weights{
		TextRelevance:    0.30,
		Popularity:       0.20,
		Recency:          0.10,
		Authority:        0.15,
		UserPreference:   0.10,
		ClickThroughRate: 0.10,
		Completeness:     0.05,
	}
	return cfg
}

// ConfigForProfile возвращает конфигурацию по имени профиля
func ConfigForProfile(profile string) (Config, error) {
	switch profile {
	case "", ProfileControl:
		return ControlConfig(), nil
	case ProfileExperimental:
		return ExperimentalConfig(), nil
	}
	return Config{}, errs.NewConfiguration("ranking", "unknown profile: "+profile)
}
