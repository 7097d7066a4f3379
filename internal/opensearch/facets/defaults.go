package facets

// DefaultConfigs - фасеты, доступные из коробки, без админской
// настройки. Upsert с тем же именем перекрывает дефолт, конфиги из
// хранилища тоже.
func DefaultConfigs() map[string]Config {
	f := func(v float64) *float64 { return &v }

	return map[string]Config{
		"type": {
			Field:       "type",
			Type:        TypeTerms,
			DisplayName: "Type",
		},
		"category": {
			Field:       "category",
			Type:        TypeTerms,
			DisplayName: "Category",
		},
		"tags": {
			Field:       "tags",
			Type:        TypeTerms,
			DisplayName: "Tags",
		},
		"country": {
			Field:       "institution.country",
			Type:        TypeTerms,
			DisplayName: "Country",
		},
		"tuition": {
			Field:       "institution.tuition",
			Type:        TypeRange,
			DisplayName: "Tuition",
			Ranges: []Range{
				{Key: "free", To: f(1)},
				{Key: "low", From: f(1), To: f(20000)},
				{Key: "medium", From: f(20000), To: f(45000)},
				{Key: "high", From: f(45000)},
			},
		},
		"funding_amount": {
			Field:       "funding.amount",
			Type:        TypeRange,
			DisplayName: "Funding Amount",
			Ranges: []Range{
				{Key: "small", To: f(5000)},
				{Key: "medium", From: f(5000), To: f(25000)},
				{Key: "large", From: f(25000)},
			},
		},
		"added": {
			Field:       "created_at",
			Type:        TypeDateRange,
			DisplayName: "Added",
			DateRanges: []DateRange{
				{Key: "last_week", From: "now-7d/d"},
				{Key: "last_month", From: "now-30d/d"},
				{Key: "last_year", From: "now-1y/d"},
			},
		},
	}
}
