package facets

// BuildAggregations переводит запрошенные фасеты в агрегации движка.
// Ненастроенный фасет пропускается с предупреждением: ответ получится
// частичным, но валидным.
func (r *Registry) BuildAggregations(requested []string) map[string]any {
	aggs := make(map[string]any)

	for _, name := range requested {
		cfg, ok := r.Get(name)
		if !ok {
			r.log.Warn("Requested facet is not configured, skipping", "facet", name)
			continue
		}

		aggs[name] = buildAggregation(&cfg)
	}

	return aggs
}

func buildAggregation(cfg *Config) map[string]any {
	switch cfg.Type {
	case TypeTerms:
		order := map[string]any{"_count": "desc"}
		if cfg.OrderOrDefault() == OrderKey {
			order = map[string]any{"_key": "asc"}
		}
		return map[string]any{
			"terms": map[string]any{
				"field": cfg.Field + ".keyword",
				"size":  cfg.SizeOrDefault(),
				"order": order,
			},
		}

	case TypeRange:
		ranges := make([]any, 0, len(cfg.Ranges))
		for _, rng := range cfg.Ranges {
			entry := map[string]any{"key": rng.Key}
			if rng.From != nil {
				entry["from"] = *rng.From
			}
			if rng.To != nil {
				entry["to"] = *rng.To
			}
			ranges = append(ranges, entry)
		}
		return map[string]any{
			"range": map[string]any{
				"field":  cfg.Field,
				"keyed":  false,
				"ranges": ranges,
			},
		}

	case TypeDateRange:
		ranges := make([]any, 0, len(cfg.DateRanges))
		for _, rng := range cfg.DateRanges {
			entry := map[string]any{"key": rng.Key}
			if rng.From != "" {
				entry["from"] = rng.From
			}
			if rng.To != "" {
				entry["to"] = rng.To
			}
			ranges = append(ranges, entry)
		}
		return map[string]any{
			"date_range": map[string]any{
				"field":  cfg.Field,
				"ranges": ranges,
			},
		}

	case TypeHistogram:
		return map[string]any{
			"histogram": map[string]any{
				"field":    cfg.Field,
				"interval": cfg.Interval,
			},
		}
	}

	// Validate не пропустит неизвестный тип, сюда попасть нельзя
	return map[string]any{}
}
