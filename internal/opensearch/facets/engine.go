package facets

import (
	"sort"
	"strconv"
)

// Bucket - одно значение фасета с количеством документов
type Bucket struct {
	Key         string `json:"key"`
	Count       int64  `json:"count"`
	Selected    bool   `json:"selected"`
	DisplayName string `json:"display_name"`
}

// Facet - обработанный фасет, готовый к выдаче клиенту
type Facet struct {
	Field       string   `json:"field"`
	DisplayName string   `json:"display_name"`
	Type        Type     `json:"type"`
	Buckets     []Bucket `json:"buckets"`
	TotalCount  int64    `json:"total_count"`
}

// ParseAggregations превращает сырые бакеты ответа движка в типизированные
// фасеты. selected - выбранные пользователем значения по имени фасета.
func (r *Registry) ParseAggregations(raw map[string]any, requested []string, selected map[string][]string) []Facet {
	facets := make([]Facet, 0, len(requested))

	for _, name := range requested {
		cfg, ok := r.Get(name)
		if !ok {
			continue
		}

		aggData, ok := raw[name].(map[string]any)
		if !ok {
			r.log.Debug("Aggregation missing in engine response", "facet", name)
			continue
		}

		buckets := parseBuckets(aggData, selectedSet(selected[name]))
		if len(buckets) == 0 {
			continue
		}

		sortBuckets(buckets, cfg.OrderOrDefault())

		var total int64
		for _, b := range buckets {
			total += b.Count
		}

		for i := range buckets {
			buckets[i].DisplayName = DisplayName(cfg.Field, buckets[i].Key)
		}

		facets = append(facets, Facet{
			Field:       cfg.Field,
			DisplayName: cfg.DisplayName,
			Type:        cfg.Type,
			Buckets:     buckets,
			TotalCount:  total,
		})
	}

	return facets
}

func selectedSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// parseBuckets извлекает бакеты, отбрасывая пустые (count == 0)
func parseBuckets(aggData map[string]any, selected map[string]bool) []Bucket {
	rawBuckets, ok := aggData["buckets"].([]any)
	if !ok {
		return nil
	}

	buckets := make([]Bucket, 0, len(rawBuckets))
	for _, rb := range rawBuckets {
		b, ok := rb.(map[string]any)
		if !ok {
			continue
		}

		count, _ := b["doc_count"].(float64)
		if count == 0 {
			continue
		}

		key := bucketKey(b)
		if key == "" {
			continue
		}

		buckets = append(buckets, Bucket{
			Key:      key,
			Count:    int64(count),
			Selected: selected[key],
		})
	}

	return buckets
}

// bucketKey достает ключ бакета: для terms это строка или число,
// для range/histogram - число
func bucketKey(b map[string]any) string {
	switch key := b["key"].(type) {
	case string:
		return key
	case float64:
		// Гистограммы и числовые terms отдают ключ числом
		if key == float64(int64(key)) {
			return strconv.FormatInt(int64(key), 10)
		}
		return strconv.FormatFloat(key, 'f', -1, 64)
	}
	return ""
}

// sortBuckets упорядочивает бакеты: выбранные всегда первыми, остальные
// по count desc либо key asc в зависимости от настройки фасета
func sortBuckets(buckets []Bucket, order string) {
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Selected != buckets[j].Selected {
			return buckets[i].Selected
		}
		if order == OrderKey {
			return buckets[i].Key < buckets[j].Key
		}
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
}
