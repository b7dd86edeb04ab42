package engine

import "github.com/samvad-hq/samvad-health-news/internal/domain"

// Summary counts a feed along the dimensions shown on the dashboard.
type Summary struct {
	Total      int            `json:"total"`
	BySource   map[string]int `json:"by_source"`
	ByCategory map[string]int `json:"by_category"`
	ByPriority map[string]int `json:"by_priority"`
	ByLanguage map[string]int `json:"by_language"`
	Local      int            `json:"local"`
	Global     int            `json:"global"`
}

// Summarize tallies items. Empty field values are not counted in the maps.
func Summarize(items []domain.NewsItem) Summary {
	s := Summary{
		Total:      len(items),
		BySource:   map[string]int{},
		ByCategory: map[string]int{},
		ByPriority: map[string]int{},
		ByLanguage: map[string]int{},
	}
	inc := func(m map[string]int, key string) {
		if key != "" {
			m[key]++
		}
	}
	for _, it := range items {
		inc(s.BySource, it.Source)
		inc(s.ByCategory, string(it.Category))
		inc(s.ByPriority, string(it.Priority))
		inc(s.ByLanguage, string(it.Language))
		if it.IsLocal {
			s.Local++
		} else {
			s.Global++
		}
	}
	return s
}
