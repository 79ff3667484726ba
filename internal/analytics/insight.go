package analytics

import (
	"fmt"
	"sort"
	"strings"
)

// Language selects the wording of generated text.
type Language string

const (
	Indonesian Language = "id"
	English    Language = "en"
)

// ParseLanguage accepts "id" or "en" in any case.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Indonesian:
		return Indonesian, nil
	case English:
		return English, nil
	}
	return "", fmt.Errorf("unknown language %q (want id or en)", s)
}

// Category is one of the three canonical complaint categories the
// narrative layer knows about.
type Category int

const (
	Delay Category = iota
	Service
	Communication
)

// Categories lists the categories in canonical order, which is also the
// tie-break order when ranking.
var Categories = []Category{Delay, Service, Communication}

// String returns the config name of the category.
func (c Category) String() string {
	switch c {
	case Delay:
		return "delay"
	case Service:
		return "service"
	case Communication:
		return "communication"
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Key returns the category's canonical human-readable key.
func (c Category) Key() string {
	switch c {
	case Delay:
		return "keterlambatan pengiriman"
	case Service:
		return "kualitas pelayanan yang buruk"
	case Communication:
		return "komunikasi kurir"
	}
	return ""
}

// Label returns the category name in lang.
func (c Category) Label(lang Language) string {
	if lang != English {
		return c.Key()
	}
	switch c {
	case Delay:
		return "delivery delays"
	case Service:
		return "poor service quality"
	case Communication:
		return "courier communication"
	}
	return ""
}

// ParseCategory maps a config name to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// CategoryMap maps store topic labels to canonical categories. Topics
// missing from the map are not represented in the narrative.
type CategoryMap map[string]Category

// DefaultCategoryMap returns the topic labels used in the labelled data.
func DefaultCategoryMap() CategoryMap {
	return CategoryMap{
		"Delay/ Lambat Pengiriman": Delay,
		"Kualitas Pelayan Buruk":   Service,
		"Komunikasi Kurir":         Communication,
	}
}

// MaxInsights bounds the ranked insight list.
const MaxInsights = 3

// Insight is one ranked category with its narrative sentence.
type Insight struct {
	Rank       int      `json:"rank"`
	Category   Category `json:"-"`
	Key        string   `json:"key"`
	Percentage float64  `json:"percentage"` // fraction of the categorised total, in (0,1]
	Narrative  string   `json:"narrative"`
}

// Percent returns the percentage scaled to [0,100].
func (i Insight) Percent() float64 {
	return i.Percentage * 100
}

// RankInsights turns a topic distribution into at most three ranked
// insights. Counts are summed per category; a zero total yields no
// insights. Zero-share categories are dropped and equal shares keep
// canonical order.
func RankInsights(dist Distribution, cats CategoryMap, lang Language) []Insight {
	counts := make(map[Category]int, len(Categories))
	for _, tc := range dist {
		if c, ok := cats[tc.Topic]; ok {
			counts[c] += tc.Count
		}
	}

	total := 0
	for _, c := range Categories {
		total += counts[c]
	}
	if total == 0 {
		return []Insight{}
	}

	ranked := make([]Insight, 0, len(Categories))
	for _, c := range Categories {
		pct := float64(counts[c]) / float64(total)
		if pct == 0 {
			continue
		}
		ranked = append(ranked, Insight{Category: c, Key: c.Key(), Percentage: pct})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Percentage > ranked[j].Percentage })
	if len(ranked) > MaxInsights {
		ranked = ranked[:MaxInsights]
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].Narrative = narrate(lang, ranked[i].Rank, ranked[i].Category, ranked[i].Percent())
	}
	return ranked
}

var rankTemplates = map[Language][MaxInsights]string{
	Indonesian: {
		"Dari hasil visualisasi pie chart di atas, ditemukan bahwa distribusi topik didominasi oleh %s (%.1f%%). Hal ini menunjukkan bahwa %s",
		"Kemudian, topik selanjutnya adalah terkait %s (%.1f%%), yang menunjukkan bahwa %s",
		"Terakhir, topik %s (%.1f%%) mengindikasikan bahwa %s",
	},
	English: {
		"The pie chart above shows that the topic distribution is dominated by %s (%.1f%%). This indicates that %s",
		"Next, the following topic concerns %s (%.1f%%), which shows that %s",
		"Finally, the topic %s (%.1f%%) indicates that %s",
	},
}

var explanations = map[Language]map[Category]string{
	Indonesian: {
		Delay:         "sebagian besar pelanggan di wilayah tertentu mengeluhkan waktu pengiriman yang tidak sesuai dengan ekspektasi atau janji yang diberikan.",
		Service:       "pelayanan di gudang pada wilayah tertentu tidak memuaskan atau bahkan mengecewakan pelanggan.",
		Communication: "pelanggan merasa tidak puas dengan sikap atau perilaku kurir. Hal ini dapat mencakup keluhan seperti kurir yang melempar barang, salah lokasi pengiriman, atau kurir yang sulit dihubungi.",
	},
	English: {
		Delay:         "most customers in the region complain that delivery times do not match their expectations or the promises made.",
		Service:       "warehouse service in the region is unsatisfying or even disappointing to customers.",
		Communication: "customers are unhappy with courier attitude or behaviour. This covers complaints such as couriers throwing parcels, delivering to the wrong location, or being hard to reach.",
	},
}

// narrate fills the rank's template for category c; pct is in [0,100].
func narrate(lang Language, rank int, c Category, pct float64) string {
	templates, ok := rankTemplates[lang]
	if !ok {
		templates = rankTemplates[Indonesian]
		lang = Indonesian
	}
	if rank < 1 || rank > MaxInsights {
		return ""
	}
	return fmt.Sprintf(templates[rank-1], c.Label(lang), pct, explanations[lang][c])
}
