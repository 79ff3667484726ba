// Package analytics implements the review analytics core: filtering,
// topic distribution, n-gram ranking, word frequencies and the templated
// insight text built from ranked topic percentages.
//
// Every function is pure and safe for concurrent use on shared,
// read-only review slices.
package analytics

import (
	"sort"

	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

// AllProvinces is the sentinel province meaning no province restriction.
const AllProvinces = "All"

// Criteria selects the reviews for one request.
type Criteria struct {
	Company  string
	Province string
}

// AnyProvince reports whether the criteria apply no province restriction.
func (c Criteria) AnyProvince() bool {
	return c.Province == "" || c.Province == AllProvinces
}

// Filter returns the reviews of c.Company, restricted to c.Province unless
// it is the all-provinces sentinel. Store order is preserved. No match
// yields an empty, non-nil slice.
func Filter(all []reviews.Review, c Criteria) []reviews.Review {
	out := make([]reviews.Review, 0)
	for _, r := range all {
		if r.Company != c.Company {
			continue
		}
		if !c.AnyProvince() && r.Province != c.Province {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TopicCount is one entry of a topic distribution.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Distribution holds topic counts ordered by count descending, ties in
// first-seen order. Only topics present in the review set appear.
type Distribution []TopicCount

// TopicDistribution groups reviews by topic.
func TopicDistribution(set []reviews.Review) Distribution {
	pos := make(map[string]int)
	dist := Distribution{}
	for _, r := range set {
		i, ok := pos[r.Topic]
		if !ok {
			pos[r.Topic] = len(dist)
			dist = append(dist, TopicCount{Topic: r.Topic})
			i = len(dist) - 1
		}
		dist[i].Count++
	}
	sort.SliceStable(dist, func(i, j int) bool { return dist[i].Count > dist[j].Count })
	return dist
}

// Total is the sum of all counts.
func (d Distribution) Total() int {
	n := 0
	for _, tc := range d {
		n += tc.Count
	}
	return n
}

// Count returns the count for topic, zero when absent.
func (d Distribution) Count(topic string) int {
	for _, tc := range d {
		if tc.Topic == topic {
			return tc.Count
		}
	}
	return 0
}

// Percent returns topic's share of the total in [0,100].
func (d Distribution) Percent(topic string) float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	return float64(d.Count(topic)) * 100 / float64(total)
}
