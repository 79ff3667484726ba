package server

import (
	"fmt"
	"math"

	"github.com/TobiSchelling/expedanalysis/internal/analytics"
)

const (
	pieSize   = 320.0
	pieRadius = 150.0
)

// pieColors follows the "Paired" qualitative palette.
var pieColors = []string{
	"#a6cee3", "#1f78b4", "#b2df8a", "#33a02c", "#fb9a99", "#e31a1c",
	"#fdbf6f", "#ff7f00", "#cab2d6", "#6a3d9a", "#ffff99", "#b15928",
}

// pieSlice is one wedge of the topic pie chart, in SVG user units.
type pieSlice struct {
	Topic   string
	Count   int
	Percent float64
	Color   string
	Path    string
	Full    bool
	LabelX  float64
	LabelY  float64
}

type pieChart struct {
	Size   float64
	Center float64
	Radius float64
	Slices []pieSlice
}

// buildPie lays out d as wedges starting at twelve o'clock and running
// counter-clockwise. An empty distribution yields no slices.
func buildPie(d analytics.Distribution) pieChart {
	c := pieChart{Size: pieSize, Center: pieSize / 2, Radius: pieRadius, Slices: []pieSlice{}}
	total := d.Total()
	if total == 0 {
		return c
	}

	angle := math.Pi / 2
	for i, tc := range d {
		if tc.Count == 0 {
			continue
		}
		frac := float64(tc.Count) / float64(total)
		sweep := frac * 2 * math.Pi
		mid := angle + sweep/2

		s := pieSlice{
			Topic:   tc.Topic,
			Count:   tc.Count,
			Percent: frac * 100,
			Color:   pieColors[i%len(pieColors)],
			LabelX:  round2(c.Center + 0.6*c.Radius*math.Cos(mid)),
			LabelY:  round2(c.Center - 0.6*c.Radius*math.Sin(mid)),
		}
		if tc.Count == total {
			s.Full = true
			s.LabelX, s.LabelY = c.Center, c.Center
		} else {
			s.Path = wedgePath(c.Center, c.Radius, angle, angle+sweep)
		}
		c.Slices = append(c.Slices, s)
		angle += sweep
	}
	return c
}

func wedgePath(center, r, from, to float64) string {
	x1 := center + r*math.Cos(from)
	y1 := center - r*math.Sin(from)
	x2 := center + r*math.Cos(to)
	y2 := center - r*math.Sin(to)
	large := 0
	if to-from > math.Pi {
		large = 1
	}
	// Sweep flag 0 draws counter-clockwise in SVG's y-down space.
	return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f A%.2f,%.2f 0 %d 0 %.2f,%.2f Z",
		center, center, x1, y1, r, r, large, x2, y2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// cloudWord is a word-cloud entry with its font size in pixels.
type cloudWord struct {
	Word  string
	Count int
	Size  int
}

const (
	cloudMinFont = 12
	cloudMaxFont = 48
)

func buildCloud(words []analytics.WordWeight) []cloudWord {
	out := make([]cloudWord, len(words))
	for i, w := range words {
		out[i] = cloudWord{
			Word:  w.Word,
			Count: w.Count,
			Size:  cloudMinFont + int(math.Round(w.Weight*(cloudMaxFont-cloudMinFont))),
		}
	}
	return out
}
