package chart

import (
	"fmt"
	"time"

	"github.com/sandevgo/warden/internal/core"
)

const (
	// MaxPoints bounds the rendered series.
	MaxPoints = 10

	labelLayout = "02.01"
)

// Projection is the display form of one activity record.
type Projection struct {
	Points []int
	Labels []string
	Today  int
	Week   int
}

// Project builds the point series [0, history..., score] (last MaxPoints
// kept), the today/this-week deltas and one date label per point ending at today.
func Project(rec core.ActivityRecord, today time.Time) (Projection, error) {
	if rec.Score == 0 && len(rec.History) == 0 {
		return Projection{}, core.ErrNoData
	}

	points := make([]int, 0, len(rec.History)+2)
	points = append(points, 0)
	points = append(points, rec.History...)
	points = append(points, rec.Score)
	if len(points) > MaxPoints {
		points = points[len(points)-MaxPoints:]
	}

	n := len(points)
	p := Projection{
		Points: points,
		Labels: make([]string, n),
		Week:   max(0, rec.Score-rec.BaseScore),
	}
	if n >= 2 {
		p.Today = max(0, points[n-1]-points[n-2])
	} else {
		p.Today = points[n-1]
	}

	for i := range points {
		p.Labels[i] = today.AddDate(0, 0, i-n+1).Format(labelLayout)
	}
	return p, nil
}

// Caption is the two-line text sent under the chart.
func (p Projection) Caption() string {
	return fmt.Sprintf("Messages today: %d\nMessages this week: %d", p.Today, p.Week)
}
