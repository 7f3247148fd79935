// Package dwell finds stationary periods in visitor tracks and aggregates
// them into grid cells.
package dwell

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/spatial"
)

// MaxDwellSeconds caps a single dwell; longer stays are mostly staff
const MaxDwellSeconds = 1800

// Point is one position of a visitor
type Point struct {
	HashID    string
	Lat       float64
	Lon       float64
	Timestamp int64
}

// Event is one stationary period. X is longitude, Y latitude.
type Event struct {
	HashID   string
	X        float64
	Y        float64
	Duration int64
	Start    int64
	End      int64
}

// Params control event detection
type Params struct {
	SpatialThreshold float64 // metres
	MinDwell         int64   // seconds
	MaxDwell         int64   // seconds, 0 for no limit
}

// Detect groups points by visitor and returns the stationary periods of each.
// A period grows while the next point lies within the threshold of the
// running centroid. Visitors with fewer than two points are skipped.
func Detect(points []Point, p Params) []Event {
	byVisitor := make(map[string][]Point)
	var order []string
	for _, pt := range points {
		if _, ok := byVisitor[pt.HashID]; !ok {
			order = append(order, pt.HashID)
		}
		byVisitor[pt.HashID] = append(byVisitor[pt.HashID], pt)
	}

	var events []Event
	for _, hash := range order {
		track := byVisitor[hash]
		if len(track) < 2 {
			continue
		}
		sort.SliceStable(track, func(i, j int) bool { return track[i].Timestamp < track[j].Timestamp })
		events = append(events, detectTrack(hash, track, p)...)
	}
	return events
}

func detectTrack(hash string, track []Point, p Params) []Event {
	var events []Event
	for i := 0; i < len(track); {
		start := track[i]
		lat, lon := start.Lat, start.Lon
		count := 1.0

		j := i + 1
		for ; j < len(track); j++ {
			next := track[j]
			if spatial.HaversineDistance(lat, lon, next.Lat, next.Lon) > p.SpatialThreshold {
				break
			}
			lat = (lat*count + next.Lat) / (count + 1)
			lon = (lon*count + next.Lon) / (count + 1)
			count++
		}

		end := track[j-1].Timestamp
		duration := end - start.Timestamp
		if duration >= p.MinDwell {
			duration = min(duration, MaxDwellSeconds)
			if p.MaxDwell <= 0 || duration <= p.MaxDwell {
				events = append(events, Event{
					HashID:   hash,
					X:        lon,
					Y:        lat,
					Duration: duration,
					Start:    start.Timestamp,
					End:      end,
				})
			}
		}
		i = j
	}
	return events
}

// Shift moves every event by offset, in place
func Shift(events []Event, offset r2.Point) {
	for i := range events {
		events[i].X += offset.X
		events[i].Y += offset.Y
	}
}

// Steps are the grid cell size in degrees
type Steps struct {
	Lon float64
	Lat float64
}

// StepsFor converts a metric grid size at the reference latitude
func StepsFor(gridSize, refLat float64) Steps {
	lat, lon := spatial.MetersToDegrees(gridSize, refLat)
	return Steps{Lon: lon, Lat: lat}
}

// Cell is one aggregated grid cell, keyed by its centre
type Cell struct {
	X          float64
	Y          float64
	TotalDwell int64
	VisitCount int64
	Visitors   int64
}

// AvgDwell is the mean dwell per visit
func (c Cell) AvgDwell() float64 {
	if c.VisitCount == 0 {
		return 0
	}
	return float64(c.TotalDwell) / float64(c.VisitCount)
}

// Result is the grid aggregation of a set of events
type Result struct {
	Cells      []Cell
	Bounds     r2.Rect // empty when there are no cells
	TotalDwell int64
	AvgDwell   float64
	Events     int64
	// Durations holds every event duration in seconds, in event order
	Durations []float64
}

// Aggregate snaps events to cell centres and sums them. Cells are ordered
// by Y then X.
func Aggregate(events []Event, steps Steps) Result {
	type acc struct {
		cell     Cell
		visitors map[string]bool
	}
	type key struct{ x, y int64 }
	cells := make(map[key]*acc)

	for _, e := range events {
		k := key{cellIndex(e.X, steps.Lon), cellIndex(e.Y, steps.Lat)}
		a, ok := cells[k]
		if !ok {
			a = &acc{
				cell: Cell{
					X: spatial.SnapToGrid(e.X, steps.Lon),
					Y: spatial.SnapToGrid(e.Y, steps.Lat),
				},
				visitors: make(map[string]bool),
			}
			cells[k] = a
		}
		a.cell.TotalDwell += e.Duration
		a.cell.VisitCount++
		a.visitors[e.HashID] = true
	}

	res := Result{Bounds: r2.EmptyRect(), Events: int64(len(events)), Durations: make([]float64, len(events))}
	for i, e := range events {
		res.Durations[i] = float64(e.Duration)
	}
	for _, a := range cells {
		a.cell.Visitors = int64(len(a.visitors))
		res.Cells = append(res.Cells, a.cell)
		res.Bounds = res.Bounds.AddPoint(r2.Point{X: a.cell.X, Y: a.cell.Y})
		res.TotalDwell += a.cell.TotalDwell
	}
	sort.Slice(res.Cells, func(i, j int) bool {
		if res.Cells[i].Y != res.Cells[j].Y {
			return res.Cells[i].Y < res.Cells[j].Y
		}
		return res.Cells[i].X < res.Cells[j].X
	})
	if res.Events > 0 {
		res.AvgDwell = float64(res.TotalDwell) / float64(res.Events)
	}
	return res
}

func cellIndex(v, step float64) int64 {
	if step <= 0 {
		return 0
	}
	return int64(math.Floor(v / step))
}

// MeanLatitude returns the average latitude of points, 0 when empty
func MeanLatitude(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Lat
	}
	return sum / float64(len(points))
}
