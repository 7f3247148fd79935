package service

import (
	"errors"
	"fmt"
	"log"

	"github.com/golang/geo/r2"

	"github.com/jengzang/floorheat-backend-go/internal/models"
	"github.com/jengzang/floorheat-backend-go/internal/raster"
	"github.com/jengzang/floorheat-backend-go/internal/render"
	"github.com/jengzang/floorheat-backend-go/internal/transform"
)

// MaxCanvasSide bounds the requested image size
const MaxCanvasSide = 4096

// ErrInvalidMode is returned for an unknown heatmap mode
var ErrInvalidMode = errors.New("mode must be tracks or dwell")

// SceneRequest selects the data a scene is built from
type SceneRequest struct {
	StoreID  int64
	Filter   models.TimeFilter
	Mode     string
	MinDwell int64
	MaxDwell int64
	Zones    bool
}

// RenderService assembles scene inputs from stored data and renders frames
type RenderService struct {
	heatmap  *HeatmapService
	dwell    *DwellService
	zones    *ZoneService
	plans    *FloorPlanService
	underlay *UnderlayLoader
	opts     raster.Options
}

// NewRenderService creates a new render service
func NewRenderService(heatmap *HeatmapService, dwell *DwellService, zones *ZoneService, plans *FloorPlanService, underlay *UnderlayLoader, opts raster.Options) *RenderService {
	return &RenderService{heatmap: heatmap, dwell: dwell, zones: zones, plans: plans, underlay: underlay, opts: opts}
}

// Samples loads the dataset for the requested mode
func (s *RenderService) Samples(req SceneRequest) (raster.Samples, error) {
	switch req.Mode {
	case "", raster.ModeTracks:
		points, _, err := s.heatmap.Points(req.StoreID, req.Filter)
		if err != nil {
			return nil, err
		}
		return raster.Tracks{Points: points}, nil
	case raster.ModeDwell:
		return s.dwell.Samples(req.StoreID, models.DwellFilter{
			TimeFilter:      req.Filter,
			MinDwellSeconds: req.MinDwell,
			MaxDwellSeconds: req.MaxDwell,
		})
	default:
		return nil, ErrInvalidMode
	}
}

// Input builds everything a scene needs. A calibrated floor plan fixes the
// reference frame and alignment; otherwise the frame follows the data.
func (s *RenderService) Input(req SceneRequest) (render.Input, error) {
	samples, err := s.Samples(req)
	if err != nil {
		return render.Input{}, err
	}

	in := render.Input{
		Samples:   samples,
		Frame:     transform.FrameFromData(samples.Bounds()),
		Alignment: transform.Identity(),
		Scale:     raster.AutoScale(),
		Options:   s.opts,
	}

	fp, err := s.plans.Get(req.StoreID, req.Filter.Floor)
	if err != nil {
		return render.Input{}, err
	}
	if fp != nil {
		in.Frame = fp.Frame()
		in.Alignment = fp.Alignment()
		if s.underlay != nil && fp.Filename != "" {
			img, err := s.underlay.Load(fp.Filename)
			switch {
			case err == nil:
				in.Underlay = img
			case errors.Is(err, ErrNoImage):
			default:
				log.Printf("[RenderService] Warning: %v", err)
			}
		}
	}

	if req.Zones {
		floor := req.Filter.Floor
		zones, err := s.zones.List(req.StoreID, &floor)
		if err != nil {
			return render.Input{}, err
		}
		in.Zones = zones
		in.Labels = make(map[int64]string, len(zones))
		for _, z := range zones {
			in.Labels[z.ID] = z.Name
		}
	}
	return in, nil
}

// Render draws one frame for a stateless request
func (s *RenderService) Render(storeID int64, f models.RenderFilter) (render.Frame, error) {
	if f.Width <= 0 || f.Height <= 0 || f.Width > MaxCanvasSide || f.Height > MaxCanvasSide {
		return render.Frame{}, fmt.Errorf("canvas must be between 1 and %d pixels per side", MaxCanvasSide)
	}

	in, err := s.Input(SceneRequest{
		StoreID:  storeID,
		Filter:   f.TimeFilter,
		Mode:     f.Mode,
		MinDwell: f.MinDwell,
		MaxDwell: f.MaxDwell,
		Zones:    f.Zones,
	})
	if err != nil {
		return render.Frame{}, err
	}
	if f.Manual {
		in.Scale = raster.Scale{Manual: raster.Range{Min: f.ScaleMin, Max: f.ScaleMax}}
	}

	scene := render.NewScene(transform.Size{W: float64(f.Width), H: float64(f.Height)}, in, render.Hooks{})
	scene.SetViewport(transform.Viewport{Zoom: f.Zoom, Pan: r2.Point{X: f.PanX, Y: f.PanY}})
	return scene.Render(), nil
}
