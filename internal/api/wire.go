package api

import (
	"database/sql"

	"github.com/jengzang/floorheat-backend-go/internal/config"
	"github.com/jengzang/floorheat-backend-go/internal/handler"
	"github.com/jengzang/floorheat-backend-go/internal/repository"
	"github.com/jengzang/floorheat-backend-go/internal/service"
	"github.com/jengzang/floorheat-backend-go/internal/session"
)

// NewHandlers wires repositories, services and handlers on db. The returned
// function stops background work.
func NewHandlers(cfg *config.Config, db *sql.DB) (Handlers, func()) {
	tracks := repository.NewTrackRepository(db)
	plans := service.NewFloorPlanService(repository.NewFloorPlanRepository(db))
	underlay := service.NewUnderlayLoader(cfg.FloorplanDir)

	heatmap := service.NewHeatmapService(tracks, plans, cfg.Heatmap)
	dwell := service.NewDwellService(tracks, plans, cfg.Heatmap)
	zones := service.NewZoneService(repository.NewZoneRepository(db), tracks, plans, dwell)
	stores := service.NewStoreService(repository.NewStoreRepository(db), tracks)
	renderer := service.NewRenderService(heatmap, dwell, zones, plans, underlay, cfg.Render)

	sessions := session.NewManager(renderer, cfg.SessionTTL)

	return Handlers{
		Heatmap:   handler.NewHeatmapHandler(heatmap, renderer),
		Dwell:     handler.NewDwellHandler(dwell),
		Zone:      handler.NewZoneHandler(zones),
		FloorPlan: handler.NewFloorPlanHandler(plans, underlay),
		Store:     handler.NewStoreHandler(stores),
		Session:   handler.NewSessionHandler(sessions, plans, zones, cfg.Canvas),
	}, sessions.Close
}
