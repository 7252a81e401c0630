package appbootstrap

import (
	"database/sql"

	"stpaul-crime/api"
	"stpaul-crime/config"
	"stpaul-crime/core/incidents"
	"stpaul-crime/core/maintenance"
	"stpaul-crime/core/store"
	"stpaul-crime/core/utils"
)

type runtimeComposition struct {
	serverDeps api.ServerDeps
	workers    []api.BackgroundWorker
}

func composeRuntime(cfg *config.AppConfig, db *sql.DB, logger *utils.Logger) (*runtimeComposition, error) {
	dialect := store.DialectFor(cfg)
	codes := store.NewCodesStore(db, dialect)
	neighborhoods := store.NewNeighborhoodsStore(db, dialect)
	incidentsStore := store.NewIncidentsStore(db, dialect)
	audits := store.NewAuditStore(db, dialect)
	incidentsSvc := incidents.NewService(incidentsStore, logger)

	maintenanceScheduler, err := maintenance.NewScheduler(cfg.Maintenance, db, dialect, audits, logger)
	if err != nil {
		return nil, err
	}

	return &runtimeComposition{
		serverDeps: api.ServerDeps{
			DB:            db,
			Codes:         codes,
			Neighborhoods: neighborhoods,
			Audits:        audits,
			IncidentsSvc:  incidentsSvc,
		},
		workers: []api.BackgroundWorker{maintenanceScheduler},
	}, nil
}
