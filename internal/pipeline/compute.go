package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/smoke-zone-etl/internal/domain"
	"github.com/google/uuid"
)

// ZoneComputer implements Computer with the domain zone engine.
type ZoneComputer struct {
	params domain.DispersionParams
	newID  func() string
	logger *slog.Logger
}

// NewZoneComputer creates a ZoneComputer with fixed dispersion parameters.
func NewZoneComputer(params domain.DispersionParams, logger *slog.Logger) *ZoneComputer {
	return &ZoneComputer{
		params: params,
		newID:  uuid.NewString,
		logger: logger,
	}
}

func (c *ZoneComputer) Compute(_ context.Context, in domain.Inputs) (domain.ZoneBatch, error) {
	runID := c.newID()
	batch, err := domain.BuildZoneBatch(runID, in, c.params)
	if err != nil {
		return domain.ZoneBatch{}, err
	}
	c.logger.Debug("zones computed",
		"run_id", runID,
		"fire_points", len(in.Fires),
		"grid_nx", in.Wind.U.Header.Nx,
		"grid_ny", in.Wind.U.Header.Ny,
	)
	return batch, nil
}
