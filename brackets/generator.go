package brackets

import (
	"context"

	"github.com/Dosada05/softball-tournament/models"
)

type GenerateScheduleParams struct {
	Teams []models.Team
	Days  []string
	Times []string
}

type ScheduleGenerator interface {
	GenerateSchedule(ctx context.Context, params GenerateScheduleParams) ([]models.Game, error)

	GetName() string
}
