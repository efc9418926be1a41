package gateway

import (
	"time"

	"github.com/Desarso/fitcoach/models"
	"github.com/Desarso/fitcoach/stores"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TraceSink receives one trace per remote generation call.
type TraceSink interface {
	SaveTrace(trace *stores.GenerationTrace) error
}

func (g *Gateway) record(op string, mode models.Mode, model string, start time.Time, details map[string]any, err error) {
	if g.traces == nil {
		return
	}
	end := g.now()
	tr := &stores.GenerationTrace{
		TraceID:    uuid.NewString(),
		Operation:  op,
		Mode:       string(mode),
		Model:      model,
		Status:     stores.TraceOK,
		Details:    details,
		Timestamp:  start.UnixMilli(),
		DurationMS: end.Sub(start).Milliseconds(),
	}
	if err != nil {
		tr.Status = stores.TraceError
		tr.Error = err.Error()
	}
	if serr := g.traces.SaveTrace(tr); serr != nil {
		g.logger.Warn("Failed to save generation trace", zap.String("op", op), zap.Error(serr))
	}
}
