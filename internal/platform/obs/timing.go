package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RunIDKey carries the batch run identifier through the context so
// per-operation timing lines can be correlated with their run.
const RunIDKey ctxKey = "run_id"

func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	runID, _ := ctx.Value(RunIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Printf("run_id=%s op=%s dur=%dms err=%v", runID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("run_id=%s op=%s dur=%dms", runID, name, dur.Milliseconds())
	}
}
