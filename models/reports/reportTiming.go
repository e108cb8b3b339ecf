package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/tpq_backend/config"
	"github.com/mmdatafocus/tpq_backend/utils"
	"github.com/sirupsen/logrus"
)

const (
	reportLockTTL  = 2 * time.Minute
	reportLockWait = 30 * time.Second
)

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d < config.ReportSlowThreshold() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"field":          name,
		"ms":             d.Milliseconds(),
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow_report")
}
