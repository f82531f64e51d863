package repo

import (
	"time"

	"github.com/Temutjin2k/ambulance-dispatch/pkg/metrics"
)

// observe records one store operation; call as defer observe(service, op, time.Now(), &err).
func observe(service, operation string, start time.Time, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	metrics.RecordDatabaseQuery(service, operation, e, time.Since(start))
}
