package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"orgroles/internal/orgcsv"
)

func TestObserveImport(t *testing.T) {
	before := testutil.ToFloat64(importEntities.WithLabelValues("job_role", "created"))
	rowsBefore := testutil.ToFloat64(importRows)

	ObserveImport(orgcsv.Report{
		Rows:    2,
		Created: orgcsv.Counts{Companies: 1, Departments: 1, JobRoles: 2, AccessRoles: 2},
	})

	assert.Equal(t, before+2, testutil.ToFloat64(importEntities.WithLabelValues("job_role", "created")))
	assert.Equal(t, rowsBefore+2, testutil.ToFloat64(importRows))
	assert.GreaterOrEqual(t, testutil.ToFloat64(importRuns.WithLabelValues("success")), 1.0)
}
