package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSync(t *testing.T) {
	beforeOK := testutil.ToFloat64(SyncPasses.WithLabelValues("success"))
	beforeInsert := testutil.ToFloat64(AssignmentsWritten.WithLabelValues("insert"))
	beforeUpdate := testutil.ToFloat64(AssignmentsWritten.WithLabelValues("update"))

	ObserveSync("success", 10*time.Millisecond, 3, 0)
	ObserveSync("success", 5*time.Millisecond, 0, 2)

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(SyncPasses.WithLabelValues("success")))
	assert.Equal(t, beforeInsert+3, testutil.ToFloat64(AssignmentsWritten.WithLabelValues("insert")))
	assert.Equal(t, beforeUpdate+2, testutil.ToFloat64(AssignmentsWritten.WithLabelValues("update")))
}

func TestInitIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Init()
		Init()
	})
}
