package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegisterIsIdempotent(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(registry)

	require.NoError(t, c.Register())
	require.NoError(t, c.Register())
}

func TestCollectorRecordMethodsDoNotPanic(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())
	require.NoError(t, c.Register())

	c.RecordDispatch()
	c.RecordQueueDepth("analytics", 3)
	c.RecordSharedStateResolve("analytics")
	c.RecordResponseTimeout()
}
