package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regdocs/internal/models"
)

func TestMetrics_RecordRun(t *testing.T) {
	ctx := context.Background()
	p := NewProvider()
	defer p.Shutdown(ctx)

	m, err := NewMetrics(p.Meter())
	require.NoError(t, err)

	start := time.Date(2024, 6, 19, 10, 0, 0, 0, time.UTC)
	m.RecordRun(ctx, models.RunReport{
		Source: "creg", StartedAt: start, FinishedAt: start.Add(2 * time.Second),
		Discovered: 5, Downloaded: 5, Extracted: 3, Quarantined: 2, Status: models.StatusSuccess,
	})
	m.RecordRun(ctx, models.RunReport{
		Source: "creg", StartedAt: start, FinishedAt: start,
		Status: models.StatusEmptyDiscovery,
	})

	totals, err := p.Totals(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(5), totals["regdocs.documents.discovered{source=creg}"])
	assert.Equal(t, int64(3), totals["regdocs.documents.extracted{source=creg}"])
	assert.Equal(t, int64(2), totals["regdocs.documents.quarantined{source=creg}"])
	assert.Equal(t, int64(1), totals["regdocs.runs{source=creg,status=success}"])
	assert.Equal(t, int64(1), totals["regdocs.runs{source=creg,status=empty_discovery}"])
}

func TestNoop(t *testing.T) {
	m := Noop()
	require.NotNil(t, m)
	m.RecordRun(context.Background(), models.RunReport{Source: "upme"})
}
