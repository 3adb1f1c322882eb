package temporal

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLayout(t *testing.T) {
	tb := NewTable([]time.Time{
		time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, tb.Add("pHT_med", []float64{8.05, 8.01}))
	require.NoError(t, tb.Add("pHT_std", []float64{0.02, math.NaN()}))

	var buf bytes.Buffer
	require.NoError(t, tb.Write(&buf))
	assert.Equal(t, "time,pHT_med,pHT_std\n2015-01-01,8.05,0.02\n2025-01-01,8.01,\n", buf.String())

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"pHT_med", "pHT_std"}, back.Names())
	std, err := back.Column("pHT_std")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(std[1]))
}

func TestAddRejectsBadColumns(t *testing.T) {
	tb := NewTable([]time.Time{time.Now()})
	assert.Error(t, tb.Add("x", []float64{1, 2}))
	assert.Error(t, tb.Add("time", []float64{1}))
}

func TestReadYearsAndMissingColumn(t *testing.T) {
	tb, err := Read(strings.NewReader("calcite_med,time\n3.1,1850\n3.0,1860.5\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, tb.Len())
	assert.InDelta(t, 1860.5, tb.Years()[1], 1e-3)

	_, err = tb.Column("pHT_med")
	assert.ErrorIs(t, err, ErrNoColumn)

	_, err = Read(strings.NewReader("a,b\n1,2\n"))
	assert.ErrorIs(t, err, ErrNoColumn)
}

func TestSaveLoad(t *testing.T) {
	path := t.TempDir() + "/nested/ssp119.csv"
	tb := NewTable([]time.Time{time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, tb.Add("aragonite_med", []float64{2.5}))
	require.NoError(t, tb.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tb.Time, got.Time)
	v, err := got.Column("aragonite_med")
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, v)
}
