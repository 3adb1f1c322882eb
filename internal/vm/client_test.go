package vm

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtm0/ctacid/internal/logging"
)

type capture struct {
	mu     sync.Mutex
	bodies []string
	query  string
	status int
}

func (c *capture) handler(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.bodies = append(c.bodies, string(b))
	c.query = r.URL.RawQuery
	c.mu.Unlock()
	w.WriteHeader(c.status)
}

var columns = []string{"pHT_med", "pHT_std"}

func TestInsertInflux(t *testing.T) {
	c := &capture{status: http.StatusNoContent}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	cli, err := NewClient(logging.Discard(), srv.URL+"/write", 2, "ctacid", columns)
	require.NoError(t, err)
	err = cli.Insert(context.Background(), []Record{
		{Scenario: "ssp585", Timestamp: 1000, Values: []float64{8.1, 0.02}},
		{Scenario: "ssp585", Timestamp: 2000, Values: []float64{math.NaN(), 0.03}},
		{Scenario: "ssp585", Timestamp: 3000, Values: []float64{math.NaN(), math.NaN()}},
	})
	require.NoError(t, err)
	require.Len(t, c.bodies, 1)
	lines := strings.Split(strings.TrimSpace(c.bodies[0]), "\n")
	assert.Equal(t, []string{
		"ctacid,scenario=ssp585 pHT_med=8.1,pHT_std=0.02 1000000000",
		"ctacid,scenario=ssp585 pHT_std=0.03 2000000000",
	}, lines)
}

func TestInsertCSV(t *testing.T) {
	c := &capture{status: http.StatusNoContent}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	cli, err := NewClient(logging.Discard(), srv.URL+"/api/v1/import/csv", 1, "acid", columns)
	require.NoError(t, err)
	require.NoError(t, cli.Insert(context.Background(), []Record{
		{Scenario: "historical", Timestamp: 5, Values: []float64{8.2, math.NaN()}},
	}))
	assert.Equal(t, "5,historical,8.2,\n", c.bodies[0])
	assert.Contains(t, c.query, "format=1%3Atime%3Aunix_ms%2C2%3Alabel%3Ascenario%2C3%3Ametric%3Aacid_pHT_med%2C4%3Ametric%3Aacid_pHT_std")
}

func TestInsertStatus(t *testing.T) {
	c := &capture{status: http.StatusBadRequest}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	cli, err := NewClient(logging.Discard(), srv.URL+"/write", 1, "ctacid", columns)
	require.NoError(t, err)
	err = cli.Insert(context.Background(), []Record{{Scenario: "ssp119", Timestamp: 1, Values: []float64{1, 2}}})
	assert.ErrorContains(t, err, "unexpected status 400")
}

func TestNewClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		prefix  string
		columns []string
	}{
		{"unsupported path", "http://localhost:8428/api/v1/write", "ctacid", columns},
		{"bad prefix", "http://localhost:8428/write", "ct-acid", columns},
		{"no columns", "http://localhost:8428/write", "ctacid", nil},
		{"bad column", "http://localhost:8428/write", "ctacid", []string{"Ω"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(logging.Discard(), tt.url, 1, tt.prefix, tt.columns)
			assert.Error(t, err)
		})
	}
}
