package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TNRProtography/solar-dashboard/internal/domain"
	"github.com/TNRProtography/solar-dashboard/internal/pipeline"
)

type stubReadiness struct{ err error }

func (s stubReadiness) CheckReadiness(_ context.Context) error { return s.err }

type stubSnapshots struct {
	snap pipeline.Snapshot
	ok   bool
}

func (s stubSnapshots) Latest() (pipeline.Snapshot, bool) { return s.snap, s.ok }

func testServer(ready error, snapshots stubSnapshots) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", stubReadiness{err: ready}, snapshots, logger)
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func sampleSnapshot() pipeline.Snapshot {
	start := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	return pipeline.Snapshot{
		EarthDirected: []domain.EnhancedCME{{
			CME:         domain.CME{ActivityID: "CME-HOT", StartTime: start},
			ImpactScore: domain.ScoreArrivalPredicted,
		}},
		Other: []domain.EnhancedCME{{
			CME:         domain.CME{ActivityID: "CME-QUIET", StartTime: start.Add(time.Hour)},
			ImpactScore: domain.ScoreNone,
		}},
		Flares:      []domain.Flare{{ActivityID: "FLR-1", BeginTime: start}},
		RefreshedAt: start.Add(4 * time.Hour),
	}
}

func TestServer_Health(t *testing.T) {
	s := testServer(nil, stubSnapshots{})

	rec := doRequest(t, s, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestServer_Ready(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		rec := doRequest(t, testServer(nil, stubSnapshots{}), "/readyz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		rec := doRequest(t, testServer(errors.New("no snapshot produced yet"), stubSnapshots{}), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "no snapshot produced yet")
	})
}

func TestServer_CMEs(t *testing.T) {
	s := testServer(nil, stubSnapshots{snap: sampleSnapshot(), ok: true})

	rec := doRequest(t, s, "/api/v1/cmes")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		EarthDirected []domain.EnhancedCME `json:"earth_directed"`
		Other         []domain.EnhancedCME `json:"other"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.EarthDirected, 1)
	assert.Equal(t, "CME-HOT", body.EarthDirected[0].ActivityID)
	assert.Equal(t, domain.ScoreArrivalPredicted, body.EarthDirected[0].ImpactScore)
	require.Len(t, body.Other, 1)
	assert.Equal(t, domain.ScoreNone, body.Other[0].ImpactScore)
}

func TestServer_Flares(t *testing.T) {
	s := testServer(nil, stubSnapshots{snap: sampleSnapshot(), ok: true})

	rec := doRequest(t, s, "/api/v1/flares")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FLR-1")
}

func TestServer_Snapshot(t *testing.T) {
	s := testServer(nil, stubSnapshots{snap: sampleSnapshot(), ok: true})

	rec := doRequest(t, s, "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap pipeline.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Len(t, snap.EarthDirected, 1)
	assert.Len(t, snap.Flares, 1)
}

func TestServer_NoSnapshotYet(t *testing.T) {
	s := testServer(nil, stubSnapshots{ok: false})

	for _, path := range []string{"/api/v1/snapshot", "/api/v1/cmes", "/api/v1/flares", "/api/v1/shocks"} {
		rec := doRequest(t, s, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}
