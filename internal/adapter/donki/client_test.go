package donki

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/TNRProtography/solar-dashboard/internal/observability"
	"github.com/TNRProtography/solar-dashboard/internal/pipeline"
)

const testAPIKey = "test-key"

func testWindow() pipeline.Window {
	return pipeline.Window{
		Start: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC),
	}
}

func testClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = time.Millisecond
	rc.RetryWaitMax = 5 * time.Millisecond
	rc.Logger = nil
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     testAPIKey,
		httpClient: rc,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchCMEs_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/CME", r.URL.Path)
		assert.Equal(t, "2024-03-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2024-03-04", r.URL.Query().Get("endDate"))
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"activityID": "2024-03-01T10:30:00-CME-001",
				"startTime": "2024-03-01T10:30Z",
				"cmeAnalyses": [{"speed": 950, "isMostAccurate": true, "enlilList": [
					{"estimatedShockArrivalTime": "2024-03-03T06:00Z", "isEarthGB": true}
				]}],
				"linkedEvents": [{"activityID": "2024-03-01T10:00:00-FLR-001"}]
			}
		]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	cmes, err := c.FetchCMEs(context.Background(), testWindow())
	require.NoError(t, err)

	require.Len(t, cmes, 1)
	assert.Equal(t, "2024-03-01T10:30:00-CME-001", cmes[0].ActivityID)
	require.Len(t, cmes[0].Analyses, 1)
	assert.True(t, cmes[0].Analyses[0].IsMostAccurate)
	require.Len(t, cmes[0].Analyses[0].Simulations, 1)
	require.NotNil(t, cmes[0].Analyses[0].Simulations[0].ShockArrival)
	assert.Equal(t, []string{"2024-03-01T10:00:00-FLR-001"}, cmes[0].LinkedEventIDs)
}

func TestClient_FetchCMEs_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// DONKI returns an empty body when no events fall in the window.
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	cmes, err := c.FetchCMEs(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Empty(t, cmes)
}

func TestClient_FetchCMEs_ClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchCMEs(context.Background(), testWindow())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int64(1), attempts.Load())
}

func TestClient_FetchCMEs_ServerErrorRetried(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	cmes, err := c.FetchCMEs(context.Background(), testWindow())

	require.NoError(t, err)
	assert.Empty(t, cmes)
	assert.Equal(t, int64(3), attempts.Load())
}

func TestClient_FetchCMEs_RetryBudgetExhausted(t *testing.T) {
	var attempts atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchCMEs(context.Background(), testWindow())

	require.Error(t, err)
	// RetryMax 2 means one initial attempt plus two retries.
	assert.Equal(t, int64(3), attempts.Load())
}

func TestClient_FetchFlares(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/FLR", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"flrID": "2024-03-01T10:00:00-FLR-001", "beginTime": "2024-03-01T10:00Z", "classType": "X1.2"}
		]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	flares, err := c.FetchFlares(context.Background(), testWindow())
	require.NoError(t, err)

	require.Len(t, flares, 1)
	assert.Equal(t, "2024-03-01T10:00:00-FLR-001", flares[0].ActivityID)
	assert.Equal(t, "X1.2", flares[0].ClassType)
}

func TestClient_FetchShocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IPS", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"activityID": "2024-03-02T04:00:00-IPS-001", "eventTime": "2024-03-02T04:00Z", "location": "Earth"}
		]`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	shocks, err := c.FetchShocks(context.Background(), testWindow())
	require.NoError(t, err)

	require.Len(t, shocks, 1)
	assert.Equal(t, "Earth", shocks[0].Location)
}

func TestClient_FetchCMEs_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FetchCMEs(context.Background(), testWindow())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode CME response")
}
