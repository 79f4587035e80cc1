package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TNRProtography/solar-dashboard/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	start := time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC)
	arrival := time.Date(2024, time.March, 3, 6, 0, 0, 0, time.UTC)

	cme := domain.EnhancedCME{
		CME: domain.CME{
			ActivityID: "2024-03-01T10:30:00-CME-001",
			StartTime:  start,
		},
		ImpactScore:      domain.ScoreArrivalPredicted,
		PredictedArrival: &arrival,
		ImpactLocations:  []string{"Earth"},
	}

	msg, err := serializeToMessage(cme)
	require.NoError(t, err)

	assert.Equal(t, []byte("2024-03-01T10:30:00-CME-001"), msg.Key)
	assert.Contains(t, string(msg.Value), `"impact_score":1`)
	assert.Contains(t, string(msg.Value), `"impact_locations":["Earth"]`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "impact_score", msg.Headers[0].Key)
	assert.Equal(t, []byte("1"), msg.Headers[0].Value)
	assert.Equal(t, "start_time", msg.Headers[1].Key)
	assert.Equal(t, []byte(start.Format(time.RFC3339)), msg.Headers[1].Value)
	assert.Equal(t, "predicted_arrival", msg.Headers[2].Key)
	assert.Equal(t, []byte(arrival.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_NoArrival(t *testing.T) {
	cme := domain.EnhancedCME{
		CME:         domain.CME{ActivityID: "cme-2"},
		ImpactScore: domain.ScoreEarthDirected,
	}

	msg, err := serializeToMessage(cme)
	require.NoError(t, err)

	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, []byte("2"), msg.Headers[0].Value)
}
