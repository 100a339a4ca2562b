package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeJob_RoundTrips(t *testing.T) {
	job := Job{
		Type:        JobURLFetch,
		SourceURL:   "https://example.com/img.jpg",
		Attempt:     1,
		MaxAttempts: 3,
	}

	encoded, err := SerializeJob(job)
	require.NoError(t, err)

	decoded, err := DeserializeJob(encoded)
	require.NoError(t, err)
	assert.Equal(t, job, *decoded)
}

func TestBackoffFor_ExhaustedAttemptsStop(t *testing.T) {
	job := Job{Type: JobURLFetch, Attempt: 3, MaxAttempts: 3}
	seconds, retry := BackoffFor(job)
	assert.False(t, retry)
	assert.Zero(t, seconds)
}

func TestBackoffFor_URLFetchStepsThroughBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    int
	}{
		{1, 60},
		{2, 300},
		{3, 900},
	}

	for _, tc := range tests {
		job := Job{Type: JobURLFetch, Attempt: tc.attempt, MaxAttempts: 5}
		seconds, retry := BackoffFor(job)
		assert.True(t, retry)
		assert.Equal(t, tc.want, seconds)
	}
}

func TestBackoffFor_GenerateVariantsLinearBackoff(t *testing.T) {
	job := Job{Type: JobGenerateVariants, Attempt: 2, MaxAttempts: 5}
	seconds, retry := BackoffFor(job)
	assert.True(t, retry)
	assert.Equal(t, 60, seconds)
}

func TestBackoffFor_DefaultJobType(t *testing.T) {
	job := Job{Type: JobCleanup, Attempt: 1, MaxAttempts: 5}
	seconds, retry := BackoffFor(job)
	assert.True(t, retry)
	assert.Equal(t, 30, seconds)
}
