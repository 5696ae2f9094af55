package schema_test

import (
	"testing"
	"time"

	"taskapi/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 10, 31, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"utc with millis", "2025-10-31T10:30:00.000Z", want},
		{"utc without fraction", "2025-10-31T10:30:00Z", want},
		{"offset", "2025-10-31T12:30:00+02:00", want},
		{"no zone", "2025-10-31T10:30:00", want},
		{"minutes only", "2025-10-31T10:30", want},
		{"date only", "2025-10-31", time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := schema.ParseTimestamp(tc.input)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, input := range []string{"", "tomorrow", "2025-13-01", "31/10/2025", "2025-10-31T25:00:00Z"} {
		_, err := schema.ParseTimestamp(input)
		assert.Error(t, err, input)
	}
}

func TestParseLocal_UsesProcessZone(t *testing.T) {
	got, err := schema.ParseLocal("2025-10-31T10:30")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 10, 31, 10, 30, 0, 0, time.Local), got)
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 10, 31, 12, 30, 0, 123456789, time.FixedZone("CEST", 2*3600))

	assert.Equal(t, "2025-10-31T10:30:00.123Z", schema.FormatTimestamp(ts))
}
