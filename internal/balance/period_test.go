package balance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

func TestStatementPeriod(t *testing.T) {
	tests := []struct {
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
		name      string
		cutoff    int
	}{
		{
			name:      "after cutoff runs into next month",
			now:       time.Date(2024, time.January, 10, 15, 0, 0, 0, time.Local),
			cutoff:    3,
			wantStart: model.Date(2024, time.January, 4),
			wantEnd:   model.Date(2024, time.February, 3),
		},
		{
			name:      "on cutoff closes the current period",
			now:       model.Date(2024, time.January, 3),
			cutoff:    3,
			wantStart: model.Date(2023, time.December, 4),
			wantEnd:   model.Date(2024, time.January, 3),
		},
		{
			name:      "before cutoff started last month",
			now:       model.Date(2024, time.March, 1),
			cutoff:    3,
			wantStart: model.Date(2024, time.February, 4),
			wantEnd:   model.Date(2024, time.March, 3),
		},
		{
			name:      "cutoff past month end clamps",
			now:       model.Date(2024, time.February, 10),
			cutoff:    31,
			wantStart: model.Date(2024, time.February, 1),
			wantEnd:   model.Date(2024, time.February, 29),
		},
		{
			name:      "clamped previous month",
			now:       model.Date(2024, time.March, 1),
			cutoff:    30,
			wantStart: model.Date(2024, time.March, 1),
			wantEnd:   model.Date(2024, time.March, 30),
		},
		{
			name:      "december rolls the year",
			now:       model.Date(2024, time.December, 20),
			cutoff:    15,
			wantStart: model.Date(2024, time.December, 16),
			wantEnd:   model.Date(2025, time.January, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := StatementPeriod(tt.now, tt.cutoff)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
			assert.True(t, p.Contains(tt.now))
		})
	}
}

func TestStatementPeriod_InvalidCutoff(t *testing.T) {
	for _, cutoff := range []int{0, -1, 32} {
		_, err := StatementPeriod(model.Date(2024, 1, 1), cutoff)
		assert.ErrorIs(t, err, common.ErrInvalidConfig)
	}
}

func TestPeriod(t *testing.T) {
	p, err := NewPeriod(jan(4), model.Date(2024, time.February, 3))
	require.NoError(t, err)

	assert.Equal(t, 31, p.Days())
	assert.True(t, p.Contains(jan(4)))
	assert.True(t, p.Contains(model.Date(2024, time.February, 3)))
	assert.False(t, p.Contains(jan(3)))
	assert.Equal(t, "2024-01-04 → 2024-02-03", p.String())

	assert.Equal(t, jan(15), p.Through(jan(15)).End)
	assert.Equal(t, p.End, p.Through(model.Date(2024, time.March, 1)).End)

	_, err = NewPeriod(jan(5), jan(4))
	assert.ErrorIs(t, err, common.ErrInvalidWindow)
}
