package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		perf []CardPerformance
		want float64
	}{
		{name: "no entries", perf: nil, want: 0},
		{name: "no answers", perf: []CardPerformance{{CardID: "a"}, {CardID: "b"}}, want: 0},
		{name: "all correct", perf: []CardPerformance{{CorrectCount: 2}, {CorrectCount: 1}}, want: 100},
		{name: "all incorrect", perf: []CardPerformance{{IncorrectCount: 3}}, want: 0},
		{
			name: "mixed across cards",
			perf: []CardPerformance{{CorrectCount: 1, IncorrectCount: 1}, {CorrectCount: 2}},
			want: 75,
		},
		{
			name: "one third",
			perf: []CardPerformance{{CorrectCount: 1}, {IncorrectCount: 2}},
			want: 100.0 / 3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, SuccessRate(tt.perf), 1e-9)
		})
	}
}

func TestRoundScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, RoundScore(0, 0))
	assert.Equal(t, 50, RoundScore(2, 4))
	assert.Equal(t, 67, RoundScore(2, 3))
	assert.Equal(t, 33, RoundScore(1, 3))
	assert.Equal(t, 100, RoundScore(5, 5))
}

func TestCardPerformance_Record(t *testing.T) {
	t.Parallel()

	p := CardPerformance{CardID: "c1"}
	assert.Equal(t, AttemptNone, p.LastAttempt)

	p.Record(false)
	assert.Equal(t, 1, p.IncorrectCount)
	assert.Equal(t, AttemptIncorrect, p.LastAttempt)
	assert.True(t, p.Struggling())

	p.Record(true)
	assert.Equal(t, 1, p.CorrectCount)
	assert.Equal(t, AttemptCorrect, p.LastAttempt)
	assert.False(t, p.Struggling(), "a tie is not struggling")
}

func TestAttemptJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(CardPerformance{CardID: "c1", CorrectCount: 1, LastAttempt: AttemptCorrect})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cardId":"c1","correctCount":1,"incorrectCount":0,"lastAttempt":"correct"}`, string(data))

	var p CardPerformance
	require.NoError(t, json.Unmarshal([]byte(`{"cardId":"c2","lastAttempt":"incorrect"}`), &p))
	assert.Equal(t, AttemptIncorrect, p.LastAttempt)

	assert.Error(t, json.Unmarshal([]byte(`{"lastAttempt":"maybe"}`), &p))
}
