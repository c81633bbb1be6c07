package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeries_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantName string
		wantUnit string
		wantLen  int
	}{
		{
			name:     "meta with raw data array",
			body:     `{"meta":{"id":"sp500-gold","label":"S&P 500 in gold","denominator_units":"oz of gold"},"data":[["2023-01-31",2.11],["2023-02-28",2.16]]}`,
			wantName: "S&P 500 in gold",
			wantUnit: "oz of gold",
			wantLen:  2,
		},
		{
			name:     "data points object",
			body:     `{"meta":{"name":"gold-usd","units":"USD"},"data":{"points":[{"date":"2023-01-31","value":"1928.36"}]}}`,
			wantName: "gold-usd",
			wantUnit: "USD",
			wantLen:  1,
		},
		{
			name:     "name and points",
			body:     `{"name":"sp500-in-gold","points":[{"timestamp":"2023-01-31","value":2.11},{"timestamp":"2023-02-28","value":null}]}`,
			wantName: "sp500-in-gold",
			wantLen:  1,
		},
		{
			name:     "bare array",
			body:     `[["2023-01-31",1],["2023-02-28",2],["2023-03-31",3]]`,
			wantName: "fallback",
			wantLen:  3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSeries([]byte(tt.body), "fallback")
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name)
			assert.Equal(t, tt.wantUnit, s.Unit)
			assert.Len(t, s.Points, tt.wantLen)
		})
	}
}

func TestParseSeries_Malformed(t *testing.T) {
	for _, body := range []string{`{`, `42`, `{"meta":{}}`, `{"data":"x"}`, `{"data":{"rows":[]}}`} {
		_, err := ParseSeries([]byte(body), "x")
		assert.ErrorIs(t, err, ErrMalformedPayload, body)
	}
}

func TestParseSeries_RatioLegs(t *testing.T) {
	body := `{"meta":{"id":"basket","label":"SPX in basket"},
		"numerator":{"name":"spx","points":[["2023-01-31",4000],["2023-02-28",4100]]},
		"denominator":[["2023-02-28",205],["2023-01-31",200]]}`

	s, err := ParseSeries([]byte(body), "fallback")
	require.NoError(t, err)
	assert.Equal(t, "SPX in basket", s.Name)
	assert.Empty(t, s.Points)
	require.NotNil(t, s.Numerator)
	require.NotNil(t, s.Denominator)
	assert.Equal(t, "spx", s.Numerator.Name)
	assert.Len(t, s.Numerator.Points, 2)
	assert.Equal(t, "2023-01-31", s.Denominator.Points[0].Timestamp)

	_, err = ParseSeries([]byte(`{"numerator":{"points":[]},"denominator":"x"}`), "x")
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
