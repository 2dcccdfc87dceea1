package speech

import (
	"errors"
	"testing"

	"newswizard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RateSentence(t *testing.T) {
	items, err := Normalize([]domain.FeedRecord{
		domain.RateRecord{Name: "Prime", Value: "4.5", QuoteDate: "6/2/2018"},
	})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "As of 6 2 the Prime rate is 4.5", items[0])
}

func TestNormalize_RateSuffixNotDoubled(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Swap Rate", want: "As of 12 31 the Swap Rate is 2.1"},
		{name: "fed funds RATE", want: "As of 12 31 the fed funds RATE is 2.1"},
		{name: "Treasury", want: "As of 12 31 the Treasury rate is 2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RateSentence(domain.RateRecord{Name: tt.name, Value: "2.1", QuoteDate: "12/31/2018"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "rate rate")
		})
	}
}

func TestNormalize_PreservesLengthAndOrder(t *testing.T) {
	records := []domain.FeedRecord{
		domain.NewsRecord{Body: "Seattle office market rebounds"},
		domain.RateRecord{Name: "LIBOR", Value: "2.3", QuoteDate: "6/1/2018"},
		domain.NewsRecord{Body: "NYC retail leasing slows"},
	}

	items, err := Normalize(records)

	require.NoError(t, err)
	require.Len(t, items, len(records))
	assert.Equal(t, "Seattle office market rebounds", items[0])
	assert.Equal(t, "As of 6 1 the LIBOR rate is 2.3", items[1])
	assert.Equal(t, "NYC retail leasing slows", items[2])
}

func TestNormalize_NewsBodyUnmodified(t *testing.T) {
	body := "  Rates & <spreads> widen  "
	items, err := Normalize([]domain.FeedRecord{domain.NewsRecord{Body: body}})

	require.NoError(t, err)
	assert.Equal(t, body, items[0])
}

func TestNormalize_Empty(t *testing.T) {
	items, err := Normalize(nil)

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNormalize_MalformedQuoteDate(t *testing.T) {
	for _, date := range []string{"", "2018", "6/2018"} {
		t.Run(date, func(t *testing.T) {
			items, err := Normalize([]domain.FeedRecord{
				domain.RateRecord{Name: "Prime", Value: "4.5", QuoteDate: date},
			})
			assert.Nil(t, items)
			assert.True(t, errors.Is(err, domain.ErrMalformedQuoteDate))
		})
	}
}
