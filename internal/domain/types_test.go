package domain

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{
			name:     "one ether in wei",
			input:    "1000000000000000000",
			expected: "1000000000000000000",
		},
		{
			name:     "larger than int64",
			input:    "123456789012345678901234567890",
			expected: "123456789012345678901234567890",
		},
		{
			name:     "surrounding whitespace",
			input:    " 42 ",
			expected: "42",
		},
		{
			name:     "zero",
			input:    "0",
			expected: "0",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "decimal point",
			input:   "1.5",
			wantErr: true,
		},
		{
			name:    "negative",
			input:   "-1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPrice))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got.String())
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", got)

	_, err = NormalizeAddress("not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = NormalizeAddress("0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestCloneIsDeep(t *testing.T) {
	a := Artwork{TokenID: 1, CurrentPrice: big.NewInt(10)}
	c := a.Clone()
	c.CurrentPrice.SetInt64(99)
	assert.Equal(t, int64(10), a.CurrentPrice.Int64())

	auc := Auction{StartPrice: big.NewInt(5)}
	ac := auc.Clone()
	assert.NotNil(t, ac.CurrentBid)
	assert.False(t, ac.HasBids())
	ac.StartPrice.SetInt64(7)
	assert.Equal(t, int64(5), auc.StartPrice.Int64())
}

func TestAmountString(t *testing.T) {
	assert.Equal(t, "0", AmountString(nil))
	assert.Equal(t, "17", AmountString(big.NewInt(17)))
	assert.False(t, IsPositive(nil))
	assert.False(t, IsPositive(big.NewInt(0)))
	assert.True(t, IsPositive(big.NewInt(1)))
}

func TestNewEvent(t *testing.T) {
	ts := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	e1 := NewEvent(EventArtworkMinted, 1, ts, map[string]string{"creator": "0xabc"})
	e2 := NewEvent(EventArtworkMinted, 1, ts, nil)

	assert.Len(t, e1.ID, 26)
	assert.NotEqual(t, e1.ID, e2.ID)
	assert.Equal(t, EventArtworkMinted, e1.Type)
	assert.Equal(t, uint64(1), e1.TokenID)
	assert.Equal(t, ts, e1.Timestamp)
}

func TestAuctionDuration(t *testing.T) {
	assert.Equal(t, 24*time.Hour, AuctionDuration(24))
	assert.Equal(t, 168*time.Hour, AuctionDuration(MAX_AUCTION_DURATION_HOURS))
}
