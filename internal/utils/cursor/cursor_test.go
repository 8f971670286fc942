package cursor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alaalsalam/hisabi-backend/internal/utils/cursor"
)

func TestRoundTrip(t *testing.T) {
	watermark := time.Date(2026, 3, 15, 10, 30, 45, 123456789, time.UTC)

	decoded, err := cursor.Decode(cursor.Encode(cursor.Token{Watermark: watermark}))
	require.NoError(t, err)
	assert.True(t, decoded.Watermark.Equal(watermark))
	assert.Nil(t, decoded.Resume)
}

func TestRoundTrip_WithResume(t *testing.T) {
	watermark := time.Date(2026, 3, 15, 10, 30, 45, 0, time.UTC)
	cut := watermark.Add(5 * time.Minute)

	token := cursor.Token{
		Watermark: watermark,
		Resume:    &cursor.Position{Kind: "account", Time: cut, EntityID: "acc-7"},
	}

	decoded, err := cursor.Decode(cursor.Encode(token))
	require.NoError(t, err)
	assert.True(t, decoded.Watermark.Equal(watermark))
	require.NotNil(t, decoded.Resume)
	assert.Equal(t, "account", decoded.Resume.Kind)
	assert.True(t, decoded.Resume.Time.Equal(cut))
	assert.Equal(t, "acc-7", decoded.Resume.EntityID)
}

func TestRoundTrip_NonUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	watermark := time.Date(2026, 3, 15, 13, 30, 45, 0, loc)

	decoded, err := cursor.Decode(cursor.Encode(cursor.Token{Watermark: watermark}))
	require.NoError(t, err)
	assert.True(t, decoded.Watermark.Equal(watermark), "the instant survives serialization")
}

func TestDecode_EmptyMeansBeginning(t *testing.T) {
	decoded, err := cursor.Decode("")
	require.NoError(t, err)
	assert.True(t, decoded.Watermark.IsZero())
	assert.Nil(t, decoded.Resume)
}

func TestDecode_InvalidBase64(t *testing.T) {
	_, err := cursor.Decode("not-base64!!")
	assert.Error(t, err)
}

func TestDecode_InvalidToken(t *testing.T) {
	// Valid base64, but the decoded bytes are not a token.
	_, err := cursor.Decode("aGVsbG8=")
	assert.Error(t, err)
}
