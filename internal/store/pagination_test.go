package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero defaults", 0, 100},
		{"negative defaults", -5, 100},
		{"in range unchanged", 50, 50},
		{"over max clamped", 5000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PaginationParams{Limit: tt.limit}
			p.Validate()
			assert.Equal(t, tt.want, p.Limit)
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := EncodeCursor("book:book-042")
	require.NotEmpty(t, cursor)

	key, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, "book:book-042", key)
}

func TestDecodeCursor_Empty(t *testing.T) {
	key, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestDecodeCursor_Garbage(t *testing.T) {
	_, err := DecodeCursor("not base64 at all!!!")
	assert.Error(t, err)
}
