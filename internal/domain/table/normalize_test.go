package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeaderOffset(t *testing.T) {
	raw := NewRawTable([][]string{
		{"COSING Annex II"},
		{""},
		{"Substance Name", "CAS Number"},
		{"Reference", "Chemical name", "CAS Number", "EC Number"},
		{"1", "2-Acetoxyethyltrimethylammonium", "51-84-3", "200-128-9"},
		{"2", "Deanol aceglumate", "3342-61-8", "222-085-5"},
	})

	nt, err := Normalize(raw, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"Reference", "Chemical name", "CAS Number", "EC Number"}, nt.Header())
	assert.Equal(t, 2, nt.Len())
	assert.Equal(t, "51-84-3", nt.Cell(0, 2))
	assert.Equal(t, "3342-61-8", nt.Cell(1, 2))
}

func TestNormalizePlaceholderFallback(t *testing.T) {
	raw := NewRawTable([][]string{
		{"Substance Name", "CAS Number"},
		{"Unnamed: 0", "CAS Number"},
		{"Aqua", "7732-18-5"},
	})

	nt, err := Normalize(raw, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Substance Name", "CAS Number"}, nt.Header())
}

func TestNormalizePlaceholderWithoutFallback(t *testing.T) {
	raw := NewRawTable([][]string{
		{"", ""},
		{"Unnamed: 0", "CAS Number"},
		{"Aqua", "7732-18-5"},
	})

	nt, err := Normalize(raw, 1, 0)
	require.NoError(t, err)
	// Fallback cell is blank, so the placeholder stays.
	assert.Equal(t, []string{"Unnamed: 0", "CAS Number"}, nt.Header())
}

func TestNormalizeNoFallbackRow(t *testing.T) {
	raw := NewRawTable([][]string{
		{"Unnamed: 0", "CAS Number"},
		{"Aqua", "7732-18-5"},
	})

	nt, err := Normalize(raw, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unnamed: 0", "CAS Number"}, nt.Header())
	assert.Equal(t, 1, nt.Len())
}

func TestNormalizeTrimsHeaderCells(t *testing.T) {
	raw := NewRawTable([][]string{
		{"  Chemical name ", " CAS Number"},
	})

	nt, err := Normalize(raw, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chemical name", "CAS Number"}, nt.Header())
}

func TestNormalizeBlankHeaderSynthesized(t *testing.T) {
	raw := NewRawTable([][]string{
		{"", "CAS Number"},
		{"x", "64-17-5"},
	})

	nt, err := Normalize(raw, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Unnamed: 0", "CAS Number"}, nt.Header())
}

func TestNormalizeDedupesLabels(t *testing.T) {
	raw := NewRawTable([][]string{
		{"CAS Number", "Name", "CAS Number", "CAS Number"},
	})

	nt, err := Normalize(raw, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAS Number", "Name", "CAS Number.1", "CAS Number.2"}, nt.Header())
}

func TestNormalizePadsAndTruncatesRows(t *testing.T) {
	raw := NewRawTable([][]string{
		{"Name", "CAS Number"},
		{"Aqua"},
		{"Ethanol", "64-17-5", "stray"},
	})

	nt, err := Normalize(raw, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Aqua", ""}, nt.Row(0))
	assert.Equal(t, []string{"Ethanol", "64-17-5"}, nt.Row(1))
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := NewRawTable([][]string{
		{"fallback a", "fallback b"},
		{"Unnamed: 0", "CAS Number"},
		{"Aqua", "7732-18-5"},
		{"Ethanol", "64-17-5"},
	})

	first, err := Normalize(raw, 1, 0)
	require.NoError(t, err)
	second, err := Normalize(raw, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, first.Header(), second.Header())
	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, first.Row(i), second.Row(i))
	}
}

func TestNormalizeHeaderRowOutOfRange(t *testing.T) {
	raw := NewRawTable([][]string{{"only row"}})

	_, err := Normalize(raw, 5, 4)
	assert.Error(t, err)
}
