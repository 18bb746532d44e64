package cas

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		found bool
	}{
		{"bare number", "64-17-5", "64-17-5", true},
		{"cas hyphen prefix", "CAS-64-17-5", "64-17-5", true},
		{"cas space prefix", "CAS 7732-18-5", "7732-18-5", true},
		{"embedded in text", "ethanol (64-17-5) anhydrous", "64-17-5", true},
		{"seven digit group", "1234567-89-0", "1234567-89-0", true},
		{"no match", "ethanol", "", false},
		{"wrong shape", "64-175", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.in)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFirst(t *testing.T) {
	syns := []string{"ethyl alcohol", "alcohol", "CAS-64-17-5", "64-17-5"}
	got, ok := ExtractFirst(syns)
	assert.True(t, ok)
	assert.Equal(t, "64-17-5", got)

	_, ok = ExtractFirst([]string{"water", "aqua"})
	assert.False(t, ok)

	_, ok = ExtractFirst(nil)
	assert.False(t, ok)
}

func TestIsShaped(t *testing.T) {
	assert.True(t, IsShaped("51-84-3"))
	assert.True(t, IsShaped("  7732-18-5 "))
	assert.False(t, IsShaped("CAS-51-84-3"))
	assert.False(t, IsShaped("51843"))
	assert.False(t, IsShaped(""))
}

func TestSplitList(t *testing.T) {
	in := "51-84-3\n64-17-5, 7732-18-5;  \n\n90-43-7"
	assert.Equal(t, []string{"51-84-3", "64-17-5", "7732-18-5", "90-43-7"}, SplitList(in))
	assert.Empty(t, SplitList("  \n ; , "))
}
