package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNormalize(t *testing.T, header []string, rows ...[]string) *NormalizedTable {
	t.Helper()
	all := append([][]string{header}, rows...)
	nt, err := Normalize(NewRawTable(all), 0, -1)
	require.NoError(t, err)
	return nt
}

func TestFindColumnsCAS(t *testing.T) {
	nt := mustNormalize(t, []string{"Reference", "Chemical name", "CAS Number", "EC Number", "CAS No 2"})

	cols := nt.FindColumns(RoleCAS)
	require.Len(t, cols, 2)
	assert.Equal(t, Column{Index: 2, Label: "CAS Number"}, cols[0])
	assert.Equal(t, Column{Index: 4, Label: "CAS No 2"}, cols[1])
}

func TestFindColumnsName(t *testing.T) {
	nt := mustNormalize(t, []string{"Ref", "INCI name", "Substance", "Ingredient", "CAS Number"})

	cols := nt.FindColumns(RoleName)
	require.Len(t, cols, 3)
	assert.Equal(t, 1, cols[0].Index)
	assert.Equal(t, 2, cols[1].Index)
	assert.Equal(t, 3, cols[2].Index)
}

func TestFindColumnsCaseInsensitive(t *testing.T) {
	nt := mustNormalize(t, []string{"cas number", "CHEMICAL NAME"})

	assert.Len(t, nt.FindColumns(RoleCAS), 1)
	assert.Len(t, nt.FindColumns(RoleName), 1)
}

func TestFindColumnsNoCandidates(t *testing.T) {
	nt := mustNormalize(t, []string{"Reference", "EC Number", "Restrictions"})

	assert.Empty(t, nt.FindColumns(RoleCAS))
	assert.Empty(t, nt.FindColumns(RoleName))
}

func TestFindColumnsIndependentOfRows(t *testing.T) {
	header := []string{"Chemical name", "CAS Number"}
	a := mustNormalize(t, header)
	b := mustNormalize(t, header, []string{"Ethanol", "64-17-5"}, []string{"Aqua", "7732-18-5"})

	assert.Equal(t, a.FindColumns(RoleCAS), b.FindColumns(RoleCAS))
	assert.Equal(t, a.FindColumns(RoleName), b.FindColumns(RoleName))
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "cas", RoleCAS.String())
	assert.Equal(t, "name", RoleName.String())
	assert.Equal(t, "unknown", Role(42).String())
}
