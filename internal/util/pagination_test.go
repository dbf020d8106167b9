package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	offset, limit := Calculate(1, 10)
	require.Equal(t, 0, offset)
	require.Equal(t, 10, limit)

	offset, limit = Calculate(3, 10)
	require.Equal(t, 20, offset)
	require.Equal(t, 10, limit)

	// Out-of-range inputs fall back to defaults.
	offset, limit = Calculate(0, -5)
	require.Equal(t, 0, offset)
	require.Equal(t, DefaultPageSize, limit)

	_, limit = Calculate(1, 500)
	require.Equal(t, DefaultPageSize, limit)
}

func TestPaginate(t *testing.T) {
	p := Paginate(2, 10, 35)
	require.Equal(t, 2, p.Page)
	require.Equal(t, 10, p.Limit)
	require.EqualValues(t, 35, p.Total)
	require.EqualValues(t, 4, p.Pages)

	p = Paginate(1, 10, 0)
	require.EqualValues(t, 0, p.Pages)
}
