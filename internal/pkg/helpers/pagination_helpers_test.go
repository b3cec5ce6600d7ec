package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	require.Equal(t, uint64(40), offset)
	require.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(0, 500)
	require.Equal(t, uint64(0), offset)
	require.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	cases := []struct {
		name        string
		total       int64
		page, size  int
		wantPages   int
		wantHasMore bool
	}{
		{"empty", 0, 1, 20, 0, false},
		{"exact single page", 20, 1, 20, 1, false},
		{"first of three", 45, 1, 20, 3, true},
		{"last partial page", 45, 3, 20, 3, false},
		{"beyond the end", 45, 5, 20, 3, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := NewPaginationInfo(tc.total, tc.page, tc.size)
			require.Equal(t, tc.wantPages, info.TotalPages)
			require.Equal(t, tc.wantHasMore, info.HasMore)
			require.Equal(t, tc.total, info.TotalCount)
			require.Equal(t, tc.page, info.CurrentPage)
		})
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		query string
		want  Page
	}{
		{"", Page{Number: 1, Limit: DefaultPageSize}},
		{"?page=2&limit=5", Page{Number: 2, Limit: 5}},
		{"?page=-1&limit=abc", Page{Number: 1, Limit: DefaultPageSize}},
		{"?limit=1000", Page{Number: 1, Limit: MaxPageSize}},
	}

	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/items"+tc.query, nil)
		require.Equal(t, tc.want, ParsePagination(c), tc.query)
	}

	require.Equal(t, uint64(5), Page{Number: 2, Limit: 5}.Offset())
}

func TestParseIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := ParseIDParam(c, "id")
	require.True(t, ok)
	require.Equal(t, int64(42), id)

	for _, raw := range []string{"0", "-3", "abc", ""} {
		c.Params = gin.Params{{Key: "id", Value: raw}}
		_, ok := ParseIDParam(c, "id")
		require.False(t, ok, raw)
	}
}
