package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Page: 1, Limit: 20, Offset: 0}},
		{"?page=3&limit=10", Params{Page: 3, Limit: 10, Offset: 20}},
		{"?page=0&limit=0", Params{Page: 1, Limit: 20, Offset: 0}},
		{"?page=abc&limit=1000", Params{Page: 1, Limit: 100, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/x"+tt.query, nil)
			assert.Equal(t, tt.want, Parse(c))
		})
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage[string](nil, 41, New(2, 20))
	assert.Equal(t, []string{}, page.Items)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)

	assert.Equal(t, 0, NewPage([]int{}, 0, New(1, 20)).TotalPages)
}
