package model_test

import (
	"errors"
	"testing"

	"github.com/jmerrifield20/threadboard/internal/board/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRequest_defaults(t *testing.T) {
	req, err := model.ParsePageRequest("", "", "", model.CommentSortColumns)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPageRequest(), req)
	assert.Equal(t, 0, req.Offset())
}

func TestParsePageRequest_rejectsBadInput(t *testing.T) {
	for _, tc := range []struct{ page, limit string }{
		{"0", ""},
		{"-1", ""},
		{"abc", ""},
		{"", "0"},
		{"", "101"},
		{"", "ten"},
	} {
		_, err := model.ParsePageRequest(tc.page, tc.limit, "", model.CommentSortColumns)
		var ve *model.ErrValidation
		assert.True(t, errors.As(err, &ve), "page=%q limit=%q", tc.page, tc.limit)
	}
}

func TestParsePageRequest_sort(t *testing.T) {
	tests := []struct {
		raw      string
		wantCol  string
		wantDesc bool
	}{
		{"updated_at", "updated_at", false},
		{"-updated_at", "updated_at", true},
		{"nesting_level:asc", "nesting_level", false},
		{"nesting_level:DESC", "nesting_level", true},
		{"body", "created_at", true},
		{"-password", "created_at", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req, err := model.ParsePageRequest("2", "10", tt.raw, model.CommentSortColumns)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCol, req.Sort)
			assert.Equal(t, tt.wantDesc, req.Desc)
			assert.Equal(t, 10, req.Offset())
		})
	}
}

func TestNewPage(t *testing.T) {
	req := model.PageRequest{Page: 3, Limit: 10}

	p := model.NewPage([]int{1, 2, 3}, req, 23)
	assert.Equal(t, model.Pagination{Current: 3, Limit: 10, Records: 23, Pages: 3}, p.Pagination)

	p = model.NewPage([]int{}, req, 20)
	assert.EqualValues(t, 2, p.Pagination.Pages)

	empty := model.NewPage[int](nil, req, 0)
	assert.NotNil(t, empty.Data)
	assert.Zero(t, empty.Pagination.Pages)
}
