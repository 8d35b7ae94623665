package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/pkg/apperr"
)

func TestPageSinglePage(t *testing.T) {
	w, err := Page(1, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, w.StartIndex)
	assert.Equal(t, 10, w.EndIndex)
	assert.Nil(t, w.Next)
	assert.Nil(t, w.Previous)
}

func TestPageMiddlePage(t *testing.T) {
	w, err := Page(2, 10, 25)
	require.NoError(t, err)
	assert.Equal(t, 10, w.StartIndex)
	assert.Equal(t, 20, w.EndIndex)
	require.NotNil(t, w.Next)
	assert.Equal(t, Cursor{Page: 3, Limit: 10}, *w.Next)
	require.NotNil(t, w.Previous)
	assert.Equal(t, Cursor{Page: 1, Limit: 10}, *w.Previous)
}

func TestPageLastPartialPage(t *testing.T) {
	w, err := Page(3, 10, 25)
	require.NoError(t, err)
	assert.Equal(t, 20, w.StartIndex)
	assert.Nil(t, w.Next)
	require.NotNil(t, w.Previous)
}

func TestPageBeyondTotal(t *testing.T) {
	// pages past the data still resolve; they are simply empty windows
	w, err := Page(5, 10, 25)
	require.NoError(t, err)
	assert.Nil(t, w.Next)
	require.NotNil(t, w.Previous)
}

func TestPageEmptyTotal(t *testing.T) {
	w, err := Page(1, 10, 0)
	require.NoError(t, err)
	assert.Nil(t, w.Next)
	assert.Nil(t, w.Previous)
}

func TestPageInvalidArgs(t *testing.T) {
	_, err := Page(0, 10, 100)
	assert.ErrorIs(t, err, apperr.ErrInvalidPagination)
	_, err = Page(1, 0, 100)
	assert.ErrorIs(t, err, apperr.ErrInvalidPagination)
	_, err = Page(-1, -5, 100)
	assert.ErrorIs(t, err, apperr.ErrInvalidPagination)
}
