package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePageDefaults(t *testing.T) {
	req := NormalizePage("", "")
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.Limit)
	assert.Equal(t, 0, req.Skip)
}

func TestNormalizePageClampsZeroAndOversized(t *testing.T) {
	req := NormalizePage("0", "500")
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 100, req.Limit)
}

func TestNormalizePageFloorsNegativePage(t *testing.T) {
	req := NormalizePage("-3", "20")
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.Limit)
	assert.Equal(t, 0, req.Skip)
}

func TestNormalizePageNonNumericFallsBack(t *testing.T) {
	req := NormalizePage("abc", "xyz")
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 10, req.Limit)
}

func TestNormalizePageSkip(t *testing.T) {
	req := NormalizePage("3", "25")
	assert.Equal(t, 50, req.Skip)
}

func TestShapePageEmptyResultStillOnePage(t *testing.T) {
	info := ShapePage(0, NormalizePage("1", "10"))
	assert.Equal(t, 0, info.Total)
	assert.Equal(t, 1, info.Pages)
}

func TestShapePageRoundsUp(t *testing.T) {
	info := ShapePage(25, NormalizePage("2", "10"))
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 25, info.Total)
	assert.Equal(t, 3, info.Pages)
}
