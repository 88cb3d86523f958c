package chart

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRows() []common.AggregatedRow {
	return []common.AggregatedRow{
		{TotalTime: 1750, TTI: 110, FVC: 85, LVC: 210, Date: "01/05"},
		{TotalTime: 1800, TTI: 120, FVC: 86, LVC: 211, Date: "01/04"},
		{TotalTime: 1900, TTI: 130, FVC: 87, LVC: 212, Date: "01/03"},
	}
}

func createBuilder(t *testing.T) *chartBuilder {
	cb, err := NewChartBuilder(ArgsChartBuilder{
		Directory: t.TempDir(),
		Width:     1400,
		Height:    400,
	})
	require.NoError(t, err)

	return cb
}

func TestBuildSeries(t *testing.T) {
	t.Parallel()

	t.Run("should reverse everything except the index", func(t *testing.T) {
		t.Parallel()

		s := BuildSeries(createRows())
		assert.Equal(t, []float64{1, 2, 3}, s.X)
		assert.Equal(t, []string{"01/03", "01/04", "01/05"}, s.Labels)
		assert.Equal(t, []float64{1900, 1800, 1750}, s.TotalTime)
		assert.Equal(t, []float64{130, 120, 110}, s.TTI)
		assert.Equal(t, []float64{87, 86, 85}, s.FVC)
		assert.Equal(t, []float64{212, 211, 210}, s.LVC)
	})
	t.Run("single row", func(t *testing.T) {
		t.Parallel()

		s := BuildSeries([]common.AggregatedRow{{TotalTime: 1750, TTI: 110, FVC: 85, LVC: 210, Date: "01/01"}})
		assert.Equal(t, []float64{1}, s.X)
		assert.Equal(t, []string{"01/01"}, s.Labels)
		assert.Equal(t, []float64{1750.0}, s.TotalTime)
		assert.Equal(t, []float64{110}, s.TTI)
		assert.Equal(t, []float64{85}, s.FVC)
		assert.Equal(t, []float64{210}, s.LVC)
	})
	t.Run("input rows are not modified", func(t *testing.T) {
		t.Parallel()

		rows := createRows()
		_ = BuildSeries(rows)
		assert.Equal(t, createRows(), rows)
	})
	t.Run("empty rows", func(t *testing.T) {
		t.Parallel()

		s := BuildSeries(nil)
		assert.Empty(t, s.X)
		assert.Empty(t, s.Labels)
	})
}

func TestNewChartBuilder(t *testing.T) {
	t.Parallel()

	t.Run("empty directory should error", func(t *testing.T) {
		t.Parallel()

		cb, err := NewChartBuilder(ArgsChartBuilder{Width: 1, Height: 1})
		assert.Nil(t, cb)
		assert.True(t, cb.IsInterfaceNil())
		assert.ErrorContains(t, err, "empty chart directory")
	})
	t.Run("invalid size should error", func(t *testing.T) {
		t.Parallel()

		cb, err := NewChartBuilder(ArgsChartBuilder{Directory: t.TempDir(), Width: 0, Height: 400})
		assert.Nil(t, cb)
		assert.ErrorContains(t, err, "invalid chart size 0x400")
	})
	t.Run("should work", func(t *testing.T) {
		t.Parallel()

		cb := createBuilder(t)
		assert.False(t, cb.IsInterfaceNil())
	})
}

func TestChartBuilder_Build(t *testing.T) {
	t.Parallel()

	t.Run("empty rows should error", func(t *testing.T) {
		t.Parallel()

		cb := createBuilder(t)
		image, err := cb.Build(nil, "77")
		assert.Nil(t, image)
		assert.Equal(t, ErrNoData, err)
	})
	t.Run("should render a png and clean its file", func(t *testing.T) {
		t.Parallel()

		cb := createBuilder(t)
		image, err := cb.Build(createRows(), "77")
		require.NoError(t, err)

		assert.Equal(t, "ui_metrics", image.ContentID)
		assert.Equal(t, "ui_metrics.png", image.FileName)
		assert.Equal(t, "image/png", image.ContentType)

		cfg, err := png.DecodeConfig(bytes.NewReader(image.Data))
		require.NoError(t, err)
		assert.Equal(t, 1400, cfg.Width)
		assert.Equal(t, 400, cfg.Height)

		entries, err := os.ReadDir(cb.directory)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
	t.Run("single row should render", func(t *testing.T) {
		t.Parallel()

		cb := createBuilder(t)
		image, err := cb.Build([]common.AggregatedRow{{TotalTime: 1750, TTI: 110, FVC: 85, LVC: 210, Date: "01/01"}}, "77")
		require.NoError(t, err)
		assert.NotEmpty(t, image.Data)
	})
	t.Run("zero values should render", func(t *testing.T) {
		t.Parallel()

		cb := createBuilder(t)
		image, err := cb.Build([]common.AggregatedRow{{Date: "01/01"}, {Date: "01/02"}}, "77")
		require.NoError(t, err)
		assert.NotEmpty(t, image.Data)
	})
	t.Run("missing directory should error", func(t *testing.T) {
		t.Parallel()

		cb, _ := NewChartBuilder(ArgsChartBuilder{
			Directory: filepath.Join(t.TempDir(), "missing"),
			Width:     1400,
			Height:    400,
		})
		image, err := cb.Build(createRows(), "77")
		assert.Nil(t, image)
		assert.ErrorContains(t, err, "failed to create chart file")
	})
	t.Run("concurrent builds should not interfere", func(t *testing.T) {
		t.Parallel()

		cb := createBuilder(t)
		numBuilds := 5

		var wg sync.WaitGroup
		wg.Add(numBuilds)
		errs := make([]error, numBuilds)
		for i := 0; i < numBuilds; i++ {
			go func(idx int) {
				defer wg.Done()

				image, err := cb.Build(createRows(), fmt.Sprintf("report-%d", idx%2))
				if err == nil {
					_, err = png.DecodeConfig(bytes.NewReader(image.Data))
				}
				errs[idx] = err
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
	})
}
