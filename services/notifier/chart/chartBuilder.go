package chart

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	logger "github.com/multiversx/mx-chain-logger-go"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartTitle  = "UI metrics"
	xAxisName   = "Test Runs"
	yAxisName   = "Time, ms"
	contentID   = "ui_metrics"
	fileName    = "ui_metrics.png"
	contentType = "image/png"
	filePattern = "ui_metrics_%s_%s.png"
)

var log = logger.GetOrCreate("chart")

// ErrNoData signals an empty comparison
var ErrNoData = errors.New("no aggregated rows to chart")

// Series holds the chart input. X is the ascending run index, all the other series are reversed
// relative to the aggregated rows they were built from.
type Series struct {
	X         []float64
	Labels    []string
	TotalTime []float64
	TTI       []float64
	FVC       []float64
	LVC       []float64
}

// BuildSeries converts the aggregated rows into chart series
func BuildSeries(rows []common.AggregatedRow) Series {
	s := Series{
		X:         make([]float64, 0, len(rows)),
		Labels:    make([]string, 0, len(rows)),
		TotalTime: make([]float64, 0, len(rows)),
		TTI:       make([]float64, 0, len(rows)),
		FVC:       make([]float64, 0, len(rows)),
		LVC:       make([]float64, 0, len(rows)),
	}

	for i, row := range rows {
		s.X = append(s.X, float64(i+1))
		s.Labels = append(s.Labels, row.Date)
		s.TotalTime = append(s.TotalTime, round2(float64(row.TotalTime)))
		s.TTI = append(s.TTI, round2(float64(row.TTI)))
		s.FVC = append(s.FVC, round2(float64(row.FVC)))
		s.LVC = append(s.LVC, round2(float64(row.LVC)))
	}

	reverse(s.Labels)
	reverse(s.TotalTime)
	reverse(s.TTI)
	reverse(s.FVC)
	reverse(s.LVC)

	return s
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func reverse[T any](values []T) {
	for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
		values[i], values[j] = values[j], values[i]
	}
}

// ArgsChartBuilder defines the chart builder arguments
type ArgsChartBuilder struct {
	Directory string
	Width     int
	Height    int
}

type chartBuilder struct {
	directory string
	width     int
	height    int
}

// NewChartBuilder creates a chart builder writing its intermediate files in the provided directory
func NewChartBuilder(args ArgsChartBuilder) (*chartBuilder, error) {
	if len(args.Directory) == 0 {
		return nil, errors.New("empty chart directory")
	}
	if args.Width <= 0 || args.Height <= 0 {
		return nil, fmt.Errorf("invalid chart size %dx%d", args.Width, args.Height)
	}

	return &chartBuilder{
		directory: args.Directory,
		width:     args.Width,
		height:    args.Height,
	}, nil
}

// Build renders the trend chart of the aggregated rows and returns it as an inline image.
// Each call uses its own file, so concurrent builds do not interfere.
func (cb *chartBuilder) Build(rows []common.AggregatedRow, reportID string) (*common.InlineImage, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	ch := cb.createChart(BuildSeries(rows))

	path := filepath.Join(cb.directory, fmt.Sprintf(filePattern, filepath.Base(reportID), uuid.NewString()))
	err := writeChart(ch, path)
	defer func() {
		_ = os.Remove(path)
	}()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}

	log.Debug("built UI metrics chart", "path", path, "points", len(rows), "size", len(data))

	return &common.InlineImage{
		ContentID:   contentID,
		FileName:    fileName,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func writeChart(ch *gochart.Chart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}

	err = ch.Render(gochart.PNG, f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}

	return f.Close()
}

func (cb *chartBuilder) createChart(s Series) *gochart.Chart {
	xs := s.X
	ticks := make([]gochart.Tick, 0, len(xs)+1)
	for i, x := range xs {
		ticks = append(ticks, gochart.Tick{Value: x, Label: s.Labels[i]})
	}

	// go-chart can not draw a zero width x range, a single run is drawn as a flat segment
	if len(xs) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ticks = append(ticks, gochart.Tick{Value: xs[1], Label: ""})
	}

	maxY := 0.0
	for _, values := range [][]float64{s.TotalTime, s.TTI, s.FVC, s.LVC} {
		for _, v := range values {
			maxY = math.Max(maxY, v)
		}
	}
	if maxY <= 0 {
		maxY = 1
	}

	ch := &gochart.Chart{
		Title:  chartTitle,
		Width:  cb.width,
		Height: cb.height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: gochart.XAxis{
			Name:  xAxisName,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: xs[0], Max: xs[len(xs)-1]},
		},
		YAxis: gochart.YAxis{
			Name:  yAxisName,
			Range: &gochart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: []gochart.Series{
			lineSeries("Total time", xs, s.TotalTime, gochart.ColorBlue),
			lineSeries("TTI", xs, s.TTI, gochart.ColorGreen),
			lineSeries("FVC", xs, s.FVC, gochart.ColorOrange),
			lineSeries("LVC", xs, s.LVC, gochart.ColorRed),
		},
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(ch)}

	return ch
}

func lineSeries(name string, xs []float64, ys []float64, color drawing.Color) gochart.ContinuousSeries {
	if len(ys) < len(xs) {
		ys = append([]float64{ys[0]}, ys...)
	}

	return gochart.ContinuousSeries{
		Name:    name,
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
			DotColor:    color,
			DotWidth:    4,
		},
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (cb *chartBuilder) IsInterfaceNil() bool {
	return cb == nil
}
