package handlers

import (
	"bytes"
	"testing"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/fogleman/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drawChartLabel(t *testing.T, label string) []byte {
	t.Helper()

	dc := gg.NewContext(160, 40)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(chartFontFace(chartLabelFontSize))
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(label, 80, 20, 0.5, 0.5)

	var buf bytes.Buffer
	require.NoError(t, dc.EncodePNG(&buf))
	return buf.Bytes()
}

// Разные кириллические подписи должны давать разные изображения. Шрифт
// без кириллицы рисует каждую букву одинаковым заменяющим знаком, и
// подписи становятся неотличимы друг от друга.
func TestChartFontRendersCyrillicLabels(t *testing.T) {
	closed := drawChartLabel(t, "Закрыто")
	queued := drawChartLabel(t, "Очередь")
	blank := drawChartLabel(t, "")

	assert.NotEqual(t, blank, closed)
	assert.NotEqual(t, blank, queued)
	assert.NotEqual(t, closed, queued)
}

func TestRenderStatsChart(t *testing.T) {
	stats := &service.Stats{
		Total: 6,
		ByStatus: map[model.RequestStatus]int{
			model.RequestStatusPending:  2,
			model.RequestStatusApproved: 1,
			model.RequestStatusAssigned: 1,
			model.RequestStatusClosed:   2,
		},
	}

	image, err := renderStatsChart(stats)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(image, []byte("\x89PNG")))
}

func TestRenderStatsChartEmpty(t *testing.T) {
	image, err := renderStatsChart(&service.Stats{ByStatus: map[model.RequestStatus]int{}})
	require.NoError(t, err)
	assert.NotEmpty(t, image)
}
