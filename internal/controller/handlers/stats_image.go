package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"sync"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/fogleman/gg"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Константы размеров диаграммы
const (
	chartWidth    = 800
	chartHeight   = 400
	chartPadding  = 40.0
	barGap        = 20.0
	labelAreaH    = 60.0
	minBarHeight  = 4.0
	axisLineWidth = 1.5

	chartTitleFontSize = 18.0
	chartLabelFontSize = 14.0
)

// Цветовая схема
var (
	chartBgColor   = color.RGBA{245, 246, 248, 255}
	chartTextColor = color.RGBA{80, 85, 90, 255}
	chartAxisColor = color.RGBA{150, 150, 150, 255}

	barPendingColor  = color.RGBA{255, 193, 7, 255}
	barApprovedColor = color.RGBA{33, 150, 243, 255}
	barAssignedColor = color.RGBA{156, 39, 176, 255}
	barAnsweredColor = color.RGBA{0, 188, 212, 255}
	barClosedColor   = color.RGBA{133, 193, 85, 255}
	barDeclinedColor = color.RGBA{244, 67, 54, 255}
)

type chartBar struct {
	label string
	count int
	color color.RGBA
}

var (
	chartFontOnce sync.Once
	chartFont     *opentype.Font
)

// chartFontFace возвращает шрифт с кириллицей для подписей диаграммы,
// basicfont покрывает только ASCII и остаётся запасным вариантом
func chartFontFace(size float64) font.Face {
	chartFontOnce.Do(func() {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		chartFont = parsed
	})
	if chartFont == nil {
		return basicfont.Face7x13
	}

	face, err := opentype.NewFace(chartFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// sendStatsChart рисует диаграмму по статусам и отправляет её фотографией
func (h *Handlers) sendStatsChart(ctx context.Context, b *bot.Bot, chatID int64, stats *service.Stats) {
	image, err := renderStatsChart(stats)
	if err != nil {
		h.logger.Error("Failed to render stats chart", zap.Error(err))
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo: &models.InputFileUpload{
			Filename: "stats.png",
			Data:     bytes.NewReader(image),
		},
	})
	if err != nil {
		h.logger.Error("Failed to send stats chart",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// renderStatsChart рисует столбчатую диаграмму распределения обращений
// по статусам и возвращает PNG
func renderStatsChart(stats *service.Stats) ([]byte, error) {
	bars := []chartBar{
		{label: "Рассмотрение", count: stats.ByStatus[model.RequestStatusPending], color: barPendingColor},
		{label: "Очередь", count: stats.ByStatus[model.RequestStatusApproved], color: barApprovedColor},
		{label: "В работе", count: stats.ByStatus[model.RequestStatusAssigned], color: barAssignedColor},
		{label: "Проверка", count: stats.ByStatus[model.RequestStatusAnswered], color: barAnsweredColor},
		{label: "Закрыто", count: stats.ByStatus[model.RequestStatusClosed], color: barClosedColor},
		{label: "Отклонено", count: stats.ByStatus[model.RequestStatusDeclined], color: barDeclinedColor},
	}

	maxCount := 1
	for _, bar := range bars {
		if bar.count > maxCount {
			maxCount = bar.count
		}
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(chartBgColor)
	dc.Clear()

	dc.SetFontFace(chartFontFace(chartTitleFontSize))
	dc.SetColor(chartTextColor)
	dc.DrawStringAnchored(
		fmt.Sprintf("Обращения по статусам (всего %d)", stats.Total),
		chartWidth/2, chartPadding/2, 0.5, 0.5)

	// Ось X
	baseY := float64(chartHeight) - labelAreaH
	dc.SetColor(chartAxisColor)
	dc.SetLineWidth(axisLineWidth)
	dc.DrawLine(chartPadding, baseY, float64(chartWidth)-chartPadding, baseY)
	dc.Stroke()

	plotW := float64(chartWidth) - 2*chartPadding
	plotH := baseY - chartPadding - 20
	barWidth := (plotW - barGap*float64(len(bars)-1)) / float64(len(bars))

	dc.SetFontFace(chartFontFace(chartLabelFontSize))

	for i, bar := range bars {
		x := chartPadding + float64(i)*(barWidth+barGap)

		barHeight := plotH * float64(bar.count) / float64(maxCount)
		if bar.count > 0 && barHeight < minBarHeight {
			barHeight = minBarHeight
		}

		dc.SetColor(bar.color)
		dc.DrawRectangle(x, baseY-barHeight, barWidth, barHeight)
		dc.Fill()

		dc.SetColor(chartTextColor)
		dc.DrawStringAnchored(fmt.Sprintf("%d", bar.count),
			x+barWidth/2, baseY-barHeight-10, 0.5, 0.5)
		dc.DrawStringAnchored(bar.label, x+barWidth/2, baseY+20, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
