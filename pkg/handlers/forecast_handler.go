package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync/atomic"

	config "eagle-eye-api/configs"
	"eagle-eye-api/pkg/models"
	"eagle-eye-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// isGenerating は生成ジョブの実行中フラグです。
// atomic.Boolを使用して、二重起動を防ぎます。
var isGenerating atomic.Bool

// ForecastHandler は予報データの配信と生成ジョブの起動を担うハンドラです。
type ForecastHandler struct {
	svc     *services.ForecastService
	areaCfg *config.AreaConfig
	cfg     *config.Config
}

// NewForecastHandler は新しいForecastHandlerを生成します。
func NewForecastHandler(svc *services.ForecastService, areaCfg *config.AreaConfig, cfg *config.Config) *ForecastHandler {
	return &ForecastHandler{
		svc:     svc,
		areaCfg: areaCfg,
		cfg:     cfg,
	}
}

// loadOutput 生成済みの出力ファイルを読み込む
func (h *ForecastHandler) loadOutput() (map[string][]models.ForecastEntry, error) {
	b, err := os.ReadFile(h.cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	var data map[string][]models.ForecastEntry
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetForecast は全エリアの生成済み予報を返します。
func (h *ForecastHandler) GetForecast(c *gin.Context) {
	data, err := h.loadOutput()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "予報データがまだ生成されていません",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}

// GetAreaForecast は指定エリアの生成済み予報を返します。
func (h *ForecastHandler) GetAreaForecast(c *gin.Context) {
	areaID := c.Param("areaID")

	data, err := h.loadOutput()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "予報データがまだ生成されていません",
		})
		return
	}

	entries, ok := data[areaID]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "指定されたエリアが見つかりません: " + areaID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"area_id": areaID,
		"data":    entries,
		"count":   len(entries),
	})
}

// GetAreas は配信対象エリアの一覧を返します。
func (h *ForecastHandler) GetAreas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.areaCfg.Areas,
		"count":   len(h.areaCfg.Areas),
	})
}

// Generate は予報生成ジョブをバックグラウンドで起動します。
// 既に実行中の場合は409を返します。
func (h *ForecastHandler) Generate(c *gin.Context) {
	if !isGenerating.CompareAndSwap(false, true) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error":   "生成ジョブは既に実行中です",
		})
		return
	}

	go func() {
		defer isGenerating.Store(false)

		data := h.svc.Run(context.Background())
		if err := services.WriteOutput(h.cfg.OutputPath, data); err != nil {
			log.Printf("出力の書き込みに失敗: %v", err)
			return
		}
		if h.cfg.ExportXLSXPath != "" {
			if err := services.ExportSummaryXLSX(h.cfg.ExportXLSXPath, h.areaCfg.Areas, data); err != nil {
				log.Printf("Excelサマリーの出力に失敗: %v", err)
			}
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "生成ジョブを開始しました",
	})
}

// HealthCheck はサーバーの稼働状態を返します。
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "eagle-eye-api",
	})
}
