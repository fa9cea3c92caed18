package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"FriendMap-App/internal/domain/helper"
	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
	"FriendMap-App/internal/usecase"
)

// defaultActivityWindow 投稿アクティビティ判定のデフォルト期間
const defaultActivityWindow = 24 * time.Hour

// MapHandler 地図ビュー状態に関するHTTPハンドラー
type MapHandler struct {
	mapUseCase usecase.MapViewUseCase
	postsRepo  repository.PostsRepository
}

// NewMapHandler MapHandlerの新しいインスタンスを作成
func NewMapHandler(mapUseCase usecase.MapViewUseCase, postsRepo repository.PostsRepository) *MapHandler {
	return &MapHandler{
		mapUseCase: mapUseCase,
		postsRepo:  postsRepo,
	}
}

// GetMapState GET /map/state - 最新のビュー状態を取得
// bboxクエリパラメータ指定時はビューポート内のマーカーに絞り込む
func (h *MapHandler) GetMapState(c *gin.Context) {
	state := h.mapUseCase.ViewState()

	bbox := c.Query("bbox")
	if bbox != "" {
		bound, err := helper.ParseBoundingBox(bbox)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "Invalid bbox: " + err.Error(),
			})
			return
		}
		state.Posts = helper.FilterMarkersInBound(state.Posts, bound)
		state.PublicEntries = helper.FilterMarkersInBound(state.PublicEntries, bound)
	}

	c.JSON(http.StatusOK, state)
}

// StreamMapState GET /map/stream - ビュー状態の更新をSSEで配信
func (h *MapHandler) StreamMapState(c *gin.Context) {
	updates, unsubscribe := h.mapUseCase.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	// 接続直後に現在の状態を1回届ける
	c.SSEvent("state", h.mapUseCase.ViewState())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case state, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("state", state)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// focusRequest フォーカス位置設定リクエスト
type focusRequest struct {
	Focus *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Label     string  `json:"label"`
	} `json:"focus"`
}

// SetFocusLocation POST /map/focus - フォーカス位置の設定（focus: nullで解除）
func (h *MapHandler) SetFocusLocation(c *gin.Context) {
	var req focusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	if req.Focus == nil {
		h.mapUseCase.SetFocusLocation(nil)
	} else {
		h.mapUseCase.SetFocusLocation(&model.Coordinate{
			Latitude:  req.Focus.Latitude,
			Longitude: req.Focus.Longitude,
			Label:     req.Focus.Label,
		})
	}

	c.JSON(http.StatusOK, h.mapUseCase.ViewState())
}

// layerRequest 表示レイヤー切り替えリクエスト
type layerRequest struct {
	Layer string `json:"layer" binding:"required"`
}

// SetSelectedLayer POST /map/layer - 表示レイヤーの切り替え
func (h *MapHandler) SetSelectedLayer(c *gin.Context) {
	var req layerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	if err := h.mapUseCase.SetSelectedLayer(req.Layer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, h.mapUseCase.ViewState())
}

// GetUserActivity GET /users/:id/active - 期間内の投稿有無を確認するゲーティング用エンドポイント
func (h *MapHandler) GetUserActivity(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "User ID is required",
		})
		return
	}

	window := defaultActivityWindow
	if hours := c.Query("window_hours"); hours != "" {
		parsed, err := strconv.Atoi(hours)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_parameter",
				"message": "Invalid window_hours value",
			})
			return
		}
		window = time.Duration(parsed) * time.Hour
	}

	active, err := h.postsRepo.HasPostedWithinWindow(c.Request.Context(), userID, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to check activity: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"active":  active,
	})
}
