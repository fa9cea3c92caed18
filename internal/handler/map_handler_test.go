package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FriendMap-App/internal/domain/model"
)

// stubUseCase ハンドラーテスト用の固定状態ユースケース
type stubUseCase struct {
	state model.ViewState
}

func (s *stubUseCase) Run(ctx context.Context)        {}
func (s *stubUseCase) ViewState() model.ViewState      { return s.state }
func (s *stubUseCase) Subscribe() (<-chan model.ViewState, func()) {
	ch := make(chan model.ViewState)
	return ch, func() { close(ch) }
}
func (s *stubUseCase) SetFocusLocation(c *model.Coordinate) { s.state.FocusLocation = c }
func (s *stubUseCase) SetSelectedLayer(layer string) error {
	if layer != model.LayerPosts && layer != model.LayerDirectory {
		return assert.AnError
	}
	s.state.SelectedLayer = layer
	return nil
}
func (s *stubUseCase) ShowSnackbar(message string) { s.state.SnackbarMessage = message }

// stubPostsRepo アクティビティ判定を固定で返す投稿リポジトリ
type stubPostsRepo struct {
	active bool
}

func (s *stubPostsRepo) ObserveRecentPosts(ctx context.Context, ownerIDs []string) (<-chan []model.PostItem, error) {
	ch := make(chan []model.PostItem)
	close(ch)
	return ch, nil
}

func (s *stubPostsRepo) HasPostedWithinWindow(ctx context.Context, ownerID string, window time.Duration) (bool, error) {
	return s.active, nil
}

func markerAt(id string, lat, lng float64) model.ResolvedMarker {
	c := model.Coordinate{Latitude: lat, Longitude: lng, Label: "test"}
	return model.ResolvedMarker{
		Item:             model.PostItem{ID: id, AuthorID: id, Coordinate: c},
		RenderCoordinate: c,
		GroupSize:        1,
	}
}

func setupRouter(state model.ViewState, active bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMapHandler(&stubUseCase{state: state}, &stubPostsRepo{active: active})

	router := gin.New()
	router.GET("/map/state", h.GetMapState)
	router.POST("/map/layer", h.SetSelectedLayer)
	router.GET("/users/:id/active", h.GetUserActivity)
	return router
}

// TestGetMapState 状態取得とbbox絞り込みを確認する
func TestGetMapState(t *testing.T) {
	state := model.InitialViewState()
	state.IsLoading = false
	state.Posts = []model.ResolvedMarker{
		markerAt("in", 46.5, 6.6),
		markerAt("out", 35.0, 139.0),
	}
	router := setupRouter(state, false)

	t.Run("bboxなしで全件返す", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/map/state", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"in"`)
		assert.Contains(t, w.Body.String(), `"out"`)
	})

	t.Run("bboxでビューポート内に絞り込む", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/map/state?bbox=6.4,46.4,6.8,46.6", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"in"`)
		assert.NotContains(t, w.Body.String(), `"out"`)
	})

	t.Run("不正なbboxは400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/map/state?bbox=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestSetSelectedLayer レイヤー切り替えのバリデーションを確認する
func TestSetSelectedLayer(t *testing.T) {
	router := setupRouter(model.InitialViewState(), false)

	t.Run("正常なレイヤー", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/map/layer", strings.NewReader(`{"layer":"directory"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("不明なレイヤーは400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/map/layer", strings.NewReader(`{"layer":"satellite"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestGetUserActivity アクティビティゲートのエンドポイントを確認する
func TestGetUserActivity(t *testing.T) {
	router := setupRouter(model.InitialViewState(), true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/u1/active?window_hours=12", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":true`)

	t.Run("不正なwindow_hoursは400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/u1/active?window_hours=-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
