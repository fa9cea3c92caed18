package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FriendMap-App/internal/domain/model"
)

// TestParseBoundingBox bbox文字列の解析を確認する
func TestParseBoundingBox(t *testing.T) {
	t.Run("正常な4座標", func(t *testing.T) {
		bound, err := ParseBoundingBox("6.5,46.4,6.7,46.6")
		assert.NoError(t, err)
		assert.InDelta(t, 6.5, bound.Min.Lon(), 1e-9)
		assert.InDelta(t, 46.4, bound.Min.Lat(), 1e-9)
		assert.InDelta(t, 6.7, bound.Max.Lon(), 1e-9)
		assert.InDelta(t, 46.6, bound.Max.Lat(), 1e-9)
	})

	t.Run("座標数が足りない", func(t *testing.T) {
		_, err := ParseBoundingBox("6.5,46.4,6.7")
		assert.Error(t, err)
	})

	t.Run("数値でない座標", func(t *testing.T) {
		_, err := ParseBoundingBox("a,b,c,d")
		assert.Error(t, err)
	})
}

// TestCoordinatePointConversion orb.Pointとの変換で緯度経度の軸が入れ替わらないことを確認する
// （orb.Pointは経度・緯度の順で保持するため取り違えやすい）
func TestCoordinatePointConversion(t *testing.T) {
	lausanne := model.Coordinate{Latitude: 46.5197, Longitude: 6.6323, Label: "ローザンヌ"}

	point := CoordinateToPoint(lausanne)
	assert.InDelta(t, 6.6323, point.Lon(), 1e-9)
	assert.InDelta(t, 46.5197, point.Lat(), 1e-9)

	back := PointToCoordinate(point, "ローザンヌ")
	assert.InDelta(t, 46.5197, back.Latitude, 1e-9)
	assert.InDelta(t, 6.6323, back.Longitude, 1e-9)
	assert.Equal(t, "ローザンヌ", back.Label)
	assert.True(t, back.Equals(lausanne))
}

// TestFilterMarkersInBound ビューポートで絞り込めることを確認する
func TestFilterMarkersInBound(t *testing.T) {
	inside := model.ResolvedMarker{
		Item:             model.PostItem{ID: "in", Coordinate: model.Coordinate{Latitude: 46.5, Longitude: 6.6}},
		RenderCoordinate: model.Coordinate{Latitude: 46.5, Longitude: 6.6},
		GroupSize:        1,
	}
	outside := model.ResolvedMarker{
		Item:             model.PostItem{ID: "out", Coordinate: model.Coordinate{Latitude: 35.0, Longitude: 139.0}},
		RenderCoordinate: model.Coordinate{Latitude: 35.0, Longitude: 139.0},
		GroupSize:        1,
	}

	bound, err := ParseBoundingBox("6.4,46.4,6.8,46.6")
	assert.NoError(t, err)

	filtered := FilterMarkersInBound([]model.ResolvedMarker{inside, outside}, bound)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "in", filtered[0].Item.StableID())
}

// TestDistanceMeters 既知の2点間の距離がおおよそ一致することを確認する
func TestDistanceMeters(t *testing.T) {
	lausanne := model.Coordinate{Latitude: 46.5197, Longitude: 6.6323}
	geneva := model.Coordinate{Latitude: 46.2044, Longitude: 6.1432}

	distance := DistanceMeters(lausanne, geneva)
	// ローザンヌ〜ジュネーブは直線で約50km
	assert.InDelta(t, 50000, distance, 5000)
}
