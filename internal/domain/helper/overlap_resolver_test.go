package helper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"FriendMap-App/internal/domain/model"
)

// maxOffsetMeters 散らし半径の上限（30m強のオフセットに余裕を持たせた検証値）
const maxOffsetMeters = 50.0

func postAt(id, author string, lat, lng float64) model.PostItem {
	return model.PostItem{
		ID:         id,
		AuthorID:   author,
		AuthorName: author,
		Coordinate: model.Coordinate{Latitude: lat, Longitude: lng, Label: "test"},
	}
}

// TestResolveOverlapsSingleItems 重なりのないアイテムは座標がそのまま使われることを確認する
func TestResolveOverlapsSingleItems(t *testing.T) {
	posts := []model.PostItem{
		postAt("p1", "u1", 46.5197, 6.6323),
		postAt("p2", "u2", 47.0, 7.0),
	}

	markers := ResolvePostOverlaps(posts)
	assert.Len(t, markers, 2)

	for i, marker := range markers {
		assert.Equal(t, posts[i].Coordinate, marker.RenderCoordinate)
		assert.Equal(t, 1, marker.GroupSize)
	}
}

// TestResolveOverlapsCoincidentGroup 同一座標のグループが円形に散らされることを確認する
func TestResolveOverlapsCoincidentGroup(t *testing.T) {
	posts := []model.PostItem{
		postAt("p1", "u1", 46.5197, 6.6323),
		postAt("p2", "u2", 46.5197, 6.6323),
		postAt("p3", "u3", 47.0, 7.0),
	}

	markers := ResolvePostOverlaps(posts)
	assert.Len(t, markers, 3)

	t.Run("グループサイズが正しい", func(t *testing.T) {
		assert.Equal(t, 2, markers[0].GroupSize)
		assert.Equal(t, 2, markers[1].GroupSize)
		assert.Equal(t, 1, markers[2].GroupSize)
	})

	t.Run("描画座標が互いに異なる", func(t *testing.T) {
		assert.NotEqual(t, markers[0].RenderCoordinate, markers[1].RenderCoordinate)
	})

	t.Run("オフセットが上限内に収まる", func(t *testing.T) {
		for _, marker := range markers[:2] {
			distance := DistanceMeters(marker.Item.Location(), marker.RenderCoordinate)
			assert.LessOrEqual(t, distance, maxOffsetMeters)
			// 0.0006度以内の移動であること
			assert.LessOrEqual(t, math.Abs(marker.RenderCoordinate.Latitude-46.5197), 0.0006)
			assert.LessOrEqual(t, math.Abs(marker.RenderCoordinate.Longitude-6.6323), 0.0006)
		}
	})

	t.Run("孤立したアイテムは動かない", func(t *testing.T) {
		assert.Equal(t, posts[2].Coordinate, markers[2].RenderCoordinate)
	})
}

// TestResolveOverlapsPairwiseDistinct 大きなグループでも描画座標が全て異なることを確認する
func TestResolveOverlapsPairwiseDistinct(t *testing.T) {
	const n = 12
	posts := make([]model.PostItem, n)
	for i := range posts {
		posts[i] = postAt(string(rune('a'+i)), "u", 35.6586, 139.7454)
	}

	markers := ResolvePostOverlaps(posts)
	seen := make(map[string]bool)
	for _, marker := range markers {
		key := coordinateKey(marker.RenderCoordinate)
		assert.False(t, seen[key], "描画座標が重複: %v", marker.RenderCoordinate)
		seen[key] = true
		assert.Equal(t, n, marker.GroupSize)
	}
}

// TestResolveOverlapsOrderPreserving 入力順がそのまま出力順になることを確認する
func TestResolveOverlapsOrderPreserving(t *testing.T) {
	posts := []model.PostItem{
		postAt("p3", "u3", 46.0, 6.0),
		postAt("p1", "u1", 46.0, 6.0),
		postAt("p2", "u2", 47.0, 7.0),
	}

	markers := ResolvePostOverlaps(posts)
	assert.Equal(t, "p3", markers[0].Item.StableID())
	assert.Equal(t, "p1", markers[1].Item.StableID())
	assert.Equal(t, "p2", markers[2].Item.StableID())
}

// TestResolveOverlapsPolarLatitude 極点の緯度でも発散しないことを確認する
func TestResolveOverlapsPolarLatitude(t *testing.T) {
	posts := []model.PostItem{
		postAt("p1", "u1", 90.0, 0.0),
		postAt("p2", "u2", 90.0, 0.0),
	}

	markers := ResolvePostOverlaps(posts)
	for _, marker := range markers {
		assert.False(t, math.IsNaN(marker.RenderCoordinate.Latitude), "緯度がNaN")
		assert.False(t, math.IsNaN(marker.RenderCoordinate.Longitude), "経度がNaN")
		assert.False(t, math.IsInf(marker.RenderCoordinate.Longitude, 0), "経度が発散")
	}
}

// TestResolveOverlapsEmptyInput 空入力で空出力になることを確認する
func TestResolveOverlapsEmptyInput(t *testing.T) {
	markers := ResolveOverlaps(nil)
	assert.Empty(t, markers)
}

// TestResolveOverlapsAfterFilter 無効座標をフィルタしてから解決する流れを確認する
func TestResolveOverlapsAfterFilter(t *testing.T) {
	posts := []model.PostItem{
		{ID: "p1", AuthorID: "u1", Coordinate: model.ZeroCoordinate},
		postAt("p2", "u2", 47.0, 7.0),
	}

	markers := ResolvePostOverlaps(model.FilterValidPosts(posts))
	assert.Len(t, markers, 1)
	assert.Equal(t, "p2", markers[0].Item.StableID())
	assert.True(t, markers[0].Item.Location().IsValid())
}
