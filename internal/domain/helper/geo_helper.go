package helper

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"FriendMap-App/internal/domain/model"
)

// CoordinateToPoint model.Coordinate を orb.Point に変換する
func CoordinateToPoint(c model.Coordinate) orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// PointToCoordinate orb.Point を model.Coordinate に変換する
func PointToCoordinate(p orb.Point, label string) model.Coordinate {
	return model.Coordinate{
		Latitude:  p.Lat(),
		Longitude: p.Lon(),
		Label:     label,
	}
}

// DistanceMeters 2座標間の距離をメートルで返す
func DistanceMeters(a, b model.Coordinate) float64 {
	return geo.Distance(CoordinateToPoint(a), CoordinateToPoint(b))
}

// ParseBoundingBox "min_lng,min_lat,max_lng,max_lat" 形式の文字列を orb.Bound に変換する
func ParseBoundingBox(bbox string) (orb.Bound, error) {
	coords := strings.Split(bbox, ",")
	if len(coords) != 4 {
		return orb.Bound{}, fmt.Errorf("bboxは4つの座標が必要です: min_lng,min_lat,max_lng,max_lat")
	}

	values := make([]float64, 4)
	for i, coord := range coords {
		v, err := strconv.ParseFloat(strings.TrimSpace(coord), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("bboxの座標の解析に失敗: %w", err)
		}
		values[i] = v
	}

	bound := orb.Bound{
		Min: orb.Point{values[0], values[1]},
		Max: orb.Point{values[2], values[3]},
	}

	// 順序が逆でも正しい境界ボックスになるよう拡張する
	bound = bound.Extend(orb.Point{values[0], values[1]}).Extend(orb.Point{values[2], values[3]})
	return bound, nil
}

// FilterMarkersInBound 境界ボックス内に描画位置があるマーカーのみを抽出する
func FilterMarkersInBound(markers []model.ResolvedMarker, bound orb.Bound) []model.ResolvedMarker {
	result := make([]model.ResolvedMarker, 0, len(markers))
	for _, marker := range markers {
		if bound.Contains(CoordinateToPoint(marker.RenderCoordinate)) {
			result = append(result, marker)
		}
	}
	return result
}
