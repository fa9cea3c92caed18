package helper

import (
	"fmt"
	"math"

	"FriendMap-App/internal/domain/model"
)

// OffsetDegrees 同一座標のマーカーを円形に散らすときの角距離（度）
// 赤道付近で30メートル強に相当する
const OffsetDegrees = 0.0003

// maxCosLatitude 緯度±90°でcosが0になり除算できなくなるため、
// 経度補正に使う緯度を±89.99999°にクランプする
const maxCosLatitude = 89.99999

// ResolveOverlaps 同一座標のアイテム群に描画位置を割り当てる
// 入力順を保持し、1アイテムにつき必ず1マーカーを返す
func ResolveOverlaps(items []model.LocatedItem) []model.ResolvedMarker {
	// 完全一致の座標キーでグルーピング（許容誤差なし）
	groups := make(map[string][]int)
	order := make([]string, 0, len(items))
	for i, item := range items {
		key := coordinateKey(item.Location())
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	markers := make([]model.ResolvedMarker, len(items))
	for _, key := range order {
		indices := groups[key]
		n := len(indices)
		for pos, idx := range indices {
			item := items[idx]
			markers[idx] = model.ResolvedMarker{
				Item:             item,
				RenderCoordinate: offsetCoordinate(item.Location(), pos, n),
				GroupSize:        n,
			}
		}
	}
	return markers
}

// offsetCoordinate グループ内の位置に応じた円形オフセットを適用する
// グループサイズ1の場合は元の座標をそのまま返す
func offsetCoordinate(c model.Coordinate, index, groupSize int) model.Coordinate {
	if groupSize <= 1 {
		return c
	}

	theta := 2 * math.Pi * float64(index) / float64(groupSize)
	latOffset := OffsetDegrees * math.Sin(theta)

	// 経度は高緯度ほど1度あたりの実距離が縮むため、cos(緯度)で補正する
	lat := clampLatitude(c.Latitude)
	lonOffset := OffsetDegrees * math.Cos(theta) / math.Cos(lat*math.Pi/180)

	return model.Coordinate{
		Latitude:  c.Latitude + latOffset,
		Longitude: c.Longitude + lonOffset,
		Label:     c.Label,
	}
}

// clampLatitude 極点付近の緯度をcos計算可能な範囲に収める
func clampLatitude(lat float64) float64 {
	if lat > maxCosLatitude {
		return maxCosLatitude
	}
	if lat < -maxCosLatitude {
		return -maxCosLatitude
	}
	return lat
}

// coordinateKey グルーピング用の完全一致キーを生成する
func coordinateKey(c model.Coordinate) string {
	return fmt.Sprintf("%v,%v", c.Latitude, c.Longitude)
}
