package model

// Coordinate 緯度経度と地名ラベルを持つ位置情報
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}

// ZeroCoordinate 位置未設定を表すセンチネル値（lat=0, lng=0, label=""）
// 実在の位置として扱ってはならない
var ZeroCoordinate = Coordinate{}

// IsValid 座標が有効かどうかを判定する（センチネル値と一致する場合のみ無効）
func (c Coordinate) IsValid() bool {
	return c != ZeroCoordinate
}

// Equals 2つの座標が完全に一致するかを判定する
func (c Coordinate) Equals(other Coordinate) bool {
	return c.Latitude == other.Latitude && c.Longitude == other.Longitude
}
