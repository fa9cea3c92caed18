package model

import (
	"fmt"
	"strings"
)

// ResolvedMarker 重なり解消後の描画位置が確定したマーカー
// 上流の変化のたびに再計算される一時的なデータで、永続化はしない
type ResolvedMarker struct {
	Item             LocatedItem `json:"item"`
	RenderCoordinate Coordinate  `json:"render_coordinate"`
	GroupSize        int         `json:"group_size"`
}

// MarkerIconKind マーカーアイコンの種別
type MarkerIconKind string

const (
	IconMonogram MarkerIconKind = "monogram" // 表示名の頭文字によるフォールバック
	IconAvatar   MarkerIconKind = "avatar"   // 取得済みアバター画像
	IconCluster  MarkerIconKind = "cluster"  // 件数バッジ
)

// ClusterLabelMax 件数バッジ表示の上限（これを超えると "999+" 表示）
const ClusterLabelMax = 999

// MarkerIcon マーカーに表示するアイコンの内容
type MarkerIcon struct {
	Kind     MarkerIconKind `json:"kind"`
	Monogram string         `json:"monogram,omitempty"`
	Image    []byte         `json:"-"`
	Label    string         `json:"label,omitempty"`
}

// MonogramOf 表示名の先頭1文字を大文字化したモノグラムを返す（空文字の場合は空のまま）
func MonogramOf(displayName string) string {
	runes := []rune(displayName)
	if len(runes) == 0 {
		return ""
	}
	return strings.ToUpper(string(runes[0]))
}

// MonogramIcon 表示名の頭文字から生成するフォールバックアイコン
func MonogramIcon(displayName string) MarkerIcon {
	return MarkerIcon{Kind: IconMonogram, Monogram: MonogramOf(displayName)}
}

// AvatarIcon 取得済みアバター画像のアイコン
func AvatarIcon(image []byte) MarkerIcon {
	return MarkerIcon{Kind: IconAvatar, Image: image}
}

// ClusterIcon グループ件数を表示するバッジアイコン
func ClusterIcon(groupSize int) MarkerIcon {
	label := fmt.Sprintf("%d", groupSize)
	if groupSize > ClusterLabelMax {
		label = fmt.Sprintf("%d+", ClusterLabelMax)
	}
	return MarkerIcon{Kind: IconCluster, Label: label}
}
