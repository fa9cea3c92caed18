package repository

import "FriendMap-App/internal/domain/model"

// MarkerRef 設置済みマーカーへの不透明な参照
// アイコン更新の送り先としてのみ使用し、状態の読み取りには使わない
type MarkerRef interface{}

// MarkerPort 地図ウィジェットへのマーカー設置・更新の出口
// ウィジェット内部（カメラ・タイル描画・ジェスチャ）はこのポートの向こう側
type MarkerPort interface {
	// Place マーカーを設置し、後からアイコンを差し替えるための参照を返す
	Place(marker model.ResolvedMarker, icon model.MarkerIcon) MarkerRef

	// UpdateIcon 設置済みマーカーのアイコンを差し替える
	UpdateIcon(ref MarkerRef, icon model.MarkerIcon)

	// Remove マーカーを地図から取り除く
	Remove(ref MarkerRef)
}
