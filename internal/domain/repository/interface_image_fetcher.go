package repository

import "context"

// ImageFetcher アバター画像の非同期取得を提供するインターフェース
// 画像が存在しない場合は (nil, nil) を返す（エラーではなく「不在」として扱う）
type ImageFetcher interface {
	FetchAvatar(ctx context.Context, ownerID string) ([]byte, error)
}
