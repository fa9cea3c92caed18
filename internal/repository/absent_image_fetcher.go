package repository

import (
	"context"

	"FriendMap-App/internal/domain/repository"
)

// AbsentImageFetcher 常に「不在」を返すフェッチャー
// ストレージ未構成の環境でモノグラム表示のみにフォールバックするために使う
type AbsentImageFetcher struct{}

// NewAbsentImageFetcher 新しいAbsentImageFetcherインスタンスを作成
func NewAbsentImageFetcher() repository.ImageFetcher {
	return &AbsentImageFetcher{}
}

// FetchAvatar 常に不在を返す
func (f *AbsentImageFetcher) FetchAvatar(ctx context.Context, ownerID string) ([]byte, error) {
	return nil, nil
}
