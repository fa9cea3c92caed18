package repository

import (
	"context"
	"fmt"
	"log"
	"strings"

	"FriendMap-App/internal/database"
	"FriendMap-App/internal/domain/repository"
)

// avatarBucket アバター画像を保存するストレージバケット名
const avatarBucket = "avatars"

// StorageImageFetcher Supabase Storageからアバター画像を取得するフェッチャー
type StorageImageFetcher struct {
	client *database.SupabaseClient
}

// NewStorageImageFetcher 新しいStorageImageFetcherインスタンスを作成
func NewStorageImageFetcher(client *database.SupabaseClient) repository.ImageFetcher {
	return &StorageImageFetcher{
		client: client,
	}
}

// FetchAvatar アバター画像をダウンロードする
// 画像が存在しない場合は (nil, nil) を返す（「不在」であってエラーではない）
func (f *StorageImageFetcher) FetchAvatar(ctx context.Context, ownerID string) ([]byte, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("所有者IDが空です")
	}

	path := fmt.Sprintf("%s.jpg", ownerID)
	data, err := f.client.GetClient().Storage.DownloadFile(avatarBucket, path)
	if err != nil {
		// ストレージのエラーレスポンスから「不在」を判別する
		message := err.Error()
		if strings.Contains(message, "404") || strings.Contains(message, "not_found") || strings.Contains(message, "Object not found") {
			log.Printf("📷 アバター未登録: %s", ownerID)
			return nil, nil
		}
		return nil, fmt.Errorf("アバター画像のダウンロードに失敗: %w", err)
	}

	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
