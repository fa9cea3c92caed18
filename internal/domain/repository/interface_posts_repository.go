package repository

import (
	"context"
	"time"

	"FriendMap-App/internal/domain/model"
)

// PostsRepository 位置情報付き投稿の監視ストリームを提供するリポジトリ
type PostsRepository interface {
	// ObserveRecentPosts 指定した所有者集合の最近の投稿を監視する
	// 配信は毎回、現時点の投稿一覧の全体置き換え
	ObserveRecentPosts(ctx context.Context, ownerIDs []string) (<-chan []model.PostItem, error)

	// HasPostedWithinWindow 指定ユーザーが期間内に投稿したかを判定する（外部のゲーティング機能用）
	HasPostedWithinWindow(ctx context.Context, ownerID string, window time.Duration) (bool, error)
}
