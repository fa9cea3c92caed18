package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
	"FriendMap-App/internal/infrastructure/database"
)

// PostgresPostsRepository PostgreSQLをポーリングしてストリーム配信する投稿リポジトリ
// Firestoreが構成されていない環境向けのフォールバック実装
type PostgresPostsRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresPostsRepository 新しいPostgresPostsRepositoryインスタンスを作成
func NewPostgresPostsRepository(client *database.PostgreSQLClient) repository.PostsRepository {
	return &PostgresPostsRepository{
		client: client,
	}
}

// ObserveRecentPosts 指定した所有者集合の投稿をポーリング監視する
func (r *PostgresPostsRepository) ObserveRecentPosts(ctx context.Context, ownerIDs []string) (<-chan []model.PostItem, error) {
	if len(ownerIDs) == 0 {
		return nil, fmt.Errorf("購読対象の所有者が空です")
	}

	posts := make(chan []model.PostItem, 1)

	go func() {
		defer close(posts)
		ticker := time.NewTicker(directoryPollInterval)
		defer ticker.Stop()

		lastFingerprint := ""
		for {
			items, err := r.fetchPosts(ctx, ownerIDs)
			if err != nil {
				log.Printf("❌ 投稿の取得に失敗: %v", err)
				return
			}

			fingerprint := postsFingerprint(items)
			if fingerprint != lastFingerprint {
				lastFingerprint = fingerprint
				select {
				case posts <- items:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return posts, nil
}

// fetchPosts 指定した所有者集合の投稿を新しい順に取得する
func (r *PostgresPostsRepository) fetchPosts(ctx context.Context, ownerIDs []string) ([]model.PostItem, error) {
	query := `SELECT id, author_id, author_name, text, latitude, longitude, location_label
		FROM posts WHERE author_id = ANY($1) ORDER BY created_at DESC LIMIT $2`

	rows, err := r.client.DB.QueryContext(ctx, query, pq.Array(ownerIDs), recentPostsLimit)
	if err != nil {
		return nil, fmt.Errorf("投稿データの取得失敗: %w", err)
	}
	defer rows.Close()

	items := make([]model.PostItem, 0)
	for rows.Next() {
		var item model.PostItem
		var latitude, longitude float64
		var label string
		if err := rows.Scan(&item.ID, &item.AuthorID, &item.AuthorName, &item.Text, &latitude, &longitude, &label); err != nil {
			return nil, fmt.Errorf("投稿行の読み取り失敗: %w", err)
		}
		item.Coordinate = model.Coordinate{Latitude: latitude, Longitude: longitude, Label: label}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投稿の走査失敗: %w", err)
	}
	return items, nil
}

// HasPostedWithinWindow 指定ユーザーが期間内に投稿したかを判定する
func (r *PostgresPostsRepository) HasPostedWithinWindow(ctx context.Context, ownerID string, window time.Duration) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM posts WHERE author_id = $1 AND created_at > $2)`

	var exists bool
	cutoff := time.Now().Add(-window)
	if err := r.client.DB.QueryRowContext(ctx, query, ownerID, cutoff).Scan(&exists); err != nil {
		return false, fmt.Errorf("投稿履歴の確認に失敗: %w", err)
	}
	return exists, nil
}

// postsFingerprint 配信要否を判定するための投稿一覧の指紋
func postsFingerprint(items []model.PostItem) string {
	fingerprint := ""
	for _, item := range items {
		fingerprint += fmt.Sprintf("%s|%v|%v;", item.ID, item.Coordinate.Latitude, item.Coordinate.Longitude)
	}
	return fingerprint
}
