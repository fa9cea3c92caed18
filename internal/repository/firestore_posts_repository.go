package repository

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
)

// postsCollection 投稿ドキュメントのコレクション名
const postsCollection = "posts"

// ownerChunkSize Firestoreのin句が受け付ける値の上限
const ownerChunkSize = 30

// recentPostsLimit 1チャンクあたりの取得上限
const recentPostsLimit = 100

// firestorePost Firestoreの投稿ドキュメント
type firestorePost struct {
	AuthorID      string    `firestore:"author_id"`
	AuthorName    string    `firestore:"author_name"`
	Text          string    `firestore:"text"`
	Latitude      float64   `firestore:"latitude"`
	Longitude     float64   `firestore:"longitude"`
	LocationLabel string    `firestore:"location_label"`
	CreatedAt     time.Time `firestore:"created_at"`
}

// FirestorePostsRepository Firestoreのスナップショットリスナーを使用した投稿リポジトリ
type FirestorePostsRepository struct {
	client *firestore.Client
}

// NewFirestorePostsRepository 新しいFirestorePostsRepositoryインスタンスを作成
func NewFirestorePostsRepository(client *firestore.Client) repository.PostsRepository {
	return &FirestorePostsRepository{
		client: client,
	}
}

// chunkUpdate チャンク単位の投稿一覧更新
type chunkUpdate struct {
	index int
	items []model.PostItem
}

// ObserveRecentPosts 指定した所有者集合の投稿を監視する
// Firestoreのin句は30件までのため、所有者をチャンクに分割して
// チャンクごとのリスナーを張り、どれかが更新されるたびに全チャンクの連結を配信する
func (r *FirestorePostsRepository) ObserveRecentPosts(ctx context.Context, ownerIDs []string) (<-chan []model.PostItem, error) {
	if len(ownerIDs) == 0 {
		return nil, fmt.Errorf("購読対象の所有者が空です")
	}

	chunks := chunkOwners(ownerIDs, ownerChunkSize)
	updates := make(chan chunkUpdate, len(chunks))

	for i, chunk := range chunks {
		query := r.client.Collection(postsCollection).
			Where("author_id", "in", chunk).
			OrderBy("created_at", firestore.Desc).
			Limit(recentPostsLimit)
		go r.watchChunk(ctx, i, query, updates)
	}

	posts := make(chan []model.PostItem, 1)

	// チャンクごとの最新状態を合流させて連結を配信する
	go func() {
		defer close(posts)
		latest := make(map[int][]model.PostItem, len(chunks))

		for {
			select {
			case <-ctx.Done():
				return
			case update := <-updates:
				latest[update.index] = update.items
				merged := mergeChunks(latest)
				select {
				case posts <- merged:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return posts, nil
}

// watchChunk 1チャンク分のスナップショットリスナーを回す
func (r *FirestorePostsRepository) watchChunk(ctx context.Context, index int, query firestore.Query, updates chan<- chunkUpdate) {
	iter := query.Snapshots(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled || ctx.Err() != nil {
				return
			}
			log.Printf("❌ 投稿ストリームのエラー (chunk %d): %v", index, err)
			return
		}

		items := make([]model.PostItem, 0)
		docs := snap.Documents
		for {
			doc, err := docs.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				log.Printf("⚠️ 投稿ドキュメントの読み取りに失敗: %v", err)
				break
			}
			var data firestorePost
			if err := doc.DataTo(&data); err != nil {
				log.Printf("⚠️ 投稿データの変換に失敗: %s: %v", doc.Ref.ID, err)
				continue
			}
			items = append(items, model.PostItem{
				ID:         doc.Ref.ID,
				AuthorID:   data.AuthorID,
				AuthorName: data.AuthorName,
				Text:       data.Text,
				Coordinate: model.Coordinate{
					Latitude:  data.Latitude,
					Longitude: data.Longitude,
					Label:     data.LocationLabel,
				},
			})
		}

		select {
		case updates <- chunkUpdate{index: index, items: items}:
		case <-ctx.Done():
			return
		}
	}
}

// HasPostedWithinWindow 指定ユーザーが期間内に投稿したかを判定する
func (r *FirestorePostsRepository) HasPostedWithinWindow(ctx context.Context, ownerID string, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window)
	query := r.client.Collection(postsCollection).
		Where("author_id", "==", ownerID).
		Where("created_at", ">", cutoff).
		Limit(1)

	docs := query.Documents(ctx)
	defer docs.Stop()

	_, err := docs.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("投稿履歴の確認に失敗: %w", err)
	}
	return true, nil
}

// chunkOwners 所有者ID一覧をin句の上限に合わせて分割する
func chunkOwners(ownerIDs []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ownerIDs); start += size {
		end := start + size
		if end > len(ownerIDs) {
			end = len(ownerIDs)
		}
		chunks = append(chunks, ownerIDs[start:end])
	}
	return chunks
}

// mergeChunks チャンク番号順に最新の投稿一覧を連結し、全体の上限件数に丸める
func mergeChunks(latest map[int][]model.PostItem) []model.PostItem {
	indices := make([]int, 0, len(latest))
	for index := range latest {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	merged := make([]model.PostItem, 0)
	for _, index := range indices {
		merged = append(merged, latest[index]...)
	}
	if len(merged) > recentPostsLimit {
		merged = merged[:recentPostsLimit]
	}
	return merged
}
