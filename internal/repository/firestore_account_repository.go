package repository

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
)

// accountsCollection アカウントドキュメントのコレクション名
const accountsCollection = "accounts"

// firestoreAccount Firestoreのアカウントドキュメント
type firestoreAccount struct {
	Name          string   `firestore:"name"`
	Latitude      float64  `firestore:"latitude"`
	Longitude     float64  `firestore:"longitude"`
	LocationLabel string   `firestore:"location_label"`
	FriendIDs     []string `firestore:"friend_ids"`
	IsPrivate     bool     `firestore:"is_private"`
}

// FirestoreAccountRepository Firestoreのスナップショットリスナーを使用したアカウントリポジトリ
type FirestoreAccountRepository struct {
	client *firestore.Client
}

// NewFirestoreAccountRepository 新しいFirestoreAccountRepositoryインスタンスを作成
func NewFirestoreAccountRepository(client *firestore.Client) repository.AccountRepository {
	return &FirestoreAccountRepository{
		client: client,
	}
}

// ObserveAccount 指定IDのアカウントドキュメントを監視する
// リモート変更のたびにスナップショット全体を配信し、エラーはAccountEvent.Errとして流す
func (r *FirestoreAccountRepository) ObserveAccount(ctx context.Context, id string) (<-chan model.AccountEvent, error) {
	if id == "" {
		return nil, fmt.Errorf("アカウントIDが空です")
	}

	events := make(chan model.AccountEvent, 1)
	iter := r.client.Collection(accountsCollection).Doc(id).Snapshots(ctx)

	go func() {
		defer close(events)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				log.Printf("❌ アカウントストリームのエラー: %s: %v", id, err)
				deliverAccountEvent(ctx, events, model.AccountEvent{
					Err: fmt.Errorf("アカウントストリームのエラー: %w", err),
				})
				return
			}

			if !snap.Exists() {
				deliverAccountEvent(ctx, events, model.AccountEvent{
					Err: fmt.Errorf("アカウントが見つかりません: %s", id),
				})
				continue
			}

			var data firestoreAccount
			if err := snap.DataTo(&data); err != nil {
				deliverAccountEvent(ctx, events, model.AccountEvent{
					Err: fmt.Errorf("アカウントデータの変換に失敗: %w", err),
				})
				continue
			}

			deliverAccountEvent(ctx, events, model.AccountEvent{
				Snapshot: data.toSnapshot(id),
			})
		}
	}()

	return events, nil
}

// ObservePublicDirectory 非公開でないアカウント全体を公開ディレクトリとして監視する
func (r *FirestoreAccountRepository) ObservePublicDirectory(ctx context.Context) (<-chan []model.ProfileItem, error) {
	profiles := make(chan []model.ProfileItem, 1)
	query := r.client.Collection(accountsCollection).Where("is_private", "==", false)
	iter := query.Snapshots(ctx)

	go func() {
		defer close(profiles)
		defer iter.Stop()

		for {
			snap, err := iter.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				// ディレクトリはグローバルストリームなので、エラー時は空を配信して閉じる
				log.Printf("❌ 公開ディレクトリストリームのエラー: %v", err)
				return
			}

			items := make([]model.ProfileItem, 0)
			docs := snap.Documents
			for {
				doc, err := docs.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					log.Printf("⚠️ ディレクトリドキュメントの読み取りに失敗: %v", err)
					break
				}
				var data firestoreAccount
				if err := doc.DataTo(&data); err != nil {
					log.Printf("⚠️ プロフィールの変換に失敗: %s: %v", doc.Ref.ID, err)
					continue
				}
				items = append(items, model.ProfileItem{
					ID:   doc.Ref.ID,
					Name: data.Name,
					Coordinate: model.Coordinate{
						Latitude:  data.Latitude,
						Longitude: data.Longitude,
						Label:     data.LocationLabel,
					},
					IsPrivate: data.IsPrivate,
				})
			}

			select {
			case profiles <- items:
			case <-ctx.Done():
				return
			}
		}
	}()

	return profiles, nil
}

// toSnapshot FirestoreドキュメントをAccountSnapshotに変換する
func (d *firestoreAccount) toSnapshot(id string) *model.AccountSnapshot {
	friendSet := make(map[string]struct{}, len(d.FriendIDs))
	for _, friendID := range d.FriendIDs {
		friendSet[friendID] = struct{}{}
	}

	return &model.AccountSnapshot{
		ID: id,
		LocatedAt: model.Coordinate{
			Latitude:  d.Latitude,
			Longitude: d.Longitude,
			Label:     d.LocationLabel,
		},
		FriendIDs: friendSet,
		IsPrivate: d.IsPrivate,
	}
}

// deliverAccountEvent ctxのキャンセルを尊重しつつイベントを配信する
func deliverAccountEvent(ctx context.Context, ch chan<- model.AccountEvent, event model.AccountEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}
