package test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"
)

// TestFirestoreAccountStream Firestoreのアカウント監視ストリームの統合テスト
func TestFirestoreAccountStream(t *testing.T) {
	log.Printf("🧪 Firestoreアカウントストリーム統合テスト開始")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	accountRepo, _, cleanup, projectID := setupFirestoreRepositories(ctx)
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_IDが設定されていません。統合テストをスキップします。")
	}
	defer cleanup()

	accountID := os.Getenv("TEST_ACCOUNT_ID")
	if accountID == "" {
		t.Skip("TEST_ACCOUNT_IDが設定されていません。統合テストをスキップします。")
	}

	t.Run("初回スナップショットの受信", func(t *testing.T) {
		events, err := accountRepo.ObserveAccount(ctx, accountID)
		if err != nil {
			t.Fatalf("アカウント購読に失敗: %v", err)
		}

		select {
		case event := <-events:
			if event.Err != nil {
				t.Fatalf("アカウントイベントがエラー: %v", event.Err)
			}
			if event.Snapshot == nil {
				t.Fatal("スナップショットがnilです")
			}
			if event.Snapshot.ID != accountID {
				t.Errorf("スナップショットのIDが想定外: got %s, want %s", event.Snapshot.ID, accountID)
			}
			log.Printf("✅ アカウントスナップショット受信: %s (友達%d人)",
				event.Snapshot.ID, len(event.Snapshot.FriendIDs))
		case <-ctx.Done():
			t.Fatal("スナップショットの受信がタイムアウトしました")
		}
	})

	t.Run("公開ディレクトリの受信", func(t *testing.T) {
		profiles, err := accountRepo.ObservePublicDirectory(ctx)
		if err != nil {
			t.Fatalf("公開ディレクトリの購読に失敗: %v", err)
		}

		select {
		case items := <-profiles:
			log.Printf("✅ 公開ディレクトリ受信: %d件", len(items))
			for _, item := range items {
				if item.IsPrivate {
					t.Errorf("非公開プロフィールがディレクトリに含まれています: %s", item.ID)
				}
			}
		case <-ctx.Done():
			t.Fatal("公開ディレクトリの受信がタイムアウトしました")
		}
	})
}

// TestFirestorePostsStream Firestoreの投稿監視ストリームの統合テスト
func TestFirestorePostsStream(t *testing.T) {
	log.Printf("🧪 Firestore投稿ストリーム統合テスト開始")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, postsRepo, cleanup, projectID := setupFirestoreRepositories(ctx)
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_IDが設定されていません。統合テストをスキップします。")
	}
	defer cleanup()

	accountID := os.Getenv("TEST_ACCOUNT_ID")
	if accountID == "" {
		t.Skip("TEST_ACCOUNT_IDが設定されていません。統合テストをスキップします。")
	}

	t.Run("投稿一覧の受信", func(t *testing.T) {
		posts, err := postsRepo.ObserveRecentPosts(ctx, []string{accountID})
		if err != nil {
			t.Fatalf("投稿購読に失敗: %v", err)
		}

		select {
		case items := <-posts:
			log.Printf("✅ 投稿一覧受信: %d件", len(items))
		case <-ctx.Done():
			t.Fatal("投稿一覧の受信がタイムアウトしました")
		}
	})

	t.Run("アクティビティ判定", func(t *testing.T) {
		active, err := postsRepo.HasPostedWithinWindow(ctx, accountID, 24*time.Hour)
		if err != nil {
			t.Fatalf("アクティビティ判定に失敗: %v", err)
		}
		log.Printf("✅ アクティビティ判定: %s active=%v", accountID, active)
	})
}
