package test

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	domainrepo "FriendMap-App/internal/domain/repository"
	"FriendMap-App/internal/infrastructure/database"
	"FriendMap-App/internal/infrastructure/firestore"
	repoimpl "FriendMap-App/internal/repository"
)

// setupTestEnvironment .envを読み込んでテスト環境を整える
func setupTestEnvironment() error {
	// .envが無い場合はシステム環境変数をそのまま使う
	_ = godotenv.Load("../.env")
	return nil
}

// setupFirestoreRepositories Firestore接続のリポジトリ一式をセットアップする
// FIRESTORE_PROJECT_IDが無い場合は (nil, nil, nil, "") を返し、呼び出し側でスキップする
func setupFirestoreRepositories(ctx context.Context) (domainrepo.AccountRepository, domainrepo.PostsRepository, func(), string) {
	if err := setupTestEnvironment(); err != nil {
		return nil, nil, nil, ""
	}

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		return nil, nil, nil, ""
	}

	client, err := firestore.NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, nil, nil, ""
	}

	cleanup := func() { client.Close() }
	return repoimpl.NewFirestoreAccountRepository(client.GetClient()),
		repoimpl.NewFirestorePostsRepository(client.GetClient()),
		cleanup, projectID
}

// setupPostgresRepositories PostgreSQL接続のリポジトリ一式をセットアップする（リトライ付き）
func setupPostgresRepositories() (domainrepo.AccountRepository, domainrepo.PostsRepository, func(), error) {
	if err := setupTestEnvironment(); err != nil {
		return nil, nil, nil, err
	}

	client, err := database.NewPostgreSQLClientWithRetry(5, 1*time.Second)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() { client.Close() }
	return repoimpl.NewPostgresAccountRepository(client),
		repoimpl.NewPostgresPostsRepository(client),
		cleanup, nil
}
