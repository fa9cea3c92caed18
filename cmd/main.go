package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"FriendMap-App/internal/database"
	domainrepo "FriendMap-App/internal/domain/repository"
	"FriendMap-App/internal/handler"
	infradb "FriendMap-App/internal/infrastructure/database"
	fsinfra "FriendMap-App/internal/infrastructure/firestore"
	"FriendMap-App/internal/renderer"
	repoimpl "FriendMap-App/internal/repository"
	"FriendMap-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	ctx := context.Background()

	// データソースの選択: FirestoreまたはPostgreSQLフォールバック
	accountRepo, postsRepo, cleanup, err := buildRepositories(ctx)
	if err != nil {
		fmt.Println("⚠️  データソースが構成されていません:")
		fmt.Println("必要な環境変数: FIRESTORE_PROJECT_ID または DATABASE_URL")
		fmt.Println("\n.envファイルを作成するか、環境変数を設定してください")
		log.Fatalf("データソースの初期化失敗: %v", err)
	}
	defer cleanup()

	// アバター画像のフェッチャー（Supabase Storage、未構成ならモノグラムのみ）
	imageFetcher := buildImageFetcher()

	// マーカー描画とパイプラインの組み立て
	markerPort := renderer.NewMemoryMarkerPort()
	clusterRenderer := renderer.NewClusterRenderer(markerPort, imageFetcher)
	identityProvider := repoimpl.NewSessionIdentityProvider(os.Getenv("DEFAULT_IDENTITY"))
	mapUseCase := usecase.NewMapViewUseCase(identityProvider, accountRepo, postsRepo, clusterRenderer)

	go mapUseCase.Run(ctx)

	// HTTPルーティング
	router := gin.Default()
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "FriendMap-App"})
	})

	mapHandler := handler.NewMapHandler(mapUseCase, postsRepo)
	router.GET("/map/state", mapHandler.GetMapState)
	router.GET("/map/stream", mapHandler.StreamMapState)
	router.POST("/map/focus", mapHandler.SetFocusLocation)
	router.POST("/map/layer", mapHandler.SetSelectedLayer)
	router.GET("/users/:id/active", mapHandler.GetUserActivity)

	sessionHandler := handler.NewSessionHandler(identityProvider)
	router.POST("/session/identity", sessionHandler.SetIdentity)
	router.GET("/session/identity", sessionHandler.GetIdentity)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("FriendMap-App server starting on :%s...\n", port)
	log.Fatal(router.Run(":" + port))
}

// buildRepositories 環境変数からデータソースを選んでリポジトリを構築する
func buildRepositories(ctx context.Context) (domainrepo.AccountRepository, domainrepo.PostsRepository, func(), error) {
	if projectID := os.Getenv("FIRESTORE_PROJECT_ID"); projectID != "" {
		fmt.Println("Initializing Firestore client...")
		fsClient, err := fsinfra.NewFirestoreClient(ctx, projectID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("Firestoreクライアント初期化失敗: %w", err)
		}
		fmt.Println("✅ Firestore connection successful!")
		cleanup := func() { fsClient.Close() }
		return repoimpl.NewFirestoreAccountRepository(fsClient.GetClient()),
			repoimpl.NewFirestorePostsRepository(fsClient.GetClient()),
			cleanup, nil
	}

	if os.Getenv("DATABASE_URL") != "" {
		fmt.Println("Initializing PostgreSQL client...")
		pgClient, err := infradb.NewPostgreSQLClient()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("PostgreSQLクライアント初期化失敗: %w", err)
		}
		if err := pgClient.HealthCheck(); err != nil {
			return nil, nil, nil, fmt.Errorf("PostgreSQLヘルスチェック失敗: %w", err)
		}
		fmt.Println("✅ PostgreSQL connection successful!")
		cleanup := func() { pgClient.Close() }
		return repoimpl.NewPostgresAccountRepository(pgClient),
			repoimpl.NewPostgresPostsRepository(pgClient),
			cleanup, nil
	}

	return nil, nil, nil, fmt.Errorf("FIRESTORE_PROJECT_IDもDATABASE_URLも設定されていません")
}

// buildImageFetcher Supabase Storageのフェッチャーを構築する（未構成なら常に不在を返す）
func buildImageFetcher() domainrepo.ImageFetcher {
	if os.Getenv("SUPABASE_URL") == "" {
		fmt.Println("Warning: SUPABASE_URL not set, avatars will fall back to monograms")
		return repoimpl.NewAbsentImageFetcher()
	}

	fmt.Println("Initializing Supabase client...")
	supabaseClient, err := database.NewSupabaseClient()
	if err != nil {
		log.Printf("⚠️ Supabaseクライアント初期化失敗、モノグラムのみで継続: %v", err)
		return repoimpl.NewAbsentImageFetcher()
	}
	if err := supabaseClient.HealthCheck(); err != nil {
		log.Printf("⚠️ Supabaseヘルスチェック失敗、モノグラムのみで継続: %v", err)
		return repoimpl.NewAbsentImageFetcher()
	}
	fmt.Println("✅ Supabase connection successful!")
	return repoimpl.NewStorageImageFetcher(supabaseClient)
}
