package repository

import (
	"context"

	"FriendMap-App/internal/domain/model"
)

// AccountRepository アカウントと公開ディレクトリの監視ストリームを提供するリポジトリ
type AccountRepository interface {
	// ObserveAccount 指定IDのアカウントを監視し、リモート変更のたびにスナップショットを配信する
	// ストリームのエラーはAccountEvent.Errとして配信される（チャネルは閉じない限り生き続ける）
	ObserveAccount(ctx context.Context, id string) (<-chan model.AccountEvent, error)

	// ObservePublicDirectory 公開ディレクトリ全体を監視する
	// ディレクトリはアイデンティティに依存しないグローバルなストリーム
	ObservePublicDirectory(ctx context.Context) (<-chan []model.ProfileItem, error)
}
