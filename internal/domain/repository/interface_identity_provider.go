package repository

import "context"

// IdentityProvider サインイン中のアイデンティティの変化を配信するインターフェース
// 空文字はサインアウト状態を表す
type IdentityProvider interface {
	// ObserveIdentity アイデンティティの変化を監視する（購読時に現在値を即時配信する）
	ObserveIdentity(ctx context.Context) <-chan string
}
