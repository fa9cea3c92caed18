package repository

import (
	"context"
	"log"
	"sync"

	"FriendMap-App/internal/domain/repository"
)

// SessionIdentityProvider プロセス内でアイデンティティの変化を配信するプロバイダ
// グローバルな認証リスナーの代わりに、注入されたこのプロバイダがイベントを流す
type SessionIdentityProvider struct {
	mu          sync.Mutex
	current     string
	subscribers map[int]chan string
	nextID      int
}

// NewSessionIdentityProvider 新しいSessionIdentityProviderインスタンスを作成
func NewSessionIdentityProvider(initial string) *SessionIdentityProvider {
	return &SessionIdentityProvider{
		current:     initial,
		subscribers: make(map[int]chan string),
	}
}

// ObserveIdentity アイデンティティの変化を監視する（購読時に現在値を即時配信する）
func (p *SessionIdentityProvider) ObserveIdentity(ctx context.Context) <-chan string {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	ch := make(chan string, 4)
	ch <- p.current
	p.subscribers[id] = ch
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		if sub, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(sub)
		}
		p.mu.Unlock()
	}()

	return ch
}

// SetIdentity サインイン中のアイデンティティを差し替えて全購読者へ通知する
func (p *SessionIdentityProvider) SetIdentity(identity string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if identity == p.current {
		return
	}
	p.current = identity
	log.Printf("🔑 アイデンティティ切り替え: %q", identity)

	for _, ch := range p.subscribers {
		select {
		case ch <- identity:
		default:
			// 詰まった購読者はスキップする（最新値は次の配信で追いつく）
		}
	}
}

// Current 現在のアイデンティティを返す
func (p *SessionIdentityProvider) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

var _ repository.IdentityProvider = (*SessionIdentityProvider)(nil)
