package renderer

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
)

// PlacedMarker 地図に設置済みのマーカーの現在の状態
type PlacedMarker struct {
	Marker model.ResolvedMarker
	Icon   model.MarkerIcon
}

// MemoryMarkerPort 地図ウィジェットの代わりにマーカー状態をメモリに保持するポート
// 実機では地図ウィジェットのアダプタに差し替える
type MemoryMarkerPort struct {
	mu     sync.Mutex
	placed map[string]PlacedMarker
}

// NewMemoryMarkerPort 新しいMemoryMarkerPortインスタンスを作成
func NewMemoryMarkerPort() *MemoryMarkerPort {
	return &MemoryMarkerPort{
		placed: make(map[string]PlacedMarker),
	}
}

// Place マーカーを設置して参照を返す
func (p *MemoryMarkerPort) Place(marker model.ResolvedMarker, icon model.MarkerIcon) repository.MarkerRef {
	ref := uuid.New().String()
	p.mu.Lock()
	p.placed[ref] = PlacedMarker{Marker: marker, Icon: icon}
	p.mu.Unlock()
	return ref
}

// UpdateIcon 設置済みマーカーのアイコンを差し替える
func (p *MemoryMarkerPort) UpdateIcon(ref repository.MarkerRef, icon model.MarkerIcon) {
	key, ok := ref.(string)
	if !ok {
		log.Printf("⚠️ 不正なマーカー参照: %v", ref)
		return
	}
	p.mu.Lock()
	if placed, exists := p.placed[key]; exists {
		placed.Icon = icon
		p.placed[key] = placed
	}
	p.mu.Unlock()
}

// Remove マーカーを取り除く
func (p *MemoryMarkerPort) Remove(ref repository.MarkerRef) {
	key, ok := ref.(string)
	if !ok {
		return
	}
	p.mu.Lock()
	delete(p.placed, key)
	p.mu.Unlock()
}

// Snapshot 設置済みマーカーの一覧を返す（デバッグ・テスト用）
func (p *MemoryMarkerPort) Snapshot() []PlacedMarker {
	p.mu.Lock()
	defer p.mu.Unlock()
	markers := make([]PlacedMarker, 0, len(p.placed))
	for _, placed := range p.placed {
		markers = append(markers, placed)
	}
	return markers
}

var _ repository.MarkerPort = (*MemoryMarkerPort)(nil)
