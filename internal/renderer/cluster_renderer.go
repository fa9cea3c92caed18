package renderer

import (
	"context"
	"log"
	"sync"

	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
)

// ClusterThreshold この件数以上のグループはクラスターバッジで描画する
const ClusterThreshold = 2

// avatarEntry アバターキャッシュのエントリ（imageがnilなら「不在」確定）
type avatarEntry struct {
	image []byte
}

// placedMarker 設置済みマーカーの参照と設置時点の解決結果
// 描画位置やグループサイズの変化検出に使う
type placedMarker struct {
	ref    repository.MarkerRef
	marker model.ResolvedMarker
}

// ClusterRenderer 解決済みマーカーを個別アイコンまたはクラスターバッジとして描画する
// アバター画像は非同期に取得し、取得完了後に設置済みマーカーへ反映する
// キャッシュ類はすべてmutexで直列化する（複数の取得完了コールバックから書き込まれるため）
type ClusterRenderer struct {
	port    repository.MarkerPort
	fetcher repository.ImageFetcher

	mu         sync.Mutex
	avatars    map[string]avatarEntry  // ownerID → 取得結果（AvatarCache）
	markers    map[string]placedMarker // stableID → 設置済みマーカー（MarkerCache）
	individual map[string]string       // 個別アイコンで設置中のstableID → ownerID
	inflight   map[string]struct{}     // 取得中のownerID
}

// NewClusterRenderer ClusterRendererの新しいインスタンスを作成
func NewClusterRenderer(port repository.MarkerPort, fetcher repository.ImageFetcher) *ClusterRenderer {
	return &ClusterRenderer{
		port:       port,
		fetcher:    fetcher,
		avatars:    make(map[string]avatarEntry),
		markers:    make(map[string]placedMarker),
		individual: make(map[string]string),
		inflight:   make(map[string]struct{}),
	}
}

// ShouldCluster グループサイズからクラスター描画するかを判定する
func ShouldCluster(groupSize int) bool {
	return groupSize >= ClusterThreshold
}

// Sync 解決済みマーカー一覧を地図に反映する
// 画面から消えたマーカーは取り除き、残りは設置または更新する
// アバター未解決の個別マーカーは即座にモノグラムで設置し、取得はブロックしない
func (r *ClusterRenderer) Sync(ctx context.Context, markers []model.ResolvedMarker) {
	r.mu.Lock()

	// 今回の一覧に存在しないマーカーを取り除く
	present := make(map[string]struct{}, len(markers))
	for _, marker := range markers {
		present[marker.Item.StableID()] = struct{}{}
	}
	for id, placed := range r.markers {
		if _, ok := present[id]; !ok {
			r.port.Remove(placed.ref)
			delete(r.markers, id)
			delete(r.individual, id)
		}
	}

	// 設置・更新と、必要なアバター取得の起動
	var fetchOwners []string
	for _, marker := range markers {
		stableID := marker.Item.StableID()
		ownerID := marker.Item.OwnerID()

		var icon model.MarkerIcon
		if ShouldCluster(marker.GroupSize) {
			// クラスターバッジは同期かつ純粋（アバター取得は行わない）
			icon = model.ClusterIcon(marker.GroupSize)
			delete(r.individual, stableID)
		} else {
			icon = r.individualIconLocked(ownerID, marker.Item.DisplayName(), &fetchOwners)
			r.individual[stableID] = ownerID
		}

		if placed, ok := r.markers[stableID]; ok {
			if placed.marker.RenderCoordinate.Equals(marker.RenderCoordinate) && placed.marker.GroupSize == marker.GroupSize {
				r.port.UpdateIcon(placed.ref, icon)
			} else {
				// 描画位置かグループサイズが変わったマーカーは置き直す
				r.port.Remove(placed.ref)
				r.markers[stableID] = placedMarker{ref: r.port.Place(marker, icon), marker: marker}
			}
		} else {
			r.markers[stableID] = placedMarker{ref: r.port.Place(marker, icon), marker: marker}
		}
	}
	r.mu.Unlock()

	for _, ownerID := range fetchOwners {
		go r.fetchAvatar(ctx, ownerID)
	}
}

// individualIconLocked 個別マーカーのアイコンを決定する（mu保持中に呼ぶこと）
// キャッシュ未解決かつ取得中でなければfetchOwnersに追加する
func (r *ClusterRenderer) individualIconLocked(ownerID, displayName string, fetchOwners *[]string) model.MarkerIcon {
	if entry, ok := r.avatars[ownerID]; ok {
		if entry.image != nil {
			return model.AvatarIcon(entry.image)
		}
		// 不在が確定済みならモノグラムのまま
		return model.MonogramIcon(displayName)
	}

	// 未解決: まずモノグラムで設置し、取得は1オーナーにつき同時1件まで
	if _, ok := r.inflight[ownerID]; !ok {
		r.inflight[ownerID] = struct{}{}
		*fetchOwners = append(*fetchOwners, ownerID)
	}
	return model.MonogramIcon(displayName)
}

// fetchAvatar アバター画像を取得してキャッシュし、生存中のマーカーへ反映する
// 取得失敗は「不在」と同じ扱いでキャッシュし、ユーザーにエラーは出さない
func (r *ClusterRenderer) fetchAvatar(ctx context.Context, ownerID string) {
	image, err := r.fetcher.FetchAvatar(ctx, ownerID)
	if err != nil {
		log.Printf("⚠️ アバター取得失敗（モノグラムにフォールバック）: owner=%s: %v", ownerID, err)
		image = nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.inflight, ownerID)
	r.avatars[ownerID] = avatarEntry{image: image}

	if image == nil {
		return
	}

	// マーカーがすでに画面から消えていれば黙って捨てる（エラーではない）
	for stableID, owner := range r.individual {
		if owner != ownerID {
			continue
		}
		if placed, ok := r.markers[stableID]; ok {
			r.port.UpdateIcon(placed.ref, model.AvatarIcon(image))
		}
	}
}

// CachedAvatar キャッシュ済みのアバター画像を返す（未解決の場合はok=false）
func (r *ClusterRenderer) CachedAvatar(ownerID string) (image []byte, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.avatars[ownerID]
	return entry.image, ok
}
