package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"

	"FriendMap-App/internal/domain/helper"
	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
	"FriendMap-App/internal/renderer"
)

// MapViewUseCase 地図画面の状態を組み立てるパイプラインのオーナー
type MapViewUseCase interface {
	// Run パイプラインを起動する（ctxが終了するまでブロックする）
	Run(ctx context.Context)

	// ViewState 最新のビュー状態を取得する
	ViewState() model.ViewState

	// Subscribe ビュー状態の更新を購読する（返り値の関数で購読解除）
	Subscribe() (<-chan model.ViewState, func())

	// SetFocusLocation フォーカス位置を設定する（nilで解除）
	SetFocusLocation(c *model.Coordinate)

	// SetSelectedLayer 表示レイヤーを切り替える
	SetSelectedLayer(layer string) error

	// ShowSnackbar スナックバーメッセージを設定する
	ShowSnackbar(message string)
}

// taggedAccountEvent 世代番号付きのアカウントイベント
// 古い購読からの配信を世代番号で破棄する
type taggedAccountEvent struct {
	gen   int
	event model.AccountEvent
}

// taggedPostsEvent 世代番号付きの投稿一覧配信
type taggedPostsEvent struct {
	gen   int
	items []model.PostItem
}

// mapViewUseCaseImpl MapViewUseCaseの実装
type mapViewUseCaseImpl struct {
	identityProvider repository.IdentityProvider
	accountRepo      repository.AccountRepository
	postsRepo        repository.PostsRepository
	markerRenderer   *renderer.ClusterRenderer

	// オーナーgoroutineだけが触るパイプライン内部状態
	latestPosts   []model.PostItem
	latestPublic  []model.ProfileItem
	account       *model.AccountSnapshot
	accountLoaded bool
	degraded      bool
	errorMessage  string

	accountGen    int
	accountCancel context.CancelFunc
	accountEvents chan taggedAccountEvent

	postGen     int
	postsCancel context.CancelFunc
	postEvents  chan taggedPostsEvent

	// 公開済みビュー状態と購読者（mutexで保護）
	mu          sync.Mutex
	state       model.ViewState
	subscribers map[int]chan model.ViewState
	nextSubID   int
}

// NewMapViewUseCase MapViewUseCaseの新しいインスタンスを作成
func NewMapViewUseCase(
	identityProvider repository.IdentityProvider,
	accountRepo repository.AccountRepository,
	postsRepo repository.PostsRepository,
	markerRenderer *renderer.ClusterRenderer,
) MapViewUseCase {
	return &mapViewUseCaseImpl{
		identityProvider: identityProvider,
		accountRepo:      accountRepo,
		postsRepo:        postsRepo,
		markerRenderer:   markerRenderer,
		accountEvents:    make(chan taggedAccountEvent, 16),
		postEvents:       make(chan taggedPostsEvent, 16),
		state:            model.InitialViewState(),
		subscribers:      make(map[int]chan model.ViewState),
	}
}

// Run パイプラインを起動する
// アイデンティティ・アカウント・公開ディレクトリ・投稿の各ストリームを
// 単一のオーナーループで処理する（ストリーム内の配信順は到着順に処理される）
func (u *mapViewUseCaseImpl) Run(ctx context.Context) {
	log.Printf("🚀 地図パイプライン起動")

	identityCh := u.identityProvider.ObserveIdentity(ctx)

	// 公開ディレクトリはアイデンティティに依存しないグローバルストリームなので一度だけ購読する
	publicCh, err := u.accountRepo.ObservePublicDirectory(ctx)
	if err != nil {
		log.Printf("⚠️ 公開ディレクトリの購読に失敗: %v", err)
		publicCh = nil
	}

	for {
		select {
		case <-ctx.Done():
			u.teardown()
			log.Printf("✅ 地図パイプライン停止")
			return

		case identity, ok := <-identityCh:
			if !ok {
				identityCh = nil
				continue
			}
			u.onIdentityChanged(ctx, identity)

		case tagged := <-u.accountEvents:
			// 古い世代のアカウント購読からの配信は破棄する
			if tagged.gen != u.accountGen {
				continue
			}
			u.onAccountEvent(ctx, tagged.event)

		case profiles, ok := <-publicCh:
			if !ok {
				publicCh = nil
				continue
			}
			u.latestPublic = profiles
			u.recompute(ctx)

		case tagged := <-u.postEvents:
			// キャンセル済みの購読からの配信はViewStateへ反映しない
			if tagged.gen != u.postGen {
				continue
			}
			u.latestPosts = tagged.items
			u.recompute(ctx)
		}
	}
}

// onIdentityChanged アイデンティティ変更時にアカウント購読を張り直す
func (u *mapViewUseCaseImpl) onIdentityChanged(ctx context.Context, identity string) {
	log.Printf("🔑 アイデンティティ変更: %q", identity)

	u.cancelAccountSubscription()
	u.cancelPostsSubscription()
	u.account = nil
	u.accountLoaded = false
	u.degraded = false
	u.errorMessage = ""
	u.latestPosts = nil

	if identity == "" {
		// サインアウト: ローディング状態へ戻す
		u.recompute(ctx)
		return
	}

	subCtx, cancel := context.WithCancel(ctx)
	u.accountCancel = cancel
	u.accountGen++
	gen := u.accountGen

	eventCh, err := u.accountRepo.ObserveAccount(subCtx, identity)
	if err != nil {
		cancel()
		u.accountCancel = nil
		u.enterDegraded(ctx, fmt.Errorf("アカウントの購読に失敗: %w", err))
		return
	}

	go func() {
		for event := range eventCh {
			select {
			case u.accountEvents <- taggedAccountEvent{gen: gen, event: event}:
			case <-subCtx.Done():
				return
			}
		}
	}()

	u.recompute(ctx)
}

// onAccountEvent アカウントスナップショットの配信を処理する
// Loaded遷移のたびに投稿購読を張り直し、バッファ済みの公開エントリへ除外フィルタを適用し直す
func (u *mapViewUseCaseImpl) onAccountEvent(ctx context.Context, event model.AccountEvent) {
	if event.Err != nil {
		u.enterDegraded(ctx, event.Err)
		return
	}

	u.degraded = false
	u.errorMessage = ""
	u.account = event.Snapshot
	if !u.accountLoaded {
		log.Printf("✅ アカウント初回ロード完了: %s (友達%d人)", event.Snapshot.ID, len(event.Snapshot.FriendIDs))
	}
	u.accountLoaded = true

	// 以前の投稿購読を必ずキャンセルしてから新しい友達集合で張り直す
	u.restartPostsSubscription(ctx)
	u.recompute(ctx)
}

// restartPostsSubscription 投稿購読を新しい友達集合で張り直す
func (u *mapViewUseCaseImpl) restartPostsSubscription(ctx context.Context) {
	u.cancelPostsSubscription()

	subCtx, cancel := context.WithCancel(ctx)
	u.postsCancel = cancel
	u.postGen++
	gen := u.postGen

	targets := u.account.SubscriptionTargets()
	postsCh, err := u.postsRepo.ObserveRecentPosts(subCtx, targets)
	if err != nil {
		cancel()
		u.postsCancel = nil
		log.Printf("⚠️ 投稿の購読に失敗: %v", err)
		u.errorMessage = "投稿の読み込みに失敗しました"
		return
	}

	go func() {
		for items := range postsCh {
			select {
			case u.postEvents <- taggedPostsEvent{gen: gen, items: items}:
			case <-subCtx.Done():
				return
			}
		}
	}()
}

// enterDegraded アカウントストリームの失敗時に縮退状態へ遷移する
// 友達集合が不明なため依存ストリームは開始しない（自動リトライはしない）
func (u *mapViewUseCaseImpl) enterDegraded(ctx context.Context, err error) {
	log.Printf("❌ アカウントストリーム失敗、縮退状態へ: %v", err)
	u.cancelPostsSubscription()
	u.degraded = true
	u.accountLoaded = false
	u.account = nil
	u.latestPosts = nil
	u.errorMessage = "アカウント情報の取得に失敗しました"
	u.recompute(ctx)
}

// recompute 最新の入力からViewStateを作り直して公開する
// パイプラン由来のフィールドだけを差し替え、フォーカス・レイヤー・スナックバーの
// 設定系フィールドは保存と同一クリティカルセクション内の現在値を引き継ぐ
// （計算中に届いた設定変更を上書きで失わないため）
func (u *mapViewUseCaseImpl) recompute(ctx context.Context) {
	posts := []model.ResolvedMarker{}
	publicEntries := []model.ResolvedMarker{}
	userLocation := model.ZeroCoordinate
	isLoading := false

	if !u.degraded {
		isLoading = !u.accountLoaded
		posts = helper.ResolvePostOverlaps(model.FilterValidPosts(u.latestPosts))
		publicEntries = helper.ResolveProfileOverlaps(u.filteredPublicEntries())
		if u.account != nil {
			userLocation = u.account.LocatedAt
		}
	}

	next := u.mutateState(func(s *model.ViewState) {
		s.Posts = posts
		s.PublicEntries = publicEntries
		s.UserLocation = userLocation
		s.IsLoading = isLoading
		s.ErrorMessage = u.errorMessage
	})

	// 選択中レイヤーのマーカーを地図へ反映する
	switch next.SelectedLayer {
	case model.LayerDirectory:
		u.markerRenderer.Sync(ctx, next.PublicEntries)
	default:
		u.markerRenderer.Sync(ctx, next.Posts)
	}
}

// filteredPublicEntries 公開エントリへ有効座標フィルタと本人・友達の除外を適用する
// アカウント未ロードの間は除外を適用できないため意図的に保留する
// （スナップショット到着時にrecomputeが走り、遡って除外が効く）
func (u *mapViewUseCaseImpl) filteredPublicEntries() []model.ProfileItem {
	valid := model.FilterValidProfiles(u.latestPublic)
	if !u.accountLoaded || u.account == nil {
		return valid
	}

	result := make([]model.ProfileItem, 0, len(valid))
	for _, profile := range valid {
		if u.account.IsFriendOrSelf(profile.OwnerID()) {
			continue
		}
		result = append(result, profile)
	}
	return result
}

func (u *mapViewUseCaseImpl) cancelAccountSubscription() {
	if u.accountCancel != nil {
		u.accountCancel()
		u.accountCancel = nil
	}
	u.accountGen++
}

func (u *mapViewUseCaseImpl) cancelPostsSubscription() {
	if u.postsCancel != nil {
		u.postsCancel()
		u.postsCancel = nil
	}
	u.postGen++
}

func (u *mapViewUseCaseImpl) teardown() {
	u.cancelAccountSubscription()
	u.cancelPostsSubscription()
}

// ViewState 最新のビュー状態を取得する
func (u *mapViewUseCaseImpl) ViewState() model.ViewState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Subscribe ビュー状態の更新を購読する
func (u *mapViewUseCaseImpl) Subscribe() (<-chan model.ViewState, func()) {
	u.mu.Lock()
	defer u.mu.Unlock()

	id := u.nextSubID
	u.nextSubID++
	ch := make(chan model.ViewState, 8)
	u.subscribers[id] = ch

	unsubscribe := func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		if _, ok := u.subscribers[id]; ok {
			delete(u.subscribers, id)
			close(ch)
		}
	}
	return ch, unsubscribe
}

// mutateState 現在の公開済み状態を書き換えて保存し、購読者へ通知する
// 読み取り・書き換え・保存を単一のロック区間で行い、保存した状態を返す
func (u *mapViewUseCaseImpl) mutateState(mutate func(*model.ViewState)) model.ViewState {
	u.mu.Lock()
	defer u.mu.Unlock()

	next := u.state
	mutate(&next)
	u.state = next
	for _, ch := range u.subscribers {
		select {
		case ch <- next:
		default:
			// 遅い購読者には最新状態だけ届けばよい
		}
	}
	return next
}

// SetFocusLocation フォーカス位置を設定する（パイプラインへの副作用はない）
func (u *mapViewUseCaseImpl) SetFocusLocation(c *model.Coordinate) {
	u.mutateState(func(s *model.ViewState) { s.FocusLocation = c })
}

// SetSelectedLayer 表示レイヤーを切り替える
func (u *mapViewUseCaseImpl) SetSelectedLayer(layer string) error {
	if layer != model.LayerPosts && layer != model.LayerDirectory {
		return fmt.Errorf("不明なレイヤーです: %s", layer)
	}
	u.mutateState(func(s *model.ViewState) { s.SelectedLayer = layer })
	return nil
}

// ShowSnackbar スナックバーメッセージを設定する
func (u *mapViewUseCaseImpl) ShowSnackbar(message string) {
	u.mutateState(func(s *model.ViewState) { s.SnackbarMessage = message })
}
