package model

// LocatedItem 地図上に描画可能なアイテム（投稿・公開プロフィール）の共通インターフェース
type LocatedItem interface {
	// OwnerID アイテムの所有者ID
	OwnerID() string
	// DisplayName 表示名（モノグラム生成にも使用）
	DisplayName() string
	// Location アイテムの位置情報
	Location() Coordinate
	// StableID グルーピング順序とマーカーキャッシュのキーに使用する安定ID
	StableID() string
}

// PostItem 位置情報付きの投稿
type PostItem struct {
	ID         string     `json:"id" firestore:"-"`
	AuthorID   string     `json:"author_id" firestore:"author_id"`
	AuthorName string     `json:"author_name" firestore:"author_name"`
	Text       string     `json:"text" firestore:"text"`
	Coordinate Coordinate `json:"coordinate" firestore:"-"`
}

func (p PostItem) OwnerID() string     { return p.AuthorID }
func (p PostItem) DisplayName() string { return p.AuthorName }
func (p PostItem) Location() Coordinate { return p.Coordinate }
func (p PostItem) StableID() string    { return p.ID }

// ProfileItem 公開ディレクトリに載る発見可能なプロフィール
type ProfileItem struct {
	ID         string     `json:"id" firestore:"-"`
	Name       string     `json:"name" firestore:"name"`
	Coordinate Coordinate `json:"coordinate" firestore:"-"`
	IsPrivate  bool       `json:"is_private" firestore:"is_private"`
}

func (p ProfileItem) OwnerID() string     { return p.ID }
func (p ProfileItem) DisplayName() string { return p.Name }
func (p ProfileItem) Location() Coordinate { return p.Coordinate }
func (p ProfileItem) StableID() string    { return p.ID }

// FilterValidPosts 無効な座標を持つ投稿を除外する
func FilterValidPosts(posts []PostItem) []PostItem {
	result := make([]PostItem, 0, len(posts))
	for _, post := range posts {
		if post.Coordinate.IsValid() {
			result = append(result, post)
		}
	}
	return result
}

// FilterValidProfiles 無効な座標を持つプロフィールを除外する
func FilterValidProfiles(profiles []ProfileItem) []ProfileItem {
	result := make([]ProfileItem, 0, len(profiles))
	for _, profile := range profiles {
		if profile.Coordinate.IsValid() {
			result = append(result, profile)
		}
	}
	return result
}
