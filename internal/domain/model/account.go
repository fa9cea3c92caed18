package model

// AccountSnapshot アカウントストアから配信されるアカウント情報のスナップショット
// 配信のたびに全体が置き換わる（部分更新はない）
type AccountSnapshot struct {
	ID        string              `json:"id"`
	LocatedAt Coordinate          `json:"located_at"`
	FriendIDs map[string]struct{} `json:"-"`
	IsPrivate bool                `json:"is_private"`
}

// IsFriendOrSelf 指定IDが本人または友達かどうかを判定する
func (a *AccountSnapshot) IsFriendOrSelf(id string) bool {
	if id == a.ID {
		return true
	}
	_, ok := a.FriendIDs[id]
	return ok
}

// SubscriptionTargets 投稿ストリームの購読対象（友達＋本人）のID一覧を返す
func (a *AccountSnapshot) SubscriptionTargets() []string {
	ids := make([]string, 0, len(a.FriendIDs)+1)
	ids = append(ids, a.ID)
	for id := range a.FriendIDs {
		if id != a.ID {
			ids = append(ids, id)
		}
	}
	return ids
}

// AccountEvent アカウントストリームの1回の配信（スナップショットまたはエラー）
type AccountEvent struct {
	Snapshot *AccountSnapshot
	Err      error
}
