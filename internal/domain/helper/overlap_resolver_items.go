package helper

import "FriendMap-App/internal/domain/model"

// ResolvePostOverlaps 投稿一覧をLocatedItemに束ねて重なりを解消する
func ResolvePostOverlaps(posts []model.PostItem) []model.ResolvedMarker {
	items := make([]model.LocatedItem, len(posts))
	for i, post := range posts {
		items[i] = post
	}
	return ResolveOverlaps(items)
}

// ResolveProfileOverlaps プロフィール一覧をLocatedItemに束ねて重なりを解消する
func ResolveProfileOverlaps(profiles []model.ProfileItem) []model.ResolvedMarker {
	items := make([]model.LocatedItem, len(profiles))
	for i, profile := range profiles {
		items[i] = profile
	}
	return ResolveOverlaps(items)
}
