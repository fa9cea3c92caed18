package model

// MapLayer 地図に表示するレイヤーの種別
const (
	LayerPosts     = "posts"     // 友達＋本人の投稿
	LayerDirectory = "directory" // 公開ディレクトリ
)

// ViewState 描画側が消費する不変のスナップショット
// パイプラインのtickごとに全体が作り直される（その場での書き換えはしない）
type ViewState struct {
	Posts           []ResolvedMarker `json:"posts"`
	PublicEntries   []ResolvedMarker `json:"public_entries"`
	UserLocation    Coordinate       `json:"user_location"`
	FocusLocation   *Coordinate      `json:"focus_location,omitempty"`
	SelectedLayer   string           `json:"selected_layer"`
	IsLoading       bool             `json:"is_loading"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	SnackbarMessage string           `json:"snackbar_message,omitempty"`
}

// InitialViewState 起動直後のローディング状態を返す
func InitialViewState() ViewState {
	return ViewState{
		Posts:         []ResolvedMarker{},
		PublicEntries: []ResolvedMarker{},
		UserLocation:  ZeroCoordinate,
		SelectedLayer: LayerPosts,
		IsLoading:     true,
	}
}
