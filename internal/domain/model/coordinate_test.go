package model

import "testing"

// TestCoordinateIsValid ゼロセンチネルだけが無効になることを確認する
func TestCoordinateIsValid(t *testing.T) {
	t.Run("ゼロセンチネルは無効", func(t *testing.T) {
		c := Coordinate{Latitude: 0, Longitude: 0, Label: ""}
		if c.IsValid() {
			t.Error("ゼロセンチネルが有効と判定されました")
		}
	})

	t.Run("通常の座標は有効", func(t *testing.T) {
		c := Coordinate{Latitude: 46.5197, Longitude: 6.6323, Label: "Lausanne"}
		if !c.IsValid() {
			t.Error("有効な座標が無効と判定されました")
		}
	})

	t.Run("緯度経度が0でもラベルがあれば有効", func(t *testing.T) {
		// センチネルは3フィールドすべてが一致したときだけ
		c := Coordinate{Latitude: 0, Longitude: 0, Label: "ギニア湾"}
		if !c.IsValid() {
			t.Error("ラベル付きの(0,0)が無効と判定されました")
		}
	})
}

// TestFilterValidPosts 無効座標の投稿が除外されることを確認する
func TestFilterValidPosts(t *testing.T) {
	posts := []PostItem{
		{ID: "p1", AuthorID: "u1", Coordinate: ZeroCoordinate},
		{ID: "p2", AuthorID: "u2", Coordinate: Coordinate{Latitude: 47.0, Longitude: 7.0}},
	}

	filtered := FilterValidPosts(posts)
	if len(filtered) != 1 {
		t.Fatalf("フィルタ後の件数が想定外: got %d, want 1", len(filtered))
	}
	if filtered[0].ID != "p2" {
		t.Errorf("残った投稿が想定外: got %s, want p2", filtered[0].ID)
	}
}

// TestMonogramOf モノグラム生成のフォールバック規則を確認する
func TestMonogramOf(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"英字は大文字化", "umi", "U"},
		{"すでに大文字はそのまま", "Taro", "T"},
		{"空文字は空のまま", "", ""},
		{"マルチバイトは先頭1文字", "山田太郎", "山"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MonogramOf(tc.input); got != tc.expected {
				t.Errorf("MonogramOf(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

// TestClusterIcon 件数バッジの表示上限を確認する
func TestClusterIcon(t *testing.T) {
	if icon := ClusterIcon(5); icon.Label != "5" {
		t.Errorf("バッジラベルが想定外: got %s, want 5", icon.Label)
	}
	if icon := ClusterIcon(1000); icon.Label != "999+" {
		t.Errorf("上限超過時のラベルが想定外: got %s, want 999+", icon.Label)
	}
	if icon := ClusterIcon(999); icon.Label != "999" {
		t.Errorf("上限ちょうどのラベルが想定外: got %s, want 999", icon.Label)
	}
}
