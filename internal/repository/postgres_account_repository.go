package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"FriendMap-App/internal/domain/model"
	"FriendMap-App/internal/domain/repository"
	"FriendMap-App/internal/infrastructure/database"
)

// directoryPollInterval ポーリングによる疑似ストリームの間隔
const directoryPollInterval = 5 * time.Second

// PostgresAccountRepository PostgreSQLをポーリングしてストリーム配信するアカウントリポジトリ
// Firestoreが構成されていない環境向けのフォールバック実装
// 内容が前回と変わったときだけ配信する（リモート変更ごとの配信に相当）
type PostgresAccountRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresAccountRepository 新しいPostgresAccountRepositoryインスタンスを作成
func NewPostgresAccountRepository(client *database.PostgreSQLClient) repository.AccountRepository {
	return &PostgresAccountRepository{
		client: client,
	}
}

// ObserveAccount 指定IDのアカウント行をポーリング監視する
func (r *PostgresAccountRepository) ObserveAccount(ctx context.Context, id string) (<-chan model.AccountEvent, error) {
	if id == "" {
		return nil, fmt.Errorf("アカウントIDが空です")
	}

	events := make(chan model.AccountEvent, 1)

	go func() {
		defer close(events)
		ticker := time.NewTicker(directoryPollInterval)
		defer ticker.Stop()

		lastFingerprint := ""
		for {
			snapshot, err := r.fetchAccount(ctx, id)
			if err != nil {
				log.Printf("❌ アカウント行の取得に失敗: %s: %v", id, err)
				select {
				case events <- model.AccountEvent{Err: err}:
				case <-ctx.Done():
				}
				return
			}

			fingerprint := accountFingerprint(snapshot)
			if fingerprint != lastFingerprint {
				lastFingerprint = fingerprint
				select {
				case events <- model.AccountEvent{Snapshot: snapshot}:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

// ObservePublicDirectory 非公開でないアカウント行をポーリング監視する
func (r *PostgresAccountRepository) ObservePublicDirectory(ctx context.Context) (<-chan []model.ProfileItem, error) {
	profiles := make(chan []model.ProfileItem, 1)

	go func() {
		defer close(profiles)
		ticker := time.NewTicker(directoryPollInterval)
		defer ticker.Stop()

		lastFingerprint := ""
		for {
			items, err := r.fetchDirectory(ctx)
			if err != nil {
				log.Printf("❌ 公開ディレクトリの取得に失敗: %v", err)
				return
			}

			fingerprint := directoryFingerprint(items)
			if fingerprint != lastFingerprint {
				lastFingerprint = fingerprint
				select {
				case profiles <- items:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return profiles, nil
}

// fetchAccount アカウント行を1件取得してスナップショットに変換する
func (r *PostgresAccountRepository) fetchAccount(ctx context.Context, id string) (*model.AccountSnapshot, error) {
	query := `SELECT name, latitude, longitude, location_label, friend_ids, is_private FROM accounts WHERE id = $1`

	var (
		name          string
		latitude      float64
		longitude     float64
		locationLabel string
		friendIDs     pq.StringArray
		isPrivate     bool
	)

	row := r.client.DB.QueryRowContext(ctx, query, id)
	err := row.Scan(&name, &latitude, &longitude, &locationLabel, &friendIDs, &isPrivate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("アカウント %s が見つかりません", id)
		}
		return nil, fmt.Errorf("アカウントデータの取得失敗: %w", err)
	}

	friendSet := make(map[string]struct{}, len(friendIDs))
	for _, friendID := range friendIDs {
		friendSet[friendID] = struct{}{}
	}

	return &model.AccountSnapshot{
		ID: id,
		LocatedAt: model.Coordinate{
			Latitude:  latitude,
			Longitude: longitude,
			Label:     locationLabel,
		},
		FriendIDs: friendSet,
		IsPrivate: isPrivate,
	}, nil
}

// fetchDirectory 公開ディレクトリの全行を取得する
func (r *PostgresAccountRepository) fetchDirectory(ctx context.Context) ([]model.ProfileItem, error) {
	query := `SELECT id, name, latitude, longitude, location_label FROM accounts WHERE is_private = false ORDER BY id`

	rows, err := r.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("公開ディレクトリの取得失敗: %w", err)
	}
	defer rows.Close()

	items := make([]model.ProfileItem, 0)
	for rows.Next() {
		var item model.ProfileItem
		var latitude, longitude float64
		var label string
		if err := rows.Scan(&item.ID, &item.Name, &latitude, &longitude, &label); err != nil {
			return nil, fmt.Errorf("プロフィール行の読み取り失敗: %w", err)
		}
		item.Coordinate = model.Coordinate{Latitude: latitude, Longitude: longitude, Label: label}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("公開ディレクトリの走査失敗: %w", err)
	}
	return items, nil
}

// accountFingerprint 配信要否を判定するためのスナップショットの指紋
func accountFingerprint(s *model.AccountSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%v|%v|%s|%v|", s.ID, s.LocatedAt.Latitude, s.LocatedAt.Longitude, s.LocatedAt.Label, s.IsPrivate)
	friends := make([]string, 0, len(s.FriendIDs))
	for id := range s.FriendIDs {
		friends = append(friends, id)
	}
	sort.Strings(friends)
	b.WriteString(strings.Join(friends, ","))
	return b.String()
}

// directoryFingerprint 配信要否を判定するためのディレクトリの指紋
func directoryFingerprint(items []model.ProfileItem) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "%s|%s|%v|%v|%s;", item.ID, item.Name, item.Coordinate.Latitude, item.Coordinate.Longitude, item.Coordinate.Label)
	}
	return b.String()
}
