// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"time"
)

// Review はユーザーが投稿したレストランレビューを表す。
// レビューはちょうど1人のユーザー（UserID）に所有され、
// 評価とコメントの変更・削除は所有者のみが行える。
// RestaurantName / RestaurantImage は作成時点のスナップショットであり、
// カタログ側の変更には追従しない。
type Review struct {
	ID              string    `json:"id"`
	RestaurantID    string    `json:"restaurantId"`
	RestaurantName  string    `json:"restaurantName"`
	RestaurantImage string    `json:"restaurantImage"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName"`
	Rating          int       `json:"rating"`
	Comment         string    `json:"comment"`
	CreatedAt       Timestamp `json:"createdAt"`
}

// Timestamp はレビューAPIのcreatedAtフィールドを表す。
// バックエンドの実装によってRFC3339文字列とFirestore形式
// （{"_seconds": N}）の両方が観測されるため、どちらも受け付ける。
type Timestamp struct {
	time.Time
}

// firestoreTimestamp はFirestore形式のタイムスタンプ表現。
type firestoreTimestamp struct {
	Seconds int64 `json:"_seconds"`
}

// UnmarshalJSON はRFC3339文字列またはFirestore形式のJSONをパースする。
// null・空文字列・未知の形式はゼロ値として扱う（表示側で "Just now" になる）。
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			t.Time = time.Time{}
			return nil
		}
		t.Time = parsed
		return nil
	}

	var fs firestoreTimestamp
	if err := json.Unmarshal(b, &fs); err == nil && fs.Seconds > 0 {
		t.Time = time.Unix(fs.Seconds, 0).UTC()
		return nil
	}

	t.Time = time.Time{}
	return nil
}

// MarshalJSON はRFC3339文字列として出力する。ゼロ値はnullになる。
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

// AuthorName はレビュー投稿者の表示名を返す。空の場合は "Anonymous"。
func (r *Review) AuthorName() string {
	if r.UserName == "" {
		return "Anonymous"
	}
	return r.UserName
}
