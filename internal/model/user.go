// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// 表示名とメールアドレスは外部IdPから取得した値をそのまま保持する。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName はレビュー投稿者として表示する名前を返す。
// 表示名が空の場合はメールアドレス、それも空なら "Anonymous" を返す。
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Anonymous"
}

// Identity は外部IdPとの紐付け情報を表す。
// 複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
// Dataにはフラッシュメッセージと画面間で引き渡すナビゲーション状態を
// JSONで保持する。
type Session struct {
	ID        string
	UserID    string
	Data      []byte
	ExpiresAt time.Time
	CreatedAt time.Time
}
