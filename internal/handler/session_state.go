// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kohei/umami/internal/model"
)

// EditorContext はレビューエディタへ引き継ぐナビゲーション状態。
// 詳細ページで見ていたレストランのID・名前・画像のスナップショットを保持する。
// IDは対象レストランの照合に使い、別レストランのスナップショットを誤って
// 引き継がないようにする。
type EditorContext struct {
	RestaurantID    string `json:"restaurantId,omitempty"`
	RestaurantName  string `json:"restaurantName,omitempty"`
	RestaurantImage string `json:"restaurantImage,omitempty"`
}

// SessionState はセッションのdataカラムに保存されるページ間状態。
// フラッシュメッセージと、画面遷移で引き継ぐナビゲーション状態を持つ。
type SessionState struct {
	Flash string `json:"flash,omitempty"`

	// Editor はレビューエディタへのナビゲーション状態。
	Editor *EditorContext `json:"editor,omitempty"`

	// Reviews はマイレビュー画面で取得したレビュー一覧のスタッシュ。
	// 編集フォームのプリフィルを再取得なしで行うために使い、
	// 更新・削除時はここも同期して整合を保つ。
	Reviews []model.Review `json:"reviews,omitempty"`
}

// SessionDataUpdater はセッションdataの更新に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionDataUpdater interface {
	UpdateData(ctx context.Context, id string, data []byte) error
}

// StateStore はセッションのdataカラムを介したSessionStateの読み書きを提供する。
type StateStore struct {
	sessions SessionDataUpdater
	logger   *slog.Logger
}

// NewStateStore はStateStoreを生成する。
func NewStateStore(sessions SessionDataUpdater, logger *slog.Logger) *StateStore {
	return &StateStore{
		sessions: sessions,
		logger:   logger,
	}
}

// Load はセッションからSessionStateを読み出す。
// dataが空・壊れている場合はゼロ値を返す。
func (s *StateStore) Load(session *model.Session) SessionState {
	var state SessionState
	if session == nil || len(session.Data) == 0 {
		return state
	}
	if err := json.Unmarshal(session.Data, &state); err != nil {
		s.logger.Warn("failed to parse session state",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
		return SessionState{}
	}
	return state
}

// Save はSessionStateをセッションに書き戻す。
// 永続化失敗はフラッシュ・ナビゲーション状態が消えるだけなのでエラーにしない。
func (s *StateStore) Save(ctx context.Context, session *model.Session, state SessionState) {
	if session == nil {
		return
	}

	raw, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn("failed to encode session state",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.sessions.UpdateData(ctx, session.ID, raw); err != nil {
		s.logger.Warn("failed to save session state",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	// 同一リクエスト内の後続のLoadにも反映させる
	session.Data = raw
}

// SetFlash はフラッシュメッセージを設定する。
func (s *StateStore) SetFlash(ctx context.Context, session *model.Session, message string) {
	state := s.Load(session)
	state.Flash = message
	s.Save(ctx, session, state)
}

// PopFlash はフラッシュメッセージを取り出して消去する。
// メッセージがなければ空文字列を返す。
func (s *StateStore) PopFlash(ctx context.Context, session *model.Session) string {
	state := s.Load(session)
	if state.Flash == "" {
		return ""
	}
	flash := state.Flash
	state.Flash = ""
	s.Save(ctx, session, state)
	return flash
}
