// Package security はアプリケーションのセキュリティ機能を提供する。
//
// CommentSanitizerService はレビューコメントをサニタイズし、
// XSSなどのセキュリティリスクからユーザーを保護する。
// レビューコメントはプレーンテキストとして扱うため、
// bluemondayのStrictPolicy（全タグ除去）を使用する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// CommentSanitizerService はコメントのサニタイズ機能のインターフェースを定義する。
// レビューの作成・更新リクエストをバックエンドに送る前に使用される。
type CommentSanitizerService interface {
	// Sanitize はコメントからすべてのHTMLタグを除去し、前後の空白を削除する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// commentSanitizer はCommentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type commentSanitizer struct {
	policy *bluemonday.Policy
}

// NewCommentSanitizer はCommentSanitizerServiceの新しいインスタンスを生成する。
// レビューコメントに許可されるタグはない。script等の危険なタグだけでなく、
// 装飾タグも含めてすべて除去する。
func NewCommentSanitizer() *commentSanitizer {
	return &commentSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はコメントからすべてのHTMLタグを除去し、前後の空白を削除する。
func (s *commentSanitizer) Sanitize(raw string) string {
	return strings.TrimSpace(s.policy.Sanitize(raw))
}
