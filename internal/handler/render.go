package handler

import (
	"net/http"

	"github.com/kohei/umami/internal/middleware"
	"github.com/kohei/umami/internal/view"
)

// newBase は全ページ共通のテンプレートデータを組み立てる。
// フラッシュメッセージはここで取り出され、セッションから消える。
func newBase(r *http.Request, title string, states *StateStore) view.Base {
	user := middleware.UserFromContext(r.Context())
	session := middleware.SessionFromContext(r.Context())

	flash := ""
	if session != nil {
		flash = states.PopFlash(r.Context(), session)
	}

	return view.Base{
		Title:     title,
		User:      user,
		Flash:     flash,
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
	}
}

// renderNotFound は404エラーページを描画する。
func renderNotFound(w http.ResponseWriter, r *http.Request, renderer *view.Renderer, states *StateStore, message string) {
	renderer.Render(w, http.StatusNotFound, "error", view.ErrorData{
		Base:    newBase(r, "Not Found", states),
		Message: message,
	})
}
