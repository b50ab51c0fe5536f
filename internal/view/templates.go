package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/kohei/umami/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames はレンダリング可能なページテンプレート名の一覧。
var pageNames = []string{
	"home",
	"detail",
	"login",
	"signup",
	"dashboard",
	"review_form",
	"error",
}

// Base は全ページ共通のテンプレートデータ。
type Base struct {
	Title     string
	User      *model.User
	Flash     string
	CSRFToken string
}

// HomeData はカタログ一覧ページのデータ。
type HomeData struct {
	Base
	Location    string
	Restaurants []model.Restaurant
}

// DetailData はレストラン詳細ページのデータ。
type DetailData struct {
	Base
	Restaurant *model.Restaurant
	Reviews    []model.Review
	MeanRating float64
	HasReviews bool
}

// AuthPageData はログイン・サインアップページのデータ。
type AuthPageData struct {
	Base
}

// DashboardData はマイレビューページのデータ。
type DashboardData struct {
	Base
	Reviews []model.Review
}

// ReviewFormData はレビューエディタページのデータ。
// Modeは "create" または "edit"。
type ReviewFormData struct {
	Base
	Mode            string
	ActionPath      string
	RestaurantName  string
	RestaurantImage string
	Rating          int
	Comment         string
	ErrorMessage    string
}

// ErrorData はエラーページのデータ。
type ErrorData struct {
	Base
	Message string
	Detail  string
}

// Renderer は埋め込みテンプレートをレンダリングする。
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer は全ページテンプレートをパースしてRendererを生成する。
// テンプレートの構文エラーは起動時に検出する。
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"stars": Stars,
		"starsInt": func(rating int) []string {
			return Stars(float64(rating))
		},
		"starsRange": func() []int {
			return []int{1, 2, 3, 4, 5}
		},
		"formatDate":       FormatDate,
		"formatRating":     FormatRating,
		"formatCategories": FormatCategories,
		"formatAddress":    FormatAddress,
		"year":             FormatYear,
		"proxyImage":       proxyImage,
	}

	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// Render は指定ページをレンダリングしてレスポンスに書き込む。
// レンダリング失敗時は途中まで書き込まれたHTMLを出さないよう、
// バッファへの書き込みが完了してからレスポンスに流す。
func (r *Renderer) Render(w http.ResponseWriter, statusCode int, page string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.logger.Error("unknown template requested", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		r.logger.Error("template execution failed",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = buf.WriteTo(w)
}

// proxyImage は外部画像URLを画像プロキシ経由のパスに変換する。
// 空のURLは空文字列のまま返す（テンプレート側でプレースホルダ表示）。
func proxyImage(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	return "/img?url=" + url.QueryEscape(rawURL)
}
