// Package model はドメインモデルを定義する。
package model

// Restaurant は外部カタログAPIが提供するレストラン情報を表す。
// アプリケーションからは読み取り専用。JSONフィールド名はカタログAPIの
// レスポンス形式に合わせている。
type Restaurant struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	ImageURL     string     `json:"image_url"`
	Rating       float64    `json:"rating"`
	ReviewCount  int        `json:"review_count"`
	Price        string     `json:"price"`
	Categories   []Category `json:"categories"`
	Location     Location   `json:"location"`
	Phone        string     `json:"phone"`
	DisplayPhone string     `json:"display_phone"`
}

// Category はレストランのカテゴリを表す。
type Category struct {
	Title string `json:"title"`
}

// Location はレストランの所在地を表す。
type Location struct {
	City           string   `json:"city"`
	DisplayAddress []string `json:"display_address"`
}

// PriceOrDefault は価格帯を返す。未設定の場合は "$$" を返す。
func (r *Restaurant) PriceOrDefault() string {
	if r.Price == "" {
		return "$$"
	}
	return r.Price
}
