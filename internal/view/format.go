package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/kohei/umami/internal/model"
)

// FormatDate はレビュー投稿日時を表示用に整形する。
// ゼロ値（タイムスタンプが取得できなかったレビュー）は "Just now" を返す。
func FormatDate(t model.Timestamp) string {
	if t.IsZero() {
		return "Just now"
	}
	return t.Format("January 2, 2006")
}

// FormatRating は評価値を小数第1位までの文字列に整形する（例: "4.0"）。
func FormatRating(rating float64) string {
	return fmt.Sprintf("%.1f", rating)
}

// FormatCategories はカテゴリ一覧を先頭2件までカンマ区切りで連結する。
func FormatCategories(categories []model.Category) string {
	titles := make([]string, 0, 2)
	for _, c := range categories {
		if c.Title == "" {
			continue
		}
		titles = append(titles, c.Title)
		if len(titles) == 2 {
			break
		}
	}
	return strings.Join(titles, ", ")
}

// FormatAddress は住所の各行をカンマ区切りで連結する。
func FormatAddress(loc model.Location) string {
	return strings.Join(loc.DisplayAddress, ", ")
}

// FormatYear はフッター表示用の現在の年を返す。
func FormatYear() int {
	return time.Now().Year()
}
