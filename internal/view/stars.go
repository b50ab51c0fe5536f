// Package view はHTMLテンプレートのレンダリングと表示用の整形を提供する。
package view

import "math"

// 星グリフのCSSクラス（Bootstrap Icons）。
const (
	StarFull  = "bi-star-fill"
	StarHalf  = "bi-star-half"
	StarEmpty = "bi-star"
)

// Stars は評価値を5つの星グリフのクラス名に変換する。
// 整数部の数だけ塗りつぶし星、端数が0.5以上のときだけ半星を1つ、
// 残りを空星で埋める。評価値は0〜5の範囲を想定する。
func Stars(rating float64) []string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	full := int(math.Floor(rating))
	half := rating-float64(full) >= 0.5

	stars := make([]string, 0, 5)
	for i := 0; i < full; i++ {
		stars = append(stars, StarFull)
	}
	if half && len(stars) < 5 {
		stars = append(stars, StarHalf)
	}
	for len(stars) < 5 {
		stars = append(stars, StarEmpty)
	}
	return stars
}
