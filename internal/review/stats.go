package review

import (
	"math"

	"github.com/kohei/umami/internal/model"
)

// MeanRating はレビュー一覧の算術平均評価を返す。
// 小数第1位に丸める。レビューが0件の場合はok=falseを返す。
func MeanRating(reviews []model.Review) (float64, bool) {
	if len(reviews) == 0 {
		return 0, false
	}

	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}

	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10, true
}
