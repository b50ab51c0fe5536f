package review

import (
	"strings"

	"github.com/kohei/umami/internal/model"
)

const (
	// RatingMin はレビュー評価の下限。
	RatingMin = 1
	// RatingMax はレビュー評価の上限。
	RatingMax = 5
	// RatingDefault はエディタ初期表示時の評価。
	RatingDefault = 4
)

// ValidateComment はコメントが空白のみでないことを検証する。
// 空白のみの場合はバックエンドへのリクエストを発行させないため、
// 送信前に必ず呼ぶこと。
func ValidateComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return model.NewEmptyCommentError()
	}
	return nil
}

// ValidateRating は評価が1〜5の範囲内であることを検証する。
func ValidateRating(rating int) error {
	if rating < RatingMin || rating > RatingMax {
		return model.NewInvalidRatingError(rating)
	}
	return nil
}
