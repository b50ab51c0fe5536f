// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, review, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeRestaurantNotFound = "RESTAURANT_NOT_FOUND"
	ErrCodeReviewNotFound     = "REVIEW_NOT_FOUND"
	ErrCodeEmptyComment       = "EMPTY_COMMENT"
	ErrCodeInvalidRating      = "INVALID_RATING"
	ErrCodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
)

// NewRestaurantNotFoundError はレストラン未検出エラーを生成する。
func NewRestaurantNotFoundError(restaurantID string) *APIError {
	return &APIError{
		Code:     ErrCodeRestaurantNotFound,
		Message:  fmt.Sprintf("Restaurant not found: %s", restaurantID),
		Category: "catalog",
		Action:   "Go back to the restaurant list and pick another one.",
	}
}

// NewReviewNotFoundError はレビュー未検出エラーを生成する。
func NewReviewNotFoundError(reviewID string) *APIError {
	return &APIError{
		Code:     ErrCodeReviewNotFound,
		Message:  fmt.Sprintf("Review not found: %s", reviewID),
		Category: "review",
		Action:   "Check your reviews on the dashboard.",
	}
}

// NewEmptyCommentError は空コメントのバリデーションエラーを生成する。
// このエラーはネットワーク呼び出しの前にクライアント側で検出される。
func NewEmptyCommentError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyComment,
		Message:  "Please write a review comment",
		Category: "validation",
		Action:   "Write a comment before submitting your review.",
	}
}

// NewInvalidRatingError は評価値が範囲外の場合のエラーを生成する。
func NewInvalidRatingError(rating int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRating,
		Message:  fmt.Sprintf("Rating must be between 1 and 5, got %d", rating),
		Category: "validation",
		Action:   "Pick a rating from 1 to 5 stars.",
	}
}

// NewBackendUnavailableError はレビューAPIへの書き込み失敗エラーを生成する。
// フォームの入力内容は保持されるため、ユーザーは手動で再送できる。
func NewBackendUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeBackendUnavailable,
		Message:  "Failed to submit review. Please try again.",
		Category: "system",
		Action:   "Wait a moment and submit the form again.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "Log in again.",
	}
}
