package review

import (
	"errors"
	"strings"
	"testing"

	"github.com/kohei/umami/internal/model"
)

func TestValidateComment_Valid(t *testing.T) {
	if err := ValidateComment("The pasta was excellent."); err != nil {
		t.Errorf("ValidateComment returned error for a valid comment: %v", err)
	}
}

func TestValidateComment_Empty_ReturnsError(t *testing.T) {
	err := ValidateComment("")
	if err == nil {
		t.Fatal("ValidateComment(\"\") should return an error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeEmptyComment {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeEmptyComment)
	}
	if apiErr.Message != "Please write a review comment" {
		t.Errorf("message = %q, want %q", apiErr.Message, "Please write a review comment")
	}
}

func TestValidateComment_WhitespaceOnly_ReturnsError(t *testing.T) {
	whitespaceOnly := []string{" ", "   ", "\t", "\n\n", " \t \n "}
	for _, comment := range whitespaceOnly {
		if err := ValidateComment(comment); err == nil {
			t.Errorf("ValidateComment(%q) should return an error", comment)
		}
	}
}

func TestValidateComment_WhitespaceAroundText_Valid(t *testing.T) {
	if err := ValidateComment("  good  "); err != nil {
		t.Errorf("ValidateComment should accept comments with surrounding whitespace: %v", err)
	}
}

func TestValidateRating_InRange(t *testing.T) {
	for rating := RatingMin; rating <= RatingMax; rating++ {
		if err := ValidateRating(rating); err != nil {
			t.Errorf("ValidateRating(%d) returned error: %v", rating, err)
		}
	}
}

func TestValidateRating_OutOfRange_ReturnsError(t *testing.T) {
	for _, rating := range []int{0, -1, 6, 100} {
		err := ValidateRating(rating)
		if err == nil {
			t.Errorf("ValidateRating(%d) should return an error", rating)
			continue
		}
		if !strings.Contains(err.Error(), "Rating must be between 1 and 5") {
			t.Errorf("unexpected error message: %v", err)
		}
	}
}
