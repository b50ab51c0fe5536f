package review

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kohei/umami/internal/metrics"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func newTestClient(serverURL string) *Client {
	var buf bytes.Buffer
	return NewClient(&http.Client{}, serverURL, newTestLogger(&buf), metrics.Nop{})
}

func TestClient_ListByRestaurant_ReturnsReviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews/r42" {
			t.Errorf("path = %q, want /reviews/r42", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"v1","restaurantId":"r42","userId":"u1","userName":"Alice","rating":5,"comment":"Great"},
			{"id":"v2","restaurantId":"r42","userId":"u2","userName":"Bob","rating":3,"comment":"OK"}
		]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reviews, err := client.ListByRestaurant(context.Background(), "r42")
	if err != nil {
		t.Fatalf("ListByRestaurant returned error: %v", err)
	}

	if len(reviews) != 2 {
		t.Fatalf("len(reviews) = %d, want 2", len(reviews))
	}
	// バックエンドの順序を保持する
	if reviews[0].ID != "v1" || reviews[1].ID != "v2" {
		t.Errorf("review order changed: %q, %q", reviews[0].ID, reviews[1].ID)
	}
}

func TestClient_ListByUser_EmptyBody_ReturnsEmptySlice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user-reviews/u1" {
			t.Errorf("path = %q, want /user-reviews/u1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`null`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reviews, err := client.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if reviews == nil {
		t.Fatal("ListByUser should return an empty slice, not nil")
	}
	if len(reviews) != 0 {
		t.Errorf("len(reviews) = %d, want 0", len(reviews))
	}
}

func TestClient_Create_SendsAllFields(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/reviews" {
			t.Errorf("path = %q, want /reviews", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"v9","restaurantId":"42","rating":4,"comment":"Tasty"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	created, err := client.Create(context.Background(), CreateRequest{
		RestaurantID:    "42",
		RestaurantName:  "Trattoria Uno",
		RestaurantImage: "https://example.com/uno.jpg",
		UserID:          "u1",
		UserName:        "Alice",
		Rating:          4,
		Comment:         "Tasty",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID != "v9" {
		t.Errorf("created.ID = %q, want v9", created.ID)
	}

	want := map[string]interface{}{
		"restaurantId":    "42",
		"restaurantName":  "Trattoria Uno",
		"restaurantImage": "https://example.com/uno.jpg",
		"userId":          "u1",
		"userName":        "Alice",
		"rating":          float64(4),
		"comment":         "Tasty",
	}
	for key, wantVal := range want {
		if received[key] != wantVal {
			t.Errorf("body[%q] = %v, want %v", key, received[key], wantVal)
		}
	}
}

func TestClient_Update_SendsRatingCommentAndUserID(t *testing.T) {
	var received map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		if r.URL.Path != "/reviews/v1" {
			t.Errorf("path = %q, want /reviews/v1", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Update(context.Background(), "v1", UpdateRequest{
		Rating:  2,
		Comment: "Changed my mind",
		UserID:  "u1",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if received["rating"] != float64(2) {
		t.Errorf("body[rating] = %v, want 2", received["rating"])
	}
	if received["comment"] != "Changed my mind" {
		t.Errorf("body[comment] = %v", received["comment"])
	}
	if received["userId"] != "u1" {
		t.Errorf("body[userId] = %v, want u1", received["userId"])
	}
	if _, ok := received["restaurantId"]; ok {
		t.Error("update body should not include restaurantId")
	}
}

func TestClient_Delete_SendsUserIDQueryParam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}
		if r.URL.Path != "/reviews/v1" {
			t.Errorf("path = %q, want /reviews/v1", r.URL.Path)
		}
		if got := r.URL.Query().Get("userId"); got != "u1" {
			t.Errorf("userId query = %q, want u1", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Delete(context.Background(), "v1", "u1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
}

func TestClient_Delete_NonOKStatus_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.Delete(context.Background(), "v1", "u2"); err == nil {
		t.Fatal("Delete should return an error for a non-2xx status")
	}
}

func TestClient_Create_ServerError_ReturnsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Create(context.Background(), CreateRequest{RestaurantID: "42", Rating: 4, Comment: "x"})
	if err == nil {
		t.Fatal("Create should return an error for a 500 response")
	}
}
