package chat_test

import (
	"net/http"
	"testing"

	"cafe.GO/api/apitest"
	"cafe.GO/service/chat"
)

func TestChat_RecommendsProducts(t *testing.T) {
	s := apitest.New(t)
	s.Seed(t, "latte", "Latte", "Coffee", "4.50")
	c := s.NewClient()

	rec := c.Do(t, http.MethodPost, "/chat/messages", map[string]string{"content": "Any coffee today?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Reply    chat.Message   `json:"reply"`
		Messages []chat.Message `json:"messages"`
	}
	apitest.Decode(t, rec, &out)
	if out.Reply.Content != chat.RecommendationText || len(out.Reply.Products) != 1 {
		t.Errorf("reply = %+v", out.Reply)
	}
	if len(out.Messages) < 2 {
		t.Fatalf("transcript has %d messages", len(out.Messages))
	}

	var got struct {
		Messages []chat.Message `json:"messages"`
	}
	apitest.Decode(t, c.Do(t, http.MethodGet, "/chat", nil), &got)
	if len(got.Messages) != len(out.Messages) {
		t.Errorf("GET /chat = %d messages, want %d", len(got.Messages), len(out.Messages))
	}
	apitest.Decode(t, s.NewClient().Do(t, http.MethodGet, "/chat", nil), &got)
	for _, m := range got.Messages {
		if m.Role == chat.RoleUser {
			t.Error("another profile sees this transcript")
		}
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	s := apitest.New(t)
	rec := s.NewClient().Do(t, http.MethodPost, "/chat/messages", map[string]string{"content": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
