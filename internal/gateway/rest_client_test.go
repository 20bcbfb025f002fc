package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRestClient_SendMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/channels/chan-1/messages" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bot secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Content != "hello" {
			t.Errorf("unexpected content %q", payload.Content)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, "secret")
	id, err := c.SendMessage(context.Background(), "chan-1", "hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if id != "msg-1" {
		t.Fatalf("expected message id msg-1, got %q", id)
	}
}

func TestRestClient_EditMessage_NotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/channels/chan-1/messages/msg-gone" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, "secret")
	err := c.EditMessage(context.Background(), "chan-1", "msg-gone", "updated")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRestClient_SendDirect(t *testing.T) {
	t.Parallel()

	var sentTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/channels":
			var payload struct {
				RecipientID string `json:"recipient_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			if payload.RecipientID != "user-1" {
				t.Errorf("unexpected recipient %q", payload.RecipientID)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "dm-chan"})
		case "/channels/dm-chan/messages":
			sentTo = r.URL.Path
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg-1"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, "secret")
	if err := c.SendDirect(context.Background(), "user-1", "your key"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sentTo != "/channels/dm-chan/messages" {
		t.Fatalf("expected message in DM channel, got %q", sentTo)
	}
}

func TestRestClient_CreateAndDeleteChannel(t *testing.T) {
	t.Parallel()

	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/channels":
			var payload struct {
				Name      string   `json:"name"`
				ParentID  string   `json:"parent_id"`
				ViewerIDs []string `json:"viewer_ids"`
			}
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			if payload.Name != "ticket-purchase-buyer" || payload.ParentID != "cat-1" {
				t.Errorf("unexpected payload %+v", payload)
			}
			if len(payload.ViewerIDs) != 2 {
				t.Errorf("expected 2 viewers, got %v", payload.ViewerIDs)
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "chan-9"})
		case r.Method == http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, "secret")
	id, err := c.CreateChannel(context.Background(), CreateChannelRequest{
		Name:      "ticket-purchase-buyer",
		ParentID:  "cat-1",
		ViewerIDs: []string{"user-1", "role-staff"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "chan-9" {
		t.Fatalf("expected channel id chan-9, got %q", id)
	}

	if err := c.DeleteChannel(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != "/channels/chan-9" {
		t.Fatalf("expected deletion of chan-9, got %q", deleted)
	}
}

func TestRestClient_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewRestClient(srv.URL, "secret")
	if _, err := c.SendMessage(context.Background(), "chan-1", "hello"); err == nil {
		t.Fatalf("expected error")
	}
}
