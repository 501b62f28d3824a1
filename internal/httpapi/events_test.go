package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"aminashop/backend/internal/domain"
)

func TestEventsStreamsCommittedChanges(t *testing.T) {
	api := newTestAPI(t)
	token := login(t, api, "user-admin", testAdminPIN).AccessToken
	srv := httptest.NewServer(api.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Event
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("read hello: %v", err)
	}
	if hello.Type != "hello" {
		t.Fatalf("expected hello first, got %+v", hello)
	}

	if _, err := api.service.AddCategory(context.Background(), domain.CategoryInput{Name: "Bijoux"}); err != nil {
		t.Fatalf("add category: %v", err)
	}

	var change Event
	if err := conn.ReadJSON(&change); err != nil {
		t.Fatalf("read change: %v", err)
	}
	if change.Type != "change" || change.Kind != "ADD_CATEGORY" || change.Version != hello.Version+1 {
		t.Fatalf("unexpected change event %+v after hello %+v", change, hello)
	}
}

func TestEventsRequireToken(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial without token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake response, got %+v", resp)
	}
}
