package elasticsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
)

// fakeES answers the two endpoints UserIndex uses.
type fakeES struct {
	mu     sync.Mutex
	docs   map[string]map[string]any
	search map[string]any
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0","build_flavor":"default"},"tagline":"You Know, for Search"}`))
	case strings.HasPrefix(r.URL.Path, "/users/_doc/"):
		var doc map[string]any
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[strings.TrimPrefix(r.URL.Path, "/users/_doc/")] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	case r.URL.Path == "/users/_search":
		_ = json.NewDecoder(r.Body).Decode(&f.search)
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"u2"},{"_id":"u1"}]}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	}
}

func newIndexTest(t *testing.T) (*UserIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{docs: map[string]map[string]any{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client, err := helpers.NewESClient([]string{srv.URL}, "", "")
	if err != nil {
		t.Fatalf("NewESClient: %v", err)
	}
	return NewUserIndex(client, "users"), fake
}

func TestUserIndex_IndexOmitsPassword(t *testing.T) {
	idx, fake := newIndexTest(t)
	u := &entity.User{ID: "u1", UserName: "amy", Email: "a@x.com", Password: "digest", CreatedAt: time.Now()}
	if err := idx.Index(context.Background(), u); err != nil {
		t.Fatalf("Index: %v", err)
	}
	doc := fake.docs["u1"]
	if doc["user_name"] != "amy" || doc["email"] != "a@x.com" {
		t.Fatalf("unexpected doc: %v", doc)
	}
	for k, v := range doc {
		if v == "digest" {
			t.Fatalf("password digest indexed under %q", k)
		}
	}
}

func TestUserIndex_Search(t *testing.T) {
	idx, fake := newIndexTest(t)
	ids, err := idx.Search(context.Background(), "am", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u2" || ids[1] != "u1" {
		t.Fatalf("ids = %v", ids)
	}
	if size, _ := fake.search["size"].(float64); size != 5 {
		t.Fatalf("size sent = %v", fake.search["size"])
	}
}
