package s3

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kbukum/huddle/storage"
)

// fakeS3 answers path-style PUT and HEAD requests.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]bool
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		f.objects[r.URL.Path] = true
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if f.objects[r.URL.Path] {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestStorage(t *testing.T) (*Storage, *fakeS3) {
	t.Helper()
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	fake := &fakeS3{objects: map[string]bool{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewStorage(context.Background(), storage.Config{
		Bucket:    "recordings",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	return s, fake
}

func TestUploadAndExists(t *testing.T) {
	ctx := context.Background()
	s, fake := newTestStorage(t)

	ok, err := s.Exists(ctx, "m1_all.webm")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("object should not exist yet")
	}

	if err := s.Upload(ctx, "m1_all.webm", bytes.NewReader([]byte("webm"))); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	fake.mu.Lock()
	stored := fake.objects["/recordings/m1_all.webm"]
	fake.mu.Unlock()
	if !stored {
		t.Fatal("expected path-style PUT to /recordings/m1_all.webm")
	}

	ok, err = s.Exists(ctx, "m1_all.webm")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	if err := s.Delete(ctx, "m1_all.webm"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := s.Exists(ctx, "m1_all.webm"); ok {
		t.Error("object should be deleted")
	}
}
