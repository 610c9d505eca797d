package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-social-feed/internal/domain/entity"
	"github.com/oksasatya/go-social-feed/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
	"github.com/oksasatya/go-social-feed/pkg/mailer"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// fakeBlobs records uploads and deletes. When failOn > 0 the failOn-th
// upload fails.
type fakeBlobs struct {
	calls  atomic.Int32
	failOn int32

	mu      sync.Mutex
	paths   []string
	deleted []string
}

func (b *fakeBlobs) Delete(_ context.Context, objectPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, objectPath)
	return nil
}

// orphans lists uploaded objects that were never deleted.
func (b *fakeBlobs) orphans() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	gone := make(map[string]bool, len(b.deleted))
	for _, p := range b.deleted {
		gone[p] = true
	}
	var out []string
	for _, p := range b.paths {
		if !gone[p] {
			out = append(out, p)
		}
	}
	return out
}

func (b *fakeBlobs) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	n := b.calls.Add(1)
	if b.failOn > 0 && n == b.failOn {
		return "", errors.New("bucket unavailable")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	b.mu.Lock()
	b.paths = append(b.paths, objectPath)
	b.mu.Unlock()
	return "https://cdn.test/" + objectPath, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return nil
}

func (p *fakePublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template+":"+j.To)
	}
	return out
}

type testEnv struct {
	auth  *AuthService
	posts *PostService
	users *UserService

	userRepo *memory.UserRepository
	postRepo *memory.PostRepository
	revoked  *memory.RevocationRegistry
	blobs    *fakeBlobs
	pub      *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		userRepo: memory.NewUserRepository(),
		postRepo: memory.NewPostRepository(),
		revoked:  memory.NewRevocationRegistry(),
		blobs:    &fakeBlobs{},
		pub:      &fakePublisher{},
	}
	logger := helpers.NewDiscardLogger()
	env.auth = NewAuthService(AuthDeps{
		Users:     env.userRepo,
		Hasher:    helpers.NewBcryptHasher(bcrypt.MinCost),
		Tokens:    helpers.NewJWTManager("test-secret", 7*24*time.Hour),
		Revoked:   env.revoked,
		Publisher: env.pub,
		AppName:   "Feed",
		Logger:    logger,
	})
	env.posts = NewPostService(PostDeps{
		Posts:     env.postRepo,
		Users:     env.userRepo,
		Blobs:     env.blobs,
		Publisher: env.pub,
		Limits:    PostLimits{MaxImageBytes: 1 << 10, MaxImages: 3, UploadConcurrency: 2},
		AppName:   "Feed",
		Logger:    logger,
	})
	env.users = NewUserService(env.userRepo, nil, logger)
	return env
}

// signUp registers and logs in a user and returns the authorized identity.
func (e *testEnv) signUp(t *testing.T, name, email string) entity.Identity {
	t.Helper()
	ctx := context.Background()
	if _, err := e.auth.Register(ctx, RegisterInput{UserName: name, Email: email, Password: "secret1"}); err != nil {
		t.Fatalf("Register(%s): %v", email, err)
	}
	res, err := e.auth.Login(ctx, email, "secret1")
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	id, err := e.auth.Authorize(ctx, "Bearer "+res.Token)
	if err != nil {
		t.Fatalf("Authorize(%s): %v", email, err)
	}
	return id
}

func likerNames(p *PostView) []string {
	out := make([]string, 0, len(p.Likes))
	for _, u := range p.Likes {
		out = append(out, u.UserName)
	}
	return out
}
