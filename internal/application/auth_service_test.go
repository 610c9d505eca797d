package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-social-feed/internal/domain"
	"github.com/oksasatya/go-social-feed/internal/infrastructure/memory"
	"github.com/oksasatya/go-social-feed/pkg/helpers"
	tpl "github.com/oksasatya/go-social-feed/pkg/mailer/templates"
)

func TestRegister_StoresDigestAndReturnsPublicView(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.auth.Register(ctx, RegisterInput{UserName: " amy ", Email: " A@X.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.UserName != "amy" || u.Email != "a@x.com" || u.ID == "" {
		t.Fatalf("unexpected view: %+v", u)
	}
	stored, err := env.userRepo.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if stored.Password == "secret1" || !strings.HasPrefix(stored.Password, "$2") {
		t.Fatalf("password not stored as bcrypt digest: %q", stored.Password)
	}
	if got := env.pub.templates(); len(got) != 1 || got[0] != tpl.Welcome+":a@x.com" {
		t.Fatalf("published jobs = %v, want one welcome", got)
	}
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	cases := map[string]RegisterInput{
		"missing name":     {Email: "a@x.com", Password: "secret1"},
		"blank name":       {UserName: "   ", Email: "a@x.com", Password: "secret1"},
		"missing email":    {UserName: "amy", Password: "secret1"},
		"missing password": {UserName: "amy", Email: "a@x.com"},
		"long password":    {UserName: "amy", Email: "a@x.com", Password: strings.Repeat("p", 73)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := env.auth.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("want ErrValidation, got %v", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.auth.Register(ctx, RegisterInput{UserName: "amy", Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := env.auth.Register(ctx, RegisterInput{UserName: "amy2", Email: "A@x.com", Password: "other12"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	env := newTestEnv(t)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.auth.Register(context.Background(), RegisterInput{UserName: "amy", Email: "race@x.com", Password: "secret1"})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("%d registrations succeeded, want 1", wins)
	}
}

func TestLogin_TokenResolvesToUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u, _ := env.auth.Register(ctx, RegisterInput{UserName: "amy", Email: "a@x.com", Password: "secret1"})

	res, err := env.auth.Login(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.User.ID != u.ID {
		t.Fatalf("unexpected login result: %+v", res)
	}
	if d := time.Until(res.ExpiresAt); d < 7*24*time.Hour-time.Minute || d > 7*24*time.Hour {
		t.Fatalf("token lifetime = %v, want 7 days", d)
	}
	id, err := env.auth.Authorize(ctx, "Bearer "+res.Token)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if id.UserID != u.ID {
		t.Fatalf("identity = %q, want %q", id.UserID, u.ID)
	}
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, _ = env.auth.Register(ctx, RegisterInput{UserName: "amy", Email: "a@x.com", Password: "secret1"})

	_, errUnknown := env.auth.Login(ctx, "nobody@x.com", "secret1")
	_, errBad := env.auth.Login(ctx, "a@x.com", "wrong")

	for name, err := range map[string]error{"unknown email": errUnknown, "bad password": errBad} {
		if !errors.Is(err, domain.ErrAuthentication) {
			t.Fatalf("%s: want ErrAuthentication, got %v", name, err)
		}
	}
	if !errors.Is(errUnknown, domain.ErrNotFound) {
		t.Fatalf("unknown email should also match ErrNotFound, got %v", errUnknown)
	}
	if errors.Is(errBad, domain.ErrNotFound) {
		t.Fatal("bad password must not match ErrNotFound")
	}
	if errUnknown.Error() != errBad.Error() {
		t.Fatalf("messages differ: %q vs %q", errUnknown, errBad)
	}

	if _, err := env.auth.Login(ctx, "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank login: want ErrValidation, got %v", err)
	}
}

func TestAuthorize_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, _ = env.auth.Register(ctx, RegisterInput{UserName: "amy", Email: "a@x.com", Password: "secret1"})
	res, _ := env.auth.Login(ctx, "a@x.com", "secret1")

	expired, _, _ := helpers.NewJWTManager("test-secret", -time.Minute).Issue(res.User.ID)
	forged, _, _ := helpers.NewJWTManager("other-secret", time.Hour).Issue(res.User.ID)

	cases := map[string]string{
		"missing":       "",
		"wrong scheme":  "Token " + res.Token,
		"lowercase":     "bearer " + res.Token,
		"no token":      "Bearer ",
		"extra field":   "Bearer " + res.Token + " extra",
		"garbage":       "Bearer not-a-token",
		"expired":       "Bearer " + expired,
		"forged secret": "Bearer " + forged,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := env.auth.Authorize(ctx, header); !errors.Is(err, domain.ErrAuthentication) {
				t.Fatalf("want ErrAuthentication, got %v", err)
			}
		})
	}
}

func TestLogout_RevokesOnlyThatToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, _ = env.auth.Register(ctx, RegisterInput{UserName: "amy", Email: "a@x.com", Password: "secret1"})
	first, _ := env.auth.Login(ctx, "a@x.com", "secret1")
	second, _ := env.auth.Login(ctx, "a@x.com", "secret1")

	id, err := env.auth.Authorize(ctx, "Bearer "+first.Token)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if err := env.auth.Logout(ctx, id); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := env.auth.Logout(ctx, id); err != nil {
		t.Fatalf("second Logout should be a no-op, got %v", err)
	}

	_, err = env.auth.Authorize(ctx, "Bearer "+first.Token)
	if !errors.Is(err, domain.ErrAuthentication) || !strings.Contains(err.Error(), "invalidated") {
		t.Fatalf("revoked token: want invalidated ErrAuthentication, got %v", err)
	}
	if _, err := env.auth.Authorize(ctx, "Bearer "+second.Token); err != nil {
		t.Fatalf("other session should stay valid, got %v", err)
	}
	if env.revoked.Len() != 1 {
		t.Fatalf("registry size = %d, want 1", env.revoked.Len())
	}
}

type brokenRegistry struct{}

func (brokenRegistry) Revoke(context.Context, string, time.Time) error {
	return errors.New("registry down")
}

func (brokenRegistry) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("registry down")
}

func TestAuthorize_RegistryFailureIsNotAnAuthError(t *testing.T) {
	users := memory.NewUserRepository()
	tokens := helpers.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(AuthDeps{
		Users:   users,
		Hasher:  helpers.NewBcryptHasher(bcrypt.MinCost),
		Tokens:  tokens,
		Revoked: brokenRegistry{},
	})
	tok, _, _ := tokens.Issue("u1")
	_, err := svc.Authorize(context.Background(), "Bearer "+tok)
	if err == nil || errors.Is(err, domain.ErrAuthentication) {
		t.Fatalf("want an internal error, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Basic abc", "", false},
		{"Bearer a b", "", false},
	}
	for _, tc := range cases {
		got, ok := BearerToken(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
