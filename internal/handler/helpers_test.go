package handler_test

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/msomdec/prayerlift/internal/handler"
	"github.com/msomdec/prayerlift/internal/repository/sqlite"
	"github.com/msomdec/prayerlift/internal/service"
)

const testSessionSecret = "test-secret-for-handler-tests-0123456789"

type stubComposer struct{}

func (stubComposer) Compose(_ context.Context, _, author string) string {
	return "Lord, be near to " + author + ". Amen."
}

// stubAudio answers every synthesis request unless unavailable is set.
type stubAudio struct {
	unavailable bool
}

func (s *stubAudio) GetOrSynthesize(_ context.Context, text, _ string) ([]byte, bool) {
	if s.unavailable {
		return nil, false
	}
	return []byte("ID3" + text), true
}

type testEnv struct {
	db    *sqlite.DB
	svc   handler.Services
	audio *stubAudio
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions := service.NewSessionService(db, service.SessionConfig{Secret: testSessionSecret})
	prayers := service.NewPrayerService(db, stubComposer{}, nil)
	t.Cleanup(prayers.Wait)
	audio := &stubAudio{}

	return &testEnv{
		db:    db,
		audio: audio,
		svc: handler.Services{
			Sessions: sessions,
			// Use cost 4 for fast tests.
			Auth:    service.NewAuthService(db, sessions, 4),
			Prayers: prayers,
			Audio:   service.NewAudioService(db.Prayers(), audio),
		},
	}
}

func (e *testEnv) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, e.svc)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns a client with its own cookie jar that does not follow
// redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
