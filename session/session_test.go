package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/logger"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "not expired",
			expiresAt: time.Now().Add(time.Hour),
			want:      false,
		},
		{
			name:      "expired",
			expiresAt: time.Now().Add(-time.Hour),
			want:      true,
		},
		{
			name:      "just expired",
			expiresAt: time.Now().Add(-time.Second),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &Session{
				ExpiresAt: tt.expiresAt,
			}
			assert.Equal(t, tt.want, session.IsExpired())
		})
	}
}

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore()

	session := &Session{
		ID:        "test-session-id",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
		State:     State{Framework: scriptgen.FrameworkSelenium},
	}

	store.Set(session)

	retrieved, err := store.Get("test-session-id")
	require.NoError(t, err)
	assert.Equal(t, session.ID, retrieved.ID)
	assert.Equal(t, scriptgen.FrameworkSelenium, retrieved.State.Framework)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Set(&Session{
		ID:        "copy",
		ExpiresAt: time.Now().Add(time.Hour),
		State:     State{Files: []string{"locators.py"}},
	})

	first, err := store.Get("copy")
	require.NoError(t, err)
	first.State.Files[0] = "changed"
	first.State.BaseURL = "https://changed.test"

	second, err := store.Get("copy")
	require.NoError(t, err)
	assert.Equal(t, []string{"locators.py"}, second.State.Files)
	assert.Empty(t, second.State.BaseURL)
}

func TestStore_GetNonExistent(t *testing.T) {
	store := NewStore()

	_, err := store.Get("non-existent-id")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_GetExpired(t *testing.T) {
	store := NewStore()

	store.Set(&Session{
		ID:        "expired-session",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	_, err := store.Get("expired-session")
	assert.ErrorIs(t, err, ErrSessionExpired)

	err = store.UpdateState("expired-session", func(s *State) {})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestStore_Delete(t *testing.T) {
	store := NewStore()

	store.Set(&Session{
		ID:        "delete-session",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	store.Delete("delete-session")

	_, err := store.Get("delete-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_Cleanup(t *testing.T) {
	store := NewStore()

	store.Set(&Session{
		ID:        "active-session",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	store.Set(&Session{
		ID:        "expired-session",
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	removed := store.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, err := store.Get("active-session")
	assert.NoError(t, err)

	_, err = store.Get("expired-session")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(24*time.Hour, logger.NewTestLogger())

	session := manager.Create(context.Background())
	assert.NotEmpty(t, session.ID)
	_, err := uuid.Parse(session.ID)
	assert.NoError(t, err)
	assert.True(t, session.State.IsEmpty())
	assert.False(t, session.IsExpired())
}

func TestManager_SaveResultAndClear(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(24*time.Hour, logger.NewTestLogger())
	created := manager.Create(ctx)

	genID := uuid.New()
	err := manager.SaveResult(ctx, created.ID, State{
		Framework:    scriptgen.FrameworkPlaywright,
		BaseURL:      "https://staging.myapp.io",
		GenerationID: genID,
		Script:       "###LOCATORS###",
		Files:        []string{"locators.py", "actions.py", "test_script.py"},
	})
	require.NoError(t, err)

	got, err := manager.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, genID, got.State.GenerationID)
	assert.Equal(t, "https://staging.myapp.io", got.State.BaseURL)
	assert.False(t, got.State.UpdatedAt.IsZero())
	assert.False(t, got.State.IsEmpty())

	require.NoError(t, manager.Clear(ctx, created.ID))

	got, err = manager.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, got.State.IsEmpty())
	assert.Empty(t, got.State.BaseURL)
}

func TestManager_SetSelectionsKeepsResult(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(time.Hour, logger.NewTestLogger())
	created := manager.Create(ctx)

	require.NoError(t, manager.SaveResult(ctx, created.ID, State{Script: "old"}))
	require.NoError(t, manager.SetSelections(ctx, created.ID, scriptgen.FrameworkSelenium, "https://a.test"))

	got, err := manager.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "old", got.State.Script)
	assert.Equal(t, scriptgen.FrameworkSelenium, got.State.Framework)
	assert.Equal(t, "https://a.test", got.State.BaseURL)
}

func TestManager_SaveResultUnknownSession(t *testing.T) {
	manager := NewManager(time.Hour, logger.NewTestLogger())

	err := manager.SaveResult(context.Background(), "missing", State{Script: "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, manager.Clear(context.Background(), "missing"), ErrSessionNotFound)
}

func TestManager_GetExpired(t *testing.T) {
	manager := NewManager(time.Millisecond, logger.NewTestLogger())

	created := manager.Create(context.Background())

	time.Sleep(10 * time.Millisecond)

	_, err := manager.Get(created.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(24*time.Hour, logger.NewTestLogger())

	created := manager.Create(context.Background())
	manager.Delete(context.Background(), created.ID)

	_, err := manager.Get(created.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_StartCleanup(t *testing.T) {
	log := logger.NewTestLogger()
	manager := NewManager(5*time.Millisecond, log)
	manager.Create(context.Background())

	manager.StartCleanup(5 * time.Millisecond)
	defer manager.StopCleanup()

	assert.Eventually(t, func() bool {
		for _, e := range log.EntriesAt("info") {
			if e.Message == "cleaned up expired sessions" {
				return e.Fields["removed_count"] == 1 && e.Fields["active_count"] == 0
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	manager.StopCleanup()
}

func TestManager_Concurrent(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(24*time.Hour, logger.NewTestLogger())

	var wg sync.WaitGroup
	sessionIDs := make(chan string, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := manager.Create(ctx)
			_ = manager.SaveResult(ctx, session.ID, State{Script: "x"})
			sessionIDs <- session.ID
		}()
	}

	wg.Wait()
	close(sessionIDs)

	count := 0
	for sessionID := range sessionIDs {
		got, err := manager.Get(sessionID)
		assert.NoError(t, err)
		assert.Equal(t, "x", got.State.Script)
		count++
	}

	assert.Equal(t, 100, count)
}

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec := NewCookieCodec("0123456789abcdef0123456789abcdef", "testgen_session", false, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, codec.Write(rec, "abc-123"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "testgen_session", cookies[0].Name)
	assert.NotEqual(t, "abc-123", cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	id, err := codec.Read(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id)
}

func TestCookieCodec_RejectsTampered(t *testing.T) {
	codec := NewCookieCodec("0123456789abcdef0123456789abcdef", "testgen_session", false, time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "testgen_session", Value: "abc-123"})

	_, err := codec.Read(req)
	assert.Error(t, err)

	_, err = codec.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, http.ErrNoCookie)
}
