package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tman/internal/service"
)

var testProfile = service.Profile{ID: 1, Name: "Ada", Email: "ada@example.com"}

func TestRestore_ValidSession(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(map[string]string{
		KeyToken: "abc123",
		KeyUser:  `{"id":1,"name":"Ada","email":"ada@example.com"}`,
	})

	store := NewStore(storage, nil)
	if !store.Restore() {
		t.Fatal("expected session to be restored")
	}
	if store.Credential() != "abc123" {
		t.Errorf("expected credential abc123, got %q", store.Credential())
	}
	p, ok := store.Profile()
	if !ok || p != testProfile {
		t.Errorf("expected profile %+v, got %+v (ok=%v)", testProfile, p, ok)
	}
	if !store.Authenticated() {
		t.Error("expected authenticated state")
	}
}

func TestRestore_OnlyTokenPresent(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(map[string]string{KeyToken: "abc123"})

	store := NewStore(storage, nil)
	if store.Restore() {
		t.Error("expected no session with only token present")
	}
	if store.Authenticated() || store.Credential() != "" {
		t.Error("expected unauthenticated state")
	}
}

func TestRestore_OnlyUserPresent(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Set(map[string]string{KeyUser: `{"id":1,"name":"Ada","email":"ada@example.com"}`})

	store := NewStore(storage, nil)
	if store.Restore() {
		t.Error("expected no session with only user present")
	}
	if _, ok := store.Profile(); ok {
		t.Error("expected no profile")
	}
}

func TestRestore_MalformedProfile(t *testing.T) {
	for _, raw := range []string{`{not json`, `null`, `"ada"`, `{"id":1}`} {
		storage := NewMemoryStorage()
		storage.Set(map[string]string{KeyToken: "abc123", KeyUser: raw})

		store := NewStore(storage, nil)
		if store.Restore() {
			t.Errorf("expected restore to ignore profile %q", raw)
		}
		if store.Credential() != "" {
			t.Errorf("credential must stay empty for profile %q", raw)
		}
	}
}

func TestSet_WritesStorageAndMemory(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, nil)

	if err := store.Set("tok", testProfile); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	token, ok, _ := storage.Get(KeyToken)
	if !ok || token != "tok" {
		t.Errorf("expected stored token, got %q (ok=%v)", token, ok)
	}
	user, ok, _ := storage.Get(KeyUser)
	if !ok || user != `{"id":1,"name":"Ada","email":"ada@example.com"}` {
		t.Errorf("unexpected stored user %q", user)
	}

	// A fresh store over the same storage sees the same session.
	other := NewStore(storage, nil)
	if !other.Restore() {
		t.Fatal("expected restore after Set")
	}
	if p, _ := other.Profile(); p != testProfile {
		t.Errorf("expected %+v, got %+v", testProfile, p)
	}
}

func TestSnapshot(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)
	if snap := store.Snapshot(); snap.Present {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
	if err := store.Set("tok", testProfile); err != nil {
		t.Fatal(err)
	}
	snap := store.Snapshot()
	if !snap.Present || snap.Credential != "tok" || snap.Profile != testProfile {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestSet_EmptyCredential(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)
	if err := store.Set("  ", testProfile); !errors.Is(err, ErrEmptyCredential) {
		t.Errorf("expected ErrEmptyCredential, got %v", err)
	}
	if store.Authenticated() {
		t.Error("expected unauthenticated state")
	}
}

func TestSet_StorageFailureLeavesMemoryUntouched(t *testing.T) {
	storage := NewMemoryStorage()
	storage.SetErr = errors.New("disk full")
	store := NewStore(storage, nil)

	if err := store.Set("tok", testProfile); err == nil {
		t.Fatal("expected error")
	}
	if store.Authenticated() {
		t.Error("memory must not change when storage write fails")
	}
}

func TestClear_RemovesBothKeys(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, nil)
	if err := store.Set("tok", testProfile); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if storage.Len() != 0 {
		t.Errorf("expected empty storage, got %d keys", storage.Len())
	}
	if store.Authenticated() || store.Credential() != "" {
		t.Error("expected unauthenticated state")
	}
}

func TestClear_StorageFailureStillClearsMemory(t *testing.T) {
	storage := NewMemoryStorage()
	store := NewStore(storage, nil)
	store.Set("tok", testProfile)
	storage.DeleteErr = errors.New("read-only")

	if err := store.Clear(); err == nil {
		t.Error("expected storage error")
	}
	if store.Authenticated() {
		t.Error("memory must be cleared")
	}
}

func TestCredentialExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "ada@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	store := NewStore(NewMemoryStorage(), nil)
	store.Set(token, testProfile)

	got, ok := store.CredentialExpiry()
	if !ok {
		t.Fatal("expected expiry to be decoded")
	}
	if !got.Equal(exp) {
		t.Errorf("expected %v, got %v", exp, got)
	}
}

func TestCredentialExpiry_OpaqueToken(t *testing.T) {
	store := NewStore(NewMemoryStorage(), nil)
	store.Set("opaque-token", testProfile)

	if _, ok := store.CredentialExpiry(); ok {
		t.Error("expected no expiry for opaque token")
	}
}

func TestFileStorage_RoundTripAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := NewFileStorage(path)

	if err := fs.Set(map[string]string{KeyToken: "tok", KeyUser: "{}"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}

	v, ok, err := fs.Get(KeyToken)
	if err != nil || !ok || v != "tok" {
		t.Errorf("unexpected Get result %q %v %v", v, ok, err)
	}

	if err := fs.Delete(KeyToken, KeyUser); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("session file should be removed when empty")
	}

	// Deleting again is not an error.
	if err := fs.Delete(KeyToken); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("garbage"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	fs := NewFileStorage(path)

	if _, _, err := fs.Get(KeyToken); err == nil {
		t.Error("expected parse error")
	}

	store := NewStore(fs, nil)
	if store.Restore() {
		t.Error("corrupt storage must restore as signed out")
	}

	// Writing replaces the corrupt contents.
	if err := store.Set("tok", testProfile); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !NewStore(fs, nil).Restore() {
		t.Error("expected restore after rewrite")
	}
}
