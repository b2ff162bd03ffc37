package auth_test

import (
	"context"
	"errors"
	"testing"

	"tman/internal/auth"
	"tman/internal/gateway"
	"tman/internal/service"
	"tman/internal/session"
	"tman/internal/testutil"
)

func newFlow(t *testing.T) (*auth.Flow, *testutil.FakeService, *session.Store, *session.MemoryStorage) {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddUser(1, "Ada", "ada@example.com", "secret")
	storage := session.NewMemoryStorage()
	store := session.NewStore(storage, nil)
	return auth.NewFlow(svc, store), svc, store, storage
}

func TestSubmit_LoginSuccess(t *testing.T) {
	flow, _, store, _ := newFlow(t)

	p, err := flow.Submit(context.Background(), auth.Form{Email: "ada@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	want := service.Profile{ID: 1, Name: "Ada", Email: "ada@example.com"}
	if p != want {
		t.Errorf("expected %+v, got %+v", want, p)
	}
	if !store.Authenticated() || store.Credential() != testutil.TokenFor("ada@example.com") {
		t.Error("expected session to be populated")
	}
	if st := flow.State(); st.Phase != auth.Idle || st.Message != "" {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestSubmit_InvalidPassword(t *testing.T) {
	flow, svc, store, storage := newFlow(t)
	svc.LoginErr = &gateway.APIError{Status: 400, Message: "invalid password"}

	_, err := flow.Submit(context.Background(), auth.Form{Email: "ada@example.com", Password: "bad"})
	if err == nil {
		t.Fatal("expected error")
	}

	st := flow.State()
	if st.Phase != auth.Failed || st.Message != "invalid password" {
		t.Errorf("expected Failed with 'invalid password', got %+v", st)
	}
	if store.Authenticated() || storage.Len() != 0 {
		t.Error("session store must not be populated")
	}
}

func TestSubmit_RegisterMode(t *testing.T) {
	flow, _, store, _ := newFlow(t)
	flow.Toggle()
	if flow.State().Mode != auth.RegisterMode {
		t.Fatal("expected RegisterMode after toggle")
	}

	p, err := flow.Submit(context.Background(), auth.Form{Name: "Bob", Email: "bob@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if p.Name != "Bob" || p.Email != "bob@example.com" {
		t.Errorf("unexpected profile %+v", p)
	}
	if got, _ := store.Profile(); got != p {
		t.Errorf("store profile %+v does not match %+v", got, p)
	}
}

func TestSubmit_RegisterDuplicateKeepsMode(t *testing.T) {
	flow, _, _, _ := newFlow(t)
	flow.SetMode(auth.RegisterMode)

	_, err := flow.Submit(context.Background(), auth.Form{Name: "Ada", Email: "ada@example.com", Password: "x"})
	if err == nil {
		t.Fatal("expected duplicate error")
	}
	st := flow.State()
	if st.Mode != auth.RegisterMode || st.Message != testutil.MsgEmailExists {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestToggle_ClearsError(t *testing.T) {
	flow, _, _, _ := newFlow(t)
	flow.Submit(context.Background(), auth.Form{Email: "ada@example.com", Password: "bad"})
	if flow.State().Phase != auth.Failed {
		t.Fatal("expected Failed")
	}

	flow.Toggle()
	if st := flow.State(); st.Phase != auth.Idle || st.Message != "" {
		t.Errorf("expected idle after toggle, got %+v", st)
	}
}

// blockingService holds Login until release is closed.
type blockingService struct {
	*testutil.FakeService
	entered chan struct{}
	release chan struct{}
}

func (b *blockingService) Login(ctx context.Context, email, password string) (service.AuthResult, error) {
	close(b.entered)
	<-b.release
	return b.FakeService.Login(ctx, email, password)
}

func TestSubmit_SecondSubmitWhileBusy(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddUser(1, "Ada", "ada@example.com", "secret")
	svc := &blockingService{FakeService: fake, entered: make(chan struct{}), release: make(chan struct{})}
	flow := auth.NewFlow(svc, session.NewStore(session.NewMemoryStorage(), nil))
	form := auth.Form{Email: "ada@example.com", Password: "secret"}

	done := make(chan error, 1)
	go func() {
		_, err := flow.Submit(context.Background(), form)
		done <- err
	}()
	<-svc.entered

	if st := flow.State(); st.Phase != auth.Submitting {
		t.Errorf("expected Submitting, got %+v", st)
	}
	if _, err := flow.Submit(context.Background(), form); !errors.Is(err, auth.ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	close(svc.release)
	if err := <-done; err != nil {
		t.Errorf("first submit failed: %v", err)
	}
}

func TestLogout_ClearsSessionFromFailedState(t *testing.T) {
	flow, _, store, storage := newFlow(t)
	if _, err := flow.Submit(context.Background(), auth.Form{Email: "ada@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	flow.Submit(context.Background(), auth.Form{Email: "ada@example.com", Password: "bad"})

	if err := flow.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if store.Authenticated() || storage.Len() != 0 {
		t.Error("expected both durable keys cleared")
	}
	if st := flow.State(); st.Mode != auth.LoginMode || st.Phase != auth.Idle {
		t.Errorf("unexpected state %+v", st)
	}
}
