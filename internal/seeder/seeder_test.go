package seeder

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/nmslite/seeder/internal/client"
	"github.com/nmslite/seeder/internal/nmsmock"
	"github.com/nmslite/seeder/internal/seed"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustLoad(t *testing.T, content string) []seed.Item {
	t.Helper()
	var items []seed.Item
	if err := json.Unmarshal([]byte(content), &items); err != nil {
		t.Fatal(err)
	}
	return items
}

// recordedCall is one request the fake server observed.
type recordedCall struct {
	Path       string
	Credential client.CredentialProfileRequest
	Discovery  client.DiscoveryProfileRequest
}

// fakeNMS records create calls in arrival order and lets tests fail
// individual credential creates by name.
type fakeNMS struct {
	t            *testing.T
	calls        []recordedCall
	failCredFor  map[string]bool
	dropIDFor    map[string]bool
	nextID       int
	discoveryIDs map[string]string // discovery name -> referenced credential id
}

func newFakeNMS(t *testing.T) *fakeNMS {
	return &fakeNMS{
		t:            t,
		failCredFor:  map[string]bool{},
		dropIDFor:    map[string]bool{},
		discoveryIDs: map[string]string{},
	}
}

func (f *fakeNMS) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case client.CredentialsPath:
			var req client.CredentialProfileRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				f.t.Fatal(err)
			}
			f.calls = append(f.calls, recordedCall{Path: r.URL.Path, Credential: req})

			if f.failCredFor[req.Name] {
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, `{"error":"injected failure"}`)
				return
			}
			w.WriteHeader(http.StatusCreated)
			if f.dropIDFor[req.Name] {
				io.WriteString(w, `{}`)
				return
			}
			f.nextID++
			json.NewEncoder(w).Encode(map[string]string{"id": "c-" + strconv.Itoa(f.nextID)})
		case client.DiscoveryPath, client.DiscoveryProfilesPath:
			var req client.DiscoveryProfileRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				f.t.Fatal(err)
			}
			f.calls = append(f.calls, recordedCall{Path: r.URL.Path, Discovery: req})
			f.discoveryIDs[req.Name] = req.CredentialProfileID
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "d-" + req.Name})
		default:
			f.t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestRunHappyPath(t *testing.T) {
	fake := newFakeNMS(t)
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	items := mustLoad(t, `[
		{"request_id":"host1","target":"10.0.0.5","port":5985,"credentials":{"user":"a","pass":"b"}},
		{"request_id":"host2","target":"10.0.0.6","port":5986,"credentials":{"user":"c","pass":"d"}}
	]`)

	runner := New(client.New(srv.URL, testLogger()), testLogger(), Options{
		DiscoveryPath:  client.DiscoveryPath,
		AcceptStatuses: []int{http.StatusCreated},
		InputFile:      "poll_input.json",
	})

	summary, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Total != 2 || summary.Created != 2 || summary.Skipped != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	// Exactly N credential calls and N discovery calls, strictly interleaved
	// in file order.
	wantPaths := []string{client.CredentialsPath, client.DiscoveryPath, client.CredentialsPath, client.DiscoveryPath}
	if len(fake.calls) != len(wantPaths) {
		t.Fatalf("expected %d calls, got %d", len(wantPaths), len(fake.calls))
	}
	for i, want := range wantPaths {
		if fake.calls[i].Path != want {
			t.Errorf("call %d path = %q, want %q", i, fake.calls[i].Path, want)
		}
	}

	cred := fake.calls[0].Credential
	if cred.Name != "host1_creds" || cred.Protocol != "winrm" {
		t.Errorf("unexpected credential request: %+v", cred)
	}
	if cred.Payload != `{"user": "a", "pass": "b"}` {
		t.Errorf("unexpected credential payload: %q", cred.Payload)
	}
	if cred.Description != "Imported from poll_input.json" {
		t.Errorf("unexpected description: %q", cred.Description)
	}

	disc := fake.calls[1].Discovery
	if disc.Name != "host1_discovery" || disc.Target != "10.0.0.5" || disc.Port != 5985 {
		t.Errorf("unexpected discovery request: %+v", disc)
	}
	if !disc.AutoProvision || !disc.AutoRun {
		t.Errorf("expected auto flags set: %+v", disc)
	}

	// Each discovery references the id returned by its own credential create.
	if fake.discoveryIDs["host1_discovery"] != "c-1" {
		t.Errorf("host1_discovery references %q, want c-1", fake.discoveryIDs["host1_discovery"])
	}
	if fake.discoveryIDs["host2_discovery"] != "c-2" {
		t.Errorf("host2_discovery references %q, want c-2", fake.discoveryIDs["host2_discovery"])
	}
}

func TestRunSkipsFailedItem(t *testing.T) {
	fake := newFakeNMS(t)
	fake.failCredFor["host1_creds"] = true
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	items := mustLoad(t, `[
		{"request_id":"host1","target":"10.0.0.5","port":5985,"credentials":{"user":"a"}},
		{"request_id":"host2","target":"10.0.0.6","port":5986,"credentials":{"user":"b"}}
	]`)

	runner := New(client.New(srv.URL, testLogger()), testLogger(), Options{
		DiscoveryPath:  client.DiscoveryPath,
		AcceptStatuses: []int{http.StatusCreated},
		InputFile:      "poll_input.json",
	})

	summary, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Created != 1 || summary.Skipped != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	// Item 1 failed at the credential step, so no discovery call was made for
	// it; item 2 went through both steps.
	wantPaths := []string{client.CredentialsPath, client.CredentialsPath, client.DiscoveryPath}
	if len(fake.calls) != len(wantPaths) {
		t.Fatalf("expected %d calls, got %d", len(wantPaths), len(fake.calls))
	}
	for i, want := range wantPaths {
		if fake.calls[i].Path != want {
			t.Errorf("call %d path = %q, want %q", i, fake.calls[i].Path, want)
		}
	}
	if _, ok := fake.discoveryIDs["host1_discovery"]; ok {
		t.Error("discovery profile was created for the failed item")
	}
}

func TestRunMissingIDIsFatal(t *testing.T) {
	fake := newFakeNMS(t)
	fake.dropIDFor["host1_creds"] = true
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	items := mustLoad(t, `[
		{"request_id":"host1","target":"10.0.0.5","port":5985,"credentials":{"user":"a"}},
		{"request_id":"host2","target":"10.0.0.6","port":5986,"credentials":{"user":"b"}}
	]`)

	runner := New(client.New(srv.URL, testLogger()), testLogger(), Options{
		DiscoveryPath:  client.DiscoveryPath,
		AcceptStatuses: []int{http.StatusCreated},
		InputFile:      "poll_input.json",
	})

	if _, err := runner.Run(context.Background(), items); err == nil {
		t.Fatal("expected error, got nil")
	}
	// The run aborted before any later item was attempted.
	if len(fake.calls) != 1 {
		t.Errorf("expected 1 call before abort, got %d", len(fake.calls))
	}
}

func TestRunAgainstMockServer(t *testing.T) {
	mock, err := nmsmock.NewServer(nmsmock.Options{
		RequireAuth: true,
		Username:    "admin",
		Password:    "admin",
	}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(mock.Router())
	defer srv.Close()

	items := mustLoad(t, `[
		{"request_id":"host1","target":"10.0.0.5","port":5985,"credentials":{"user":"a","pass":"b"}},
		{"request_id":"host2","target":"10.0.0.6","port":5986,"credentials":{"user":"c","pass":"d"}}
	]`)

	c := client.New(srv.URL, testLogger())
	if err := c.Login(context.Background(), "admin", "admin"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	runner := New(c, testLogger(), Options{
		DiscoveryPath:  client.DiscoveryProfilesPath,
		AcceptStatuses: []int{http.StatusOK, http.StatusCreated},
		InputFile:      "poll_input_win_a.json",
	})

	summary, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Created != 2 || summary.Skipped != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	creds := mock.Store().ListCredentialProfiles()
	discs := mock.Store().ListDiscoveryProfiles()
	if len(creds) != 2 || len(discs) != 2 {
		t.Fatalf("expected 2 profiles of each kind, got %d credentials and %d discoveries", len(creds), len(discs))
	}
	for i, disc := range discs {
		if disc.CredentialProfileID != creds[i].ID {
			t.Errorf("discovery %d references %q, want %q", i, disc.CredentialProfileID, creds[i].ID)
		}
	}
	if creds[0].Payload != `{"user": "a", "pass": "b"}` {
		t.Errorf("unexpected stored payload: %q", creds[0].Payload)
	}
}

func TestRunWithoutTokenIsSkippedNotFatal(t *testing.T) {
	mock, err := nmsmock.NewServer(nmsmock.Options{RequireAuth: true}, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(mock.Router())
	defer srv.Close()

	items := mustLoad(t, `[
		{"request_id":"host1","target":"10.0.0.5","port":5985,"credentials":{"user":"a"}}
	]`)

	// No login: every create is rejected with 401, which is an item-level
	// failure, not a fatal one.
	runner := New(client.New(srv.URL, testLogger()), testLogger(), Options{
		DiscoveryPath:  client.DiscoveryProfilesPath,
		AcceptStatuses: []int{http.StatusOK, http.StatusCreated},
		InputFile:      "poll_input.json",
	})

	summary, err := runner.Run(context.Background(), items)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Skipped != 1 || summary.Created != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}
