package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Chargde-Porcupine/SHtack/internal/audit"
	"github.com/Chargde-Porcupine/SHtack/internal/queue"
	"github.com/Chargde-Porcupine/SHtack/internal/token"
)

func newTestServer(tokens ...string) (*Server, *bytes.Buffer) {
	var buf bytes.Buffer
	s := NewServer(queue.New(), token.NewRegistry(), audit.NewLogger(&buf))
	s.Mint = token.Sequence(tokens...)
	return s, &buf
}

func postCommand(h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	var body string
	if form != nil {
		body = form.Encode()
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func command(v string) url.Values {
	return url.Values{CommandField: {v}}
}

func TestHandleIndex(t *testing.T) {
	s, _ := newTestServer()
	s.now = func() time.Time { return time.Date(1993, 6, 30, 21, 49, 8, 0, time.Local) }
	h := s.Handler()

	rr := get(h, "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	want := "You have reached the Shtack API, version 1.0. It is currently Wed Jun 30 21:49:08 1993 wherever this server is running."
	if rr.Body.String() != want {
		t.Errorf("body =\n  %q\nwant\n  %q", rr.Body.String(), want)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
	if s.Queue.Len() != 0 || s.Capabilities.Count() != 0 {
		t.Error("index should have no side effects")
	}
}

func TestHandleIndex_OnlyExactRoot(t *testing.T) {
	s, _ := newTestServer()
	rr := get(s.Handler(), "/nothing-here")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rr.Code)
	}
}

func TestHandleStage_WellKnown(t *testing.T) {
	s, buf := newTestServer("1804289383")
	h := s.Handler()

	rr := postCommand(h, "/push", command("ls"))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rr.Code)
	}
	if rr.Body.String() != "/push/1804289383" {
		t.Errorf("body = %q, want %q", rr.Body.String(), "/push/1804289383")
	}
	if loc := rr.Header().Get("Location"); loc != "" {
		t.Errorf("expected no Location header, got %q", loc)
	}
	if s.Queue.Len() != 1 {
		t.Errorf("expected 1 queued command, got %d", s.Queue.Len())
	}
	if _, ok := s.Capabilities.Lookup(token.NamespacePush, "1804289383"); !ok {
		t.Error("minted push capability should be live")
	}
	if !strings.Contains(buf.String(), `SHTACK STAGE`) || !strings.Contains(buf.String(), `next="/push/1804289383"`) {
		t.Errorf("expected STAGE audit line, got %q", buf.String())
	}
}

func TestHandleStage_WellKnownNeverConsumed(t *testing.T) {
	s, _ := newTestServer("1", "2", "3")
	h := s.Handler()

	for i, want := range []string{"/push/1", "/push/2", "/push/3"} {
		rr := postCommand(h, "/push", command("ls"))
		if rr.Code != http.StatusSeeOther || rr.Body.String() != want {
			t.Fatalf("stage %d: got %d %q, want 303 %q", i, rr.Code, rr.Body.String(), want)
		}
	}
	if s.Capabilities.Count() != 3 {
		t.Errorf("expected 3 live capabilities, got %d", s.Capabilities.Count())
	}
}

func TestHandleStage_TrailingSlashIsWellKnown(t *testing.T) {
	s, _ := newTestServer("5")
	rr := postCommand(s.Handler(), "/push/", command("pwd"))

	if rr.Code != http.StatusSeeOther || rr.Body.String() != "/push/5" {
		t.Errorf("got %d %q, want 303 %q", rr.Code, rr.Body.String(), "/push/5")
	}
}

func TestHandleStage_MissingCommand(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"no body", nil},
		{"other field", url.Values{"cmd": {"ls"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, buf := newTestServer("1")
			rr := postCommand(s.Handler(), "/push", tt.form)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rr.Code)
			}
			if rr.Body.String() != MsgMissingCommand {
				t.Errorf("body = %q, want %q", rr.Body.String(), MsgMissingCommand)
			}
			if s.Queue.Len() != 0 || s.Capabilities.Count() != 0 {
				t.Error("rejected request should not change state")
			}
			if !strings.Contains(buf.String(), `reason="missing command field"`) {
				t.Errorf("expected REJECT audit line, got %q", buf.String())
			}
		})
	}
}

func TestHandleStage_QueryStringIgnored(t *testing.T) {
	s, _ := newTestServer("1")
	rr := postCommand(s.Handler(), "/push?command=ls", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("command in query string should not count, got %d", rr.Code)
	}
}

func TestHandleStage_EmptyCommandAccepted(t *testing.T) {
	s, _ := newTestServer("1")
	rr := postCommand(s.Handler(), "/push", command(""))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("empty command should be staged, got %d", rr.Code)
	}
	if s.Queue.Len() != 1 {
		t.Errorf("expected 1 queued command, got %d", s.Queue.Len())
	}
}

func TestHandleStage_Multipart(t *testing.T) {
	s, _ := newTestServer("9")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField(CommandField, "uptime"); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/push", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rr.Code)
	}
	if got, _ := s.Queue.Pop(); got != "uptime" {
		t.Errorf("queued %q, want %q", got, "uptime")
	}
}

func TestHandleStage_Sanitizes(t *testing.T) {
	s, buf := newTestServer("1")
	postCommand(s.Handler(), "/push", command("sudo rm -rf /"))

	got, _ := s.Queue.Pop()
	if got != "rm -rf /" {
		t.Errorf("queued %q, want %q", got, "rm -rf /")
	}
	if !strings.Contains(buf.String(), `raw="sudo rm -rf /"`) {
		t.Errorf("audit line should record raw command, got %q", buf.String())
	}
}

func TestHandleStage_SecondStage(t *testing.T) {
	s, _ := newTestServer("100", "200")
	h := s.Handler()

	postCommand(h, "/push", command("ls"))
	rr := postCommand(h, "/push/100", command("whoami"))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", rr.Code)
	}
	if rr.Body.String() != "/pop/200" {
		t.Errorf("body = %q, want %q", rr.Body.String(), "/pop/200")
	}
	if _, ok := s.Capabilities.Lookup(token.NamespacePush, "100"); ok {
		t.Error("push capability should be consumed")
	}
	if _, ok := s.Capabilities.Lookup(token.NamespacePop, "200"); !ok {
		t.Error("pop capability should be live")
	}
	if s.Queue.Len() != 2 {
		t.Errorf("expected 2 queued commands, got %d", s.Queue.Len())
	}

	// Reusing the consumed capability fails
	rr = postCommand(h, "/push/100", command("whoami"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("reused push capability: expected 404, got %d", rr.Code)
	}
	if s.Queue.Len() != 2 {
		t.Errorf("reuse should not stage, queue has %d", s.Queue.Len())
	}
}

func TestHandleStage_MissingCommandKeepsCapability(t *testing.T) {
	s, _ := newTestServer("100", "200")
	h := s.Handler()

	postCommand(h, "/push", command("ls"))
	rr := postCommand(h, "/push/100", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if _, ok := s.Capabilities.Lookup(token.NamespacePush, "100"); !ok {
		t.Fatal("400 should leave the capability live")
	}

	rr = postCommand(h, "/push/100", command("date"))
	if rr.Code != http.StatusSeeOther {
		t.Errorf("retry: expected 303, got %d", rr.Code)
	}
}

func TestHandleStage_UnknownCapability(t *testing.T) {
	s, buf := newTestServer("1")
	h := s.Handler()

	tests := []string{"/push/12345", "/push/1/extra"}
	for _, target := range tests {
		rr := postCommand(h, target, command("ls"))
		if rr.Code != http.StatusNotFound {
			t.Errorf("POST %s: expected 404, got %d", target, rr.Code)
		}
	}
	if s.Queue.Len() != 0 {
		t.Errorf("unknown capability should not stage, queue has %d", s.Queue.Len())
	}
	if !strings.Contains(buf.String(), "SHTACK REJECT") {
		t.Errorf("expected REJECT audit line, got %q", buf.String())
	}
}

func TestHandleStage_PopCapabilityIsNotPush(t *testing.T) {
	s, _ := newTestServer("100", "200")
	h := s.Handler()

	postCommand(h, "/push", command("ls"))
	postCommand(h, "/push/100", command("pwd"))

	rr := postCommand(h, "/push/200", command("ls"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("pop token on push path: expected 404, got %d", rr.Code)
	}
}

func TestHandleRelease(t *testing.T) {
	s, buf := newTestServer("100", "200")
	h := s.Handler()

	postCommand(h, "/push", command("ls"))
	postCommand(h, "/push/100", command("whoami"))

	rr := get(h, "/pop/200")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "ls" {
		t.Errorf("body = %q, want %q", rr.Body.String(), "ls")
	}
	if s.Queue.Len() != 1 {
		t.Errorf("expected 1 queued command, got %d", s.Queue.Len())
	}
	if !strings.Contains(buf.String(), `SHTACK RELEASE`) {
		t.Errorf("expected RELEASE audit line, got %q", buf.String())
	}

	rr = get(h, "/pop/200")
	if rr.Code != http.StatusNotFound {
		t.Errorf("reused pop capability: expected 404, got %d", rr.Code)
	}
}

func TestHandleRelease_Empty(t *testing.T) {
	s, buf := newTestServer()
	s.Capabilities.Register(token.NamespacePop, "7")
	h := s.Handler()

	rr := get(h, "/pop/7")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if rr.Body.String() != MsgEmpty {
		t.Errorf("body = %q, want %q", rr.Body.String(), MsgEmpty)
	}
	if _, ok := s.Capabilities.Lookup(token.NamespacePop, "7"); ok {
		t.Error("capability should be consumed even when the queue is empty")
	}
	if !strings.Contains(buf.String(), "SHTACK EMPTY") {
		t.Errorf("expected EMPTY audit line, got %q", buf.String())
	}

	rr = get(h, "/pop/7")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second GET: expected 404, got %d", rr.Code)
	}
}

func TestHandleRelease_PushCapabilityIsNotPop(t *testing.T) {
	s, _ := newTestServer("100")
	h := s.Handler()

	postCommand(h, "/push", command("ls"))
	rr := get(h, "/pop/100")
	if rr.Code != http.StatusNotFound {
		t.Errorf("push token on pop path: expected 404, got %d", rr.Code)
	}
	if _, ok := s.Capabilities.Lookup(token.NamespacePush, "100"); !ok {
		t.Error("push capability should be untouched")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer("1")
	h := s.Handler()

	if rr := get(h, "/push"); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /push: expected 405, got %d", rr.Code)
	}
	if rr := postCommand(h, "/", command("ls")); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /: expected 405, got %d", rr.Code)
	}
}
