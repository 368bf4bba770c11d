package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Chargde-Porcupine/SHtack/internal/clog"
	"github.com/Chargde-Porcupine/SHtack/internal/sanitize"
	"github.com/Chargde-Porcupine/SHtack/internal/token"
	"github.com/Chargde-Porcupine/SHtack/internal/version"
)

// StagePath is the well-known path that starts a workflow instance.
// It is always registered and never consumed.
const StagePath = "/push"

// CommandField is the form field carrying the command to stage.
const CommandField = "command"

// Response bodies for the documented failure cases.
const (
	MsgMissingCommand = "Not enough commands given. Try again."
	MsgEmpty          = "The SHtack is empty. /push to add to the Shtack."
)

// maxFormBytes bounds the request body read when parsing the command form.
const maxFormBytes = 1 << 20

// routes builds the request multiplexer. Minted capability paths are not
// registered individually: the {token} handlers look them up in the
// capability registry and answer 404 when they are not live.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST "+StagePath, s.handleStage)
	// {token...} also matches the empty remainder of "/push/", which is
	// treated as the well-known path.
	mux.HandleFunc("POST "+StagePath+"/{token...}", s.handleStage)
	mux.HandleFunc("GET /pop/{token}", s.handleRelease)
	return mux
}

// Greeting returns the index message for the given time.
func Greeting(now time.Time) string {
	return fmt.Sprintf("You have reached the %s API, version %s. It is currently %s wherever this server is running.",
		version.Name, version.Version, now.Format(time.ANSIC))
}

// handleIndex processes GET /. It has no side effects.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, Greeting(s.now()))
}

// handleStage processes POST /push and POST /push/{token}.
//
// On the well-known path it stages the command and mints a push capability
// for the second command. On a minted push capability it consumes that
// capability, stages the command, and mints a pop capability.
func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID(r.Context())
	tok := r.PathValue("token")
	minted := tok != ""

	if minted {
		if _, live := s.Capabilities.Lookup(token.NamespacePush, tok); !live {
			s.notFound(w, r, "push capability not live")
			return
		}
	}

	raw, ok := commandValue(w, r)
	if !ok {
		_ = s.AuditLogger.LogReject(reqID, r.URL.Path, "missing command field")
		writeText(w, http.StatusBadRequest, MsgMissingCommand)
		return
	}
	cmd := sanitize.Sanitize(raw)

	if !minted {
		s.Queue.Push(cmd)
		next := s.Capabilities.Mint(token.NamespacePush, s.Mint)
		s.logStage(reqID, r.URL.Path, raw, cmd, next.Path)
		writeText(w, http.StatusSeeOther, next.Path)
		return
	}

	// Consuming before pushing means that of two requests racing on one
	// capability, only the winner stages anything.
	if !s.Capabilities.Revoke(token.NamespacePush, tok) {
		s.notFound(w, r, "push capability already consumed")
		return
	}
	s.Queue.Push(cmd)
	next := s.Capabilities.Mint(token.NamespacePop, s.Mint)
	s.logStage(reqID, r.URL.Path, raw, cmd, next.Path)
	writeText(w, http.StatusSeeOther, next.Path)
}

// handleRelease processes GET /pop/{token}. The capability is consumed
// whether or not anything was staged.
func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID(r.Context())
	tok := r.PathValue("token")

	if !s.Capabilities.Revoke(token.NamespacePop, tok) {
		s.notFound(w, r, "pop capability not live")
		return
	}

	cmd, ok := s.Queue.Pop()
	if !ok {
		clog.Warn("release on %s found nothing staged (req=%s)", r.URL.Path, reqID)
		_ = s.AuditLogger.LogEmpty(reqID, r.URL.Path)
		writeText(w, http.StatusInternalServerError, MsgEmpty)
		return
	}

	_ = s.AuditLogger.LogRelease(reqID, r.URL.Path, cmd, s.Queue.Len())
	writeText(w, http.StatusOK, cmd)
}

func (s *Server) logStage(reqID, path, raw, cmd, next string) {
	if raw != cmd {
		clog.Debug("sanitized command on %s: %q -> %q (req=%s)", path, raw, cmd, reqID)
	}
	_ = s.AuditLogger.LogStage(reqID, path, raw, cmd, next, s.Queue.Len())
}

// notFound answers exactly like an unregistered route would.
func (s *Server) notFound(w http.ResponseWriter, r *http.Request, reason string) {
	_ = s.AuditLogger.LogReject(RequestID(r.Context()), r.URL.Path, reason)
	http.NotFound(w, r)
}

// commandValue extracts the command field from a URL-encoded or multipart
// body. Returns false if the field is absent or the body cannot be parsed;
// a present but empty field is a valid (empty) command.
func commandValue(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		clog.Debug("parse form on %s: %v", r.URL.Path, err)
		return "", false
	}
	values, ok := r.PostForm[CommandField]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// writeText writes a plain-text response with the given status code.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
