// Package api exposes the dashboard's HTTP interface: session login, the
// scanning tools, and stored scan retrieval. All tool and scan routes sit
// behind session authentication; /metrics and /healthz do not.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/scandeck/scandeck/pkg/auth"
	"github.com/scandeck/scandeck/pkg/headercheck"
	"github.com/scandeck/scandeck/pkg/jsonutil"
	"github.com/scandeck/scandeck/pkg/metrics"
	"github.com/scandeck/scandeck/pkg/netprobe"
	"github.com/scandeck/scandeck/pkg/payloads"
	"github.com/scandeck/scandeck/pkg/scan"
	"github.com/scandeck/scandeck/pkg/store"
)

// Server holds the wired dependencies of the HTTP interface.
type Server struct {
	Store  *store.Store
	Auth   *auth.Service
	XSS    *scan.XSSScanner
	SQLi   *scan.SQLiScanner
	Header *headercheck.Checker
	Logger *slog.Logger
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.handleLogin)

	authed := func(h http.HandlerFunc) http.Handler {
		return s.Auth.Middleware(h)
	}
	mux.Handle("POST /api/tools/xss-scan", authed(s.handleXSSScan))
	mux.Handle("POST /api/tools/sql-injection", authed(s.handleSQLiScan))
	mux.Handle("POST /api/tools/security-headers", authed(s.handleSecurityHeaders))
	mux.Handle("POST /api/tools/port-probe", authed(s.handlePortProbe))
	mux.Handle("POST /api/tools/dns-lookup", authed(s.handleDNSLookup))
	mux.Handle("GET /api/scans", authed(s.handleListScans))
	mux.Handle("GET /api/scans/{id}", authed(s.handleGetScan))

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonutil.MarshalWrite(w, v); err != nil {
		s.logger().Error("write response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := jsonutil.UnmarshalRead(r.Body, v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decode(w, r, &req) {
		return
	}
	token, err := s.Auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		s.logger().Error("login failed", slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

type xssScanRequest struct {
	URL            string `json:"url"`
	CustomPayloads string `json:"customPayloads"`
	ScanType       string `json:"scanType"`
	ScanDepth      string `json:"scanDepth"`
}

type scanResponse struct {
	ScanID  int64 `json:"scanId"`
	Results any   `json:"results"`
}

func (s *Server) handleXSSScan(w http.ResponseWriter, r *http.Request) {
	var req xssScanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	result := s.XSS.Run(r.Context(), scan.XSSOptions{
		URL:            req.URL,
		CustomPayloads: req.CustomPayloads,
		ScanType:       req.ScanType,
		Depth:          payloads.XSSDepth(req.ScanDepth),
	})
	s.respondWithScan(w, r, req.URL, "xss", result)
}

type sqliScanRequest struct {
	URL          string `json:"url"`
	ParamNames   string `json:"paramNames"`
	TestLevel    string `json:"testLevel"`
	IncludeAuth  bool   `json:"includeAuth"`
	AuthUsername string `json:"authUsername"`
	AuthPassword string `json:"authPassword"`
}

func (s *Server) handleSQLiScan(w http.ResponseWriter, r *http.Request) {
	var req sqliScanRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	result := s.SQLi.Run(r.Context(), scan.SQLiOptions{
		URL:          req.URL,
		ParamNames:   req.ParamNames,
		Level:        payloads.SQLiLevel(req.TestLevel),
		IncludeAuth:  req.IncludeAuth,
		AuthUsername: req.AuthUsername,
		AuthPassword: req.AuthPassword,
	})
	s.respondWithScan(w, r, req.URL, "sql-injection", result)
}

// respondWithScan persists a finished scan under the requesting user, writes
// the activity log entry, and answers with the scan id and results. Scans
// whose probing ran are always persisted as completed, fatal errors included.
func (s *Server) respondWithScan(w http.ResponseWriter, r *http.Request, targetURL, scanType string, result any) {
	userID, _ := auth.UserID(r.Context())
	scanID, err := s.Store.CreateScan(r.Context(), userID, targetURL, scanType, "completed", result)
	if err != nil {
		s.logger().Error("persist scan", slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "failed to persist scan")
		return
	}
	detail := fmt.Sprintf("%s scan of %s", scanType, targetURL)
	if _, err := s.Store.CreateActivity(r.Context(), userID, "scan", detail); err != nil {
		s.logger().Warn("activity log write failed", slog.String("error", err.Error()))
	}
	s.writeJSON(w, http.StatusOK, scanResponse{ScanID: scanID, Results: result})
}

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleSecurityHeaders(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		s.writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	result := s.Header.Run(r.Context(), req.URL)
	s.respondWithScan(w, r, req.URL, "security-headers", result)
}

type portProbeRequest struct {
	Host  string `json:"host"`
	Ports []int  `json:"ports"`
}

func (s *Server) handlePortProbe(w http.ResponseWriter, r *http.Request) {
	var req portProbeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Host == "" {
		s.writeError(w, http.StatusBadRequest, "host is required")
		return
	}
	result := netprobe.ProbePorts(r.Context(), req.Host, req.Ports)
	s.respondWithScan(w, r, req.Host, "port-probe", result)
}

type dnsLookupRequest struct {
	Host string `json:"host"`
}

func (s *Server) handleDNSLookup(w http.ResponseWriter, r *http.Request) {
	var req dnsLookupRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Host == "" {
		s.writeError(w, http.StatusBadRequest, "host is required")
		return
	}
	result := netprobe.LookupDNS(r.Context(), req.Host)
	userID, _ := auth.UserID(r.Context())
	if _, err := s.Store.CreateActivity(r.Context(), userID, "dns-lookup", req.Host); err != nil {
		s.logger().Warn("activity log write failed", slog.String("error", err.Error()))
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	scans, err := s.Store.ListScans(r.Context(), userID)
	if err != nil {
		s.logger().Error("list scans", slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}
	if scans == nil {
		scans = []*store.Scan{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"scans": scans})
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid scan id")
		return
	}
	sc, err := s.Store.GetScan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		s.logger().Error("get scan", slog.String("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "failed to load scan")
		return
	}
	userID, _ := auth.UserID(r.Context())
	if sc.OwnerID != userID {
		s.writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	s.writeJSON(w, http.StatusOK, sc)
}
