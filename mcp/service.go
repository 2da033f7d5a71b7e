package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	protoclient "github.com/viant/mcp-protocol/client"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	"go.uber.org/zap"

	oa "github.com/prodhub/mcp-m365/auth"
	"github.com/prodhub/mcp-m365/assistant"
	"github.com/prodhub/mcp-m365/graph"
	"github.com/prodhub/mcp-m365/scheduler"
)

// Service wires the graph manager, the scheduler engine and the
// conversational assistant behind the MCP tool surface.
type Service struct {
	graphMgr  *graph.Manager
	scheduler *scheduler.Service
	baseURL   string
	useText   bool
	pending   *PendingAuths
	auth      *oa.Service
	azure     *cred.Azure
	tenantID  string
	clientID  string
	logger    *zap.Logger

	// service-level lazy cache of DeviceCodeCredential per namespace+alias
	credMu sync.RWMutex
	creds  map[string]*azidentity.DeviceCodeCredential
}

func NewService(cfg *Config, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	useText := !cfg.UseData
	// Optionally resolve Azure OAuth2 client from scy EncodedResource.
	var az *cred.Azure
	if cfg.AzureRef != "" {
		res := cfg.AzureRef.Decode(context.Background(), cred.Azure{})
		if sec, err := scy.New().Load(context.Background(), res); err == nil {
			if v, ok := sec.Target.(*cred.Azure); ok {
				az = v
			}
		}
	}

	clientID := cfg.ClientID
	if az != nil && az.ClientID != "" {
		clientID = az.ClientID
	}
	tenantID := cfg.TenantID

	return &Service{
		graphMgr:  graph.NewManager(clientID, cfg.SecretsBase),
		scheduler: scheduler.New(),
		baseURL:   cfg.CallbackBaseURL,
		useText:   useText,
		pending:   NewPendingAuths(),
		auth:      oa.New(),
		azure:     az,
		tenantID:  tenantID,
		clientID:  clientID,
		logger:    logger,
		creds:     map[string]*azidentity.DeviceCodeCredential{},
	}
}

// Assistant builds a conversational assistant bound to an account alias.
func (s *Service) Assistant(alias string) *assistant.Assistant {
	account := graph.Account{Alias: alias, TenantID: s.tenantID}
	source := assistant.NewGraphSource(s.graphMgr, account)
	return assistant.New(source, s.scheduler, s.logger)
}

// ChatHandler serves the conversational endpoint: POST a JSON body
// {"text": ..., "account": ...} and receive a Markdown reply.
func (s *Service) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
			return
		case http.MethodPost:
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var in struct {
			Text    string `json:"text"`
			Account string `json:"account"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if in.Account == "" {
			in.Account = "default"
		}
		var reply string
		if strings.TrimSpace(in.Text) == "" {
			reply = assistant.WelcomeText
		} else {
			reply = s.Assistant(in.Account).Respond(r.Context(), in.Text)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"text": reply})
	}
}

// DeviceHandler serves the device login page for a pending auth UUID.
func (s *Service) DeviceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// URL: /m365/auth/device/{uuid}?alias=...&elicitationId=...
		path := r.URL.Path
		parts := strings.Split(strings.Trim(path, "/"), "/")
		if len(parts) != 4 { // m365 auth device {uuid}
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		uuid := parts[3]
		pend, ok := s.pending.Get(uuid)
		if !ok {
			http.Error(w, "no pending auth", http.StatusNotFound)
			return
		}
		msg := s.graphMgr.DevicePrompt(pend.Alias)
		if msg == "" {
			deadline := time.Now().Add(8 * time.Second)
			for msg == "" && time.Now().Before(deadline) {
				time.Sleep(200 * time.Millisecond)
				msg = s.graphMgr.DevicePrompt(pend.Alias)
			}
		}
		if msg == "" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = fmt.Fprint(w, buildWaitingForDeviceHTML())
			return
		}
		// Render a clickable link and highlight the code for easier UX.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, buildDeviceLoginHTML(msg))
	}
}

// buildDeviceLoginHTML converts the Azure device prompt into a clickable HTML with copyable code.
func buildDeviceLoginHTML(msg string) string {
	url := extractURL(msg)
	code := extractCode(msg)
	escURL := html.EscapeString(url)
	escCode := html.EscapeString(code)
	// Fallback rendering if we couldn't parse a code
	if escCode == "" {
		escMsg := html.EscapeString(msg)
		return fmt.Sprintf(`<html><body>
<h3>Sign in to Microsoft 365</h3>
<p>Open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
<pre>%[2]s</pre>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, escURL, escMsg)
	}
	return fmt.Sprintf(`<html><body style="font-family: -apple-system, Segoe UI, Roboto, sans-serif;">
<h3>Sign in to Microsoft 365</h3>
<p>Click to open: <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a></p>
<p>Then enter this code:</p>
<p style="font-size: 1.4em; font-weight: 600;"><code>%[2]s</code> <button onclick="navigator.clipboard.writeText('%[3]s')">Copy</button></p>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, escURL, escCode, escCode)
}

func buildWaitingForDeviceHTML() string {
	url := html.EscapeString("https://microsoft.com/devicelogin")
	return fmt.Sprintf(`<!doctype html>
<html><head>
<meta http-equiv="refresh" content="2">
<meta charset="utf-8">
<title>Sign in to Microsoft 365</title>
<style>body{font-family:-apple-system,Segoe UI,Roboto,sans-serif;margin:24px}</style>
</head><body>
<h3>Sign in to Microsoft 365</h3>
<p>Preparing device login… this page refreshes automatically.</p>
<p>If it takes too long, you can open <a href="%[1]s" target="_blank" rel="noopener noreferrer">%[1]s</a> and follow the instructions.</p>
<p>Keep this tab open; return to your assistant after completing sign-in.</p>
</body></html>`, url)
}

// PendingListHandler returns JSON of pending auths for a namespace.
func (s *Service) PendingListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := r.URL.Query().Get("namespace")
		if ns == "" {
			if v, err := s.auth.Namespace(r.Context()); err == nil {
				ns = v
			}
		}
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		list := s.pending.ListNamespace(ns)
		type row struct{ UUID, Alias, TenantID, Namespace string }
		out := make([]row, 0, len(list))
		for _, v := range list {
			out = append(out, row{UUID: v.UUID, Alias: v.Alias, TenantID: v.TenantID, Namespace: v.Namespace})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

// PendingClearHandler clears all pending auths for a namespace.
func (s *Service) PendingClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ns := r.URL.Query().Get("namespace")
		if ns == "" {
			if v, err := s.auth.Namespace(r.Context()); err == nil {
				ns = v
			}
		}
		if ns == "" {
			http.Error(w, "namespace required", http.StatusBadRequest)
			return
		}
		cleared := s.pending.ClearNamespace(ns)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"cleared": len(cleared), "uuids": cleared})
	}
}

func (s *Service) GraphManager() *graph.Manager     { return s.graphMgr }
func (s *Service) Scheduler() *scheduler.Service    { return s.scheduler }
func (s *Service) UseTextField() bool               { return s.useText }
func (s *Service) BaseURL() string                  { return s.baseURL }
func (s *Service) Pending() *PendingAuths           { return s.pending }
func (s *Service) Auth() *oa.Service                { return s.auth }
func (s *Service) TenantID() string                 { return s.tenantID }
func (s *Service) ClientID() string                 { return s.clientID }

// NewOperationsHook allows passing protocol client operations if needed later.
func (s *Service) NewOperationsHook(_ protoclient.Operations) {}

// Credential returns an azidentity.DeviceCodeCredential cached per account alias.
// It delegates acquisition to the graph manager on cache miss and stores it until process restart.
func (s *Service) Credential(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*azidentity.DeviceCodeCredential, error) {
	ns, _ := s.auth.Namespace(ctx)
	if ns == "" {
		ns = "default"
	}
	key := ns + "|" + alias
	s.credMu.RLock()
	if c := s.creds[key]; c != nil {
		s.credMu.RUnlock()
		return c, nil
	}
	s.credMu.RUnlock()
	credential, err := s.graphMgr.Credential(ctx, alias, tenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	s.credMu.Lock()
	if existing := s.creds[key]; existing != nil {
		s.credMu.Unlock()
		return existing, nil
	}
	s.creds[key] = credential
	s.credMu.Unlock()
	return credential, nil
}

// Minimal helpers to extract device login URL/code from Azure prompt message.
func extractURL(msg string) string {
	if m := regexp.MustCompile(`https?://[^\s]+`).FindString(msg); m != "" {
		return m
	}
	return "https://microsoft.com/devicelogin"
}

func extractCode(msg string) string {
	if m := regexp.MustCompile(`(?i)code\s+([A-Z0-9-]+)`).FindStringSubmatch(msg); len(m) == 2 {
		return m[1]
	}
	return ""
}
