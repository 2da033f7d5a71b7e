package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity/cache"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/viant/afs"

	oaauth "github.com/prodhub/mcp-m365/auth"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// Manager provides Microsoft Graph client instances per account alias.
type Manager struct {
	clientID    string
	secretsBase string
	fs          afs.Service
	auth        *oaauth.Service
	// pending holds device-code prompts keyed by account alias, guarded
	// by pendMu: tool calls insert, the login goroutine deletes and the
	// device page handler reads concurrently.
	pendMu  sync.Mutex
	pending map[string]*pendingAuth
	// clients caches GraphServiceClient instances per ns+alias+tenant+scopes.
	mu      sync.RWMutex
	clients map[string]*msgraphsdk.GraphServiceClient
	// creds caches device code credentials per alias, kept in memory until process restarts.
	creds map[string]*azidentity.DeviceCodeCredential
}

type pendingAuth struct {
	mu      sync.Mutex
	message string
}

func (p *pendingAuth) set(msg string) {
	p.mu.Lock()
	p.message = msg
	p.mu.Unlock()
}

func (p *pendingAuth) get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.message
}

func NewManager(clientID, secretsBase string) *Manager {
	return &Manager{
		clientID:    clientID,
		secretsBase: strings.TrimRight(secretsBase, "/"),
		fs:          afs.New(),
		auth:        oaauth.New(),
		pending:     map[string]*pendingAuth{},
		clients:     map[string]*msgraphsdk.GraphServiceClient{},
		creds:       map[string]*azidentity.DeviceCodeCredential{},
	}
}

func (m *Manager) authRecordURL(ns, alias string) string {
	if m.secretsBase == "" {
		return ""
	}
	return strings.Join([]string{m.secretsBase, "m365", safePart(ns), safePart(alias), "auth_record.json"}, "/")
}

func safePart(s string) string {
	s = strings.TrimSpace(os.ExpandEnv(s))
	// Replace characters unsafe for filenames or caches
	repl := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "|", "_", " ", "_", "@", "_")
	return repl.Replace(s)
}

func (m *Manager) namespace(ctx context.Context) string {
	ns, _ := m.auth.Namespace(ctx)
	if ns == "" {
		ns = "default"
	}
	return ns
}

func (m *Manager) loadAuthRecord(ctx context.Context, ns, alias string) (azidentity.AuthenticationRecord, bool) {
	var rec azidentity.AuthenticationRecord
	url := m.authRecordURL(ns, alias)
	if url == "" {
		return rec, false
	}
	rc, err := m.fs.OpenURL(ctx, url)
	if err != nil || rc == nil {
		return rec, false
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if len(data) == 0 {
		return rec, false
	}
	_ = json.Unmarshal(data, &rec)
	return rec, true
}

func (m *Manager) saveAuthRecord(ctx context.Context, ns, alias string, rec azidentity.AuthenticationRecord) {
	url := m.authRecordURL(ns, alias)
	if url == "" {
		return
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := m.fs.Upload(ctx, url, 0o600, bytes.NewReader(b)); err == nil && graphDebug() {
		log.Printf("[graph] saved auth record; ns=%s alias=%s url=%s", ns, alias, url)
	}
}

// HasAuthRecord reports whether an auth record exists for alias.
func (m *Manager) HasAuthRecord(ctx context.Context, alias string) bool {
	ns := m.namespace(ctx)
	url := m.authRecordURL(ns, alias)
	if url == "" {
		return false
	}
	ok, _ := m.fs.Exists(ctx, url)
	return ok
}

// NeedsInteractive checks quickly (non-interactive) whether a device flow is required.
func (m *Manager) NeedsInteractive(ctx context.Context, alias, tenantID string, scopes []string) bool {
	ns := m.namespace(ctx)
	rec, haveRec := m.loadAuthRecord(ctx, ns, alias)
	aCache, err := cache.New(&cache.Options{Name: "mcp-m365-" + safePart(ns) + "-" + safePart(alias)})
	if err != nil {
		return true
	}
	opts := &azidentity.DeviceCodeCredentialOptions{
		TenantID:   tenantID,
		ClientID:   m.clientID,
		Cache:      aCache,
		UserPrompt: func(context.Context, azidentity.DeviceCodeMessage) error { return nil },
	}
	if haveRec {
		opts.AuthenticationRecord = rec
	}
	cred, err := azidentity.NewDeviceCodeCredential(opts)
	if err != nil {
		return true
	}
	ctx2, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_, err = cred.GetToken(ctx2, policy.TokenRequestOptions{Scopes: scopes})
	return err != nil
}

// Client returns a ready-to-use GraphServiceClient with given scopes.
func (m *Manager) Client(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*msgraphsdk.GraphServiceClient, error) {
	ns := m.namespace(ctx)
	key := m.clientKey(ns, alias, tenantID, scopes)
	m.mu.RLock()
	if cli, ok := m.clients[key]; ok {
		m.mu.RUnlock()
		return cli, nil
	}
	m.mu.RUnlock()

	cred, err := m.Credential(ctx, alias, tenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, scopes)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	// Double-check in case another goroutine created it meanwhile.
	if existing, ok := m.clients[key]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.clients[key] = client
	m.mu.Unlock()
	return client, nil
}

// Acquire performs authentication only (useful to trigger device-code flow explicitly).
func (m *Manager) Acquire(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) error {
	_, _, err := m.acquireCredential(ctx, alias, tenantID, scopes, prompt)
	return err
}

// StartDeviceLogin launches the device code authentication in background.
// It stores the prompt message to be retrievable via DevicePrompt.
func (m *Manager) StartDeviceLogin(ctx context.Context, alias, tenantID string, scopes []string, onComplete func()) {
	m.pendMu.Lock()
	if _, ok := m.pending[alias]; ok {
		m.pendMu.Unlock()
		return
	}
	holder := &pendingAuth{}
	m.pending[alias] = holder
	m.pendMu.Unlock()
	go func() {
		prompt := func(msg string) { holder.set(msg) }
		if _, _, err := m.acquireCredential(ctx, alias, tenantID, scopes, prompt); err == nil {
			if onComplete != nil {
				onComplete()
			}
		}
		m.pendMu.Lock()
		delete(m.pending, alias)
		m.pendMu.Unlock()
	}()
}

// acquireCredential performs Device Code flow. If an auth record exists, use it for silent login.
func (m *Manager) acquireCredential(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*azidentity.DeviceCodeCredential, azidentity.AuthenticationRecord, error) {
	ns := m.namespace(ctx)
	rec, haveRec := m.loadAuthRecord(ctx, ns, alias)

	// Persist tokens via azidentity/cache (Keychain on macOS).
	aCache, err := cache.New(&cache.Options{Name: "mcp-m365-" + safePart(ns) + "-" + safePart(alias)})
	if err != nil {
		return nil, azidentity.AuthenticationRecord{}, err
	}
	// Always provide a prompt callback (to avoid SDK printing to stdout and
	// to surface the device code message via our UI when interaction is needed).
	var userPrompt = func(_ context.Context, msg azidentity.DeviceCodeMessage) error {
		if prompt != nil {
			prompt(msg.Message)
		}
		return nil
	}
	opts := &azidentity.DeviceCodeCredentialOptions{
		TenantID:   tenantID,
		ClientID:   m.clientID,
		Cache:      aCache,
		UserPrompt: userPrompt,
	}
	if haveRec {
		opts.AuthenticationRecord = rec
	}
	cred, err := azidentity.NewDeviceCodeCredential(opts)
	if err != nil {
		return nil, azidentity.AuthenticationRecord{}, err
	}

	if haveRec {
		// Try a quick silent token preflight. If it fails, fall back to interactive flow
		// (this will invoke the prompt with a device code), then persist a fresh record.
		tctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		_, preErr := cred.GetToken(tctx, policy.TokenRequestOptions{Scopes: scopes})
		cancel()
		if preErr != nil {
			rec, err = cred.Authenticate(ctx, &policy.TokenRequestOptions{Scopes: scopes})
			if err != nil {
				return nil, azidentity.AuthenticationRecord{}, err
			}
			m.saveAuthRecord(ctx, ns, alias, rec)
		}
	} else {
		// No record: perform interactive device login and persist record.
		rec, err = cred.Authenticate(ctx, &policy.TokenRequestOptions{Scopes: scopes})
		if err != nil {
			return nil, azidentity.AuthenticationRecord{}, err
		}
		m.saveAuthRecord(ctx, ns, alias, rec)
	}
	return cred, rec, nil
}

func graphDebug() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("M365_MCP_DEBUG")))
	return v != "" && v != "0" && v != "false"
}

// DevicePrompt returns the last device-code prompt message for alias.
func (m *Manager) DevicePrompt(alias string) string {
	m.pendMu.Lock()
	p, ok := m.pending[alias]
	m.pendMu.Unlock()
	if ok {
		return p.get()
	}
	return ""
}

// DefaultScopes returns the read-only scope set for profile, calendar, mail and tasks.
func DefaultScopes() []string {
	return []string{
		"https://graph.microsoft.com/User.Read",
		"https://graph.microsoft.com/Calendars.Read",
		"https://graph.microsoft.com/Mail.Read",
		"https://graph.microsoft.com/Tasks.Read",
	}
}

// clientKey builds a stable cache key from alias, tenantID, and normalized scopes.
func (m *Manager) clientKey(ns, alias, tenantID string, scopes []string) string {
	// normalize scopes: lowercase and sort
	if len(scopes) > 0 {
		norm := make([]string, 0, len(scopes))
		for _, s := range scopes {
			if s == "" {
				continue
			}
			norm = append(norm, strings.ToLower(s))
		}
		sort.Strings(norm)
		scopes = norm
	}
	if ns == "" {
		ns = "default"
	}
	return ns + "|" + alias + "|" + tenantID + "|" + strings.Join(scopes, ",")
}

// Credential returns a cached DeviceCodeCredential for alias, acquiring and caching if needed.
func (m *Manager) Credential(ctx context.Context, alias, tenantID string, scopes []string, prompt func(string)) (*azidentity.DeviceCodeCredential, error) {
	ns := m.namespace(ctx)
	key := ns + "|" + alias
	m.mu.RLock()
	if c := m.creds[key]; c != nil {
		m.mu.RUnlock()
		return c, nil
	}
	m.mu.RUnlock()
	cred, _, err := m.acquireCredential(ctx, alias, tenantID, scopes, prompt)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if existing := m.creds[key]; existing != nil {
		m.mu.Unlock()
		return existing, nil
	}
	m.creds[key] = cred
	m.mu.Unlock()
	return cred, nil
}
