package main

import (
	"context"
	"log"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/viant/mcp-protocol/authorization"
	oauthmeta "github.com/viant/mcp-protocol/oauth2/meta"
	"github.com/viant/mcp-protocol/schema"
	mcpsrv "github.com/viant/mcp/server"
	serverauth "github.com/viant/mcp/server/auth"
	"github.com/viant/scy"
	"github.com/viant/scy/auth/flow"
	"github.com/viant/scy/cred"
	_ "github.com/viant/scy/kms/blowfish"
	"go.uber.org/zap"

	"github.com/prodhub/mcp-m365/mcp"
)

// Options defines CLI flags for the M365 assistant MCP server.
type Options struct {
	HTTPAddr     string `short:"a" long:"addr" description:"HTTP listen address (empty disables HTTP)" default:":3978"`
	ClientID     string `long:"client-id" description:"Azure AD application (client) ID"`
	TenantID     string `long:"tenant-id" description:"Tenant ID or 'organizations'"`
	SecretsBase  string `long:"secretsBase" description:"AFS/scy base URL for persisting auth records (e.g., mem://localhost/mcp-m365)"`
	AzureRef     string `long:"azure-ref" description:"scy EncodedResource for Azure cred (e.g., gcp://...|blowfish://default)"`
	Oauth2Config string `short:"o" long:"oauth2config" description:"Path to JSON OAuth2 configuration file (scy EncodedResource)"`
	UseIdToken   bool   `short:"i" long:"use-id-token" description:"Use ID token (instead of access token) for identity scoping"`
	UseData      bool   `long:"use-data" description:"Return structured content instead of JSON text"`
}

func main() {
	// Mirror local dev convention: .env is loaded when present.
	_ = godotenv.Load()

	var opts Options
	if _, err := flags.NewParser(&opts, flags.Default).Parse(); err != nil {
		os.Exit(2)
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Apply simple defaults and env fallbacks
	if v := os.Getenv("PORT"); v != "" && opts.HTTPAddr == ":3978" {
		opts.HTTPAddr = ":" + v
	}
	if opts.SecretsBase == "" {
		opts.SecretsBase = envOr("M365_SECRETS_BASE", "mem://localhost/mcp-m365")
	}
	if opts.TenantID == "" {
		opts.TenantID = envOr("M365_TENANT_ID", "organizations")
	}
	if opts.ClientID == "" {
		opts.ClientID = envOr("M365_CLIENT_ID", "")
	}
	if opts.AzureRef == "" {
		opts.AzureRef = envOr("M365_AZURE_REF", "")
	}
	if opts.ClientID == "" && opts.AzureRef == "" {
		log.Fatal("missing --client-id/M365_CLIENT_ID (or provide --azure-ref / M365_AZURE_REF)")
	}

	// Derive callback base URL from listen address.
	baseURL := "http://localhost"
	if opts.HTTPAddr != "" {
		hostport := opts.HTTPAddr
		if hostport[0] == ':' {
			hostport = "localhost" + hostport
		}
		baseURL = "http://" + hostport
	}
	// If azure-ref provided, derive missing values from secret (clientID, tenantID).
	if opts.AzureRef != "" {
		res := scy.EncodedResource(opts.AzureRef).Decode(context.Background(), cred.Azure{})
		sec, err := scy.New().Load(context.Background(), res)
		if err != nil {
			log.Fatalf("failed to load azure-ref secret: %v", err)
		}
		az, ok := sec.Target.(*cred.Azure)
		if !ok {
			log.Fatal("azure-ref secret is not of type cred.Azure (expected JSON with ClientID, TenantID, EncryptedClientSecret)")
		}
		if opts.ClientID == "" && az.ClientID != "" {
			opts.ClientID = az.ClientID
		}
		if (opts.TenantID == "" || opts.TenantID == "organizations") && az.TenantID != "" {
			opts.TenantID = az.TenantID
		}
	}

	svc := mcp.NewService(&mcp.Config{
		ClientID:        opts.ClientID,
		TenantID:        opts.TenantID,
		SecretsBase:     strings.Replace(opts.SecretsBase, "$HOME", os.Getenv("HOME"), 1),
		CallbackBaseURL: baseURL,
		UseData:         opts.UseData,
		AzureRef:        scy.EncodedResource(opts.AzureRef),
	}, logger)

	options := []mcpsrv.Option{
		mcpsrv.WithImplementation(schema.Implementation{Name: "m365-assistant", Version: "0.1.0"}),
		mcpsrv.WithNewHandler(mcp.NewHandler(svc)),
		mcpsrv.WithEndpointAddress(opts.HTTPAddr),
		mcpsrv.WithRootRedirect(true),
		mcpsrv.WithStreamableURI("/mcp"),
		mcpsrv.WithCustomHTTPHandler("/m365/auth/device/", svc.DeviceHandler()),
		mcpsrv.WithCustomHTTPHandler("/m365/auth/pending", svc.PendingListHandler()),
		mcpsrv.WithCustomHTTPHandler("/m365/auth/pending/clear", svc.PendingClearHandler()),
		mcpsrv.WithCustomHTTPHandler("/api/messages", svc.ChatHandler()),
	}

	// Optional server-level OAuth2
	if v := strings.TrimSpace(opts.Oauth2Config); v != "" {
		res := scy.EncodedResource(v).Decode(context.Background(), cred.Oauth2Config{})
		sec, err := scy.New().Load(context.Background(), res)
		if err != nil {
			log.Fatalf("failed to load oauth2config: %v", err)
		}
		oc, ok := sec.Target.(*cred.Oauth2Config)
		if !ok {
			log.Fatalf("invalid oauth2config secret type")
		}
		authPolicy := &authorization.Policy{
			Global: &authorization.Authorization{
				UseIdToken: opts.UseIdToken,
				ProtectedResourceMetadata: &oauthmeta.ProtectedResourceMetadata{
					AuthorizationServers: []string{oc.Config.Endpoint.AuthURL},
				}},
			// Allow SSE and the chat endpoint without auth; protect /mcp
			ExcludeURI: "/sse,/api/messages",
		}
		header := flow.AuthorizationExchangeHeader
		bff := &serverauth.BackendForFrontend{Client: &oc.Config, AuthorizationExchangeHeader: header}
		authSvc, err := serverauth.New(&serverauth.Config{Policy: authPolicy, BackendForFrontend: bff})
		if err != nil {
			log.Fatalf("failed to init auth service: %v", err)
		}
		options = append(options,
			mcpsrv.WithAuthorizer(authSvc.Middleware),
			mcpsrv.WithProtectedResourcesHandler(authSvc.ProtectedResourcesHandler),
		)
	}

	server, err := mcpsrv.New(options...)
	if err != nil {
		log.Fatal(err)
	}
	if opts.HTTPAddr != "" {
		logger.Info("starting m365-assistant", zap.String("addr", opts.HTTPAddr), zap.String("baseURL", baseURL))
		// Enable streamable HTTP so /mcp endpoint is active
		server.UseStreamableHTTP(true)
		if err := server.HTTP(context.Background(), opts.HTTPAddr).ListenAndServe(); err != nil {
			log.Fatal(err)
		}
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
