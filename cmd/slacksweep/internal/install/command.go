// Package install runs the OAuth install server. Workspaces authorize the
// app via /slack/login; the callback stores the granted access token in the
// token store the gateway reads from.
package install

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	slackoauth "golang.org/x/oauth2/slack"

	"github.com/tinyland-inc/slacksweep/cmd/slacksweep/internal"
	"github.com/tinyland-inc/slacksweep/pkg/config"
	"github.com/tinyland-inc/slacksweep/pkg/logger"
	"github.com/tinyland-inc/slacksweep/pkg/tokens"
)

const stateCookie = "slacksweep_state"

// oauthScopes must cover message deletion and private file reads on behalf
// of the installing user.
const oauthScopes = "bot admin links:read links:write chat:write:user chat:write:bot files:read"

func NewInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install",
		Short: "Run the OAuth install server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return installCmd()
		},
	}
}

func installCmd() error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if cfg.Install.ClientID == "" || cfg.Install.ClientSecret == "" {
		return fmt.Errorf("install.client_id and install.client_secret are required")
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required (token store)")
	}

	store, err := tokens.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("error opening token store: %w", err)
	}
	defer store.Close()

	router := newRouter(cfg, store)
	logger.InfoCF("install", "Install server listening", map[string]any{"addr": cfg.Install.Addr})
	return router.Run(cfg.Install.Addr)
}

func newRouter(cfg *config.Config, store *tokens.Store) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "slacksweep install server")
	})
	router.GET("/slack/login", loginHandler(cfg))
	router.GET("/slack/auth", authHandler(cfg, store))

	return router
}

func loginHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		oc := oauthConfig(cfg, c)
		state := uuid.NewString()
		c.SetCookie(stateCookie, state, 600, "/", "", false, true)
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Redirect(http.StatusFound, oc.AuthCodeURL(state))
	}
}

func authHandler(cfg *config.Config, store *tokens.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate")

		if c.Query("error") != "" {
			c.String(http.StatusUnauthorized, "Unauthorized")
			return
		}

		state := c.Query("state")
		expected, err := c.Cookie(stateCookie)
		if err != nil || state == "" || state != expected {
			c.String(http.StatusConflict, "State does not match")
			return
		}

		code := c.Query("code")
		if code == "" {
			c.String(http.StatusUnauthorized, "Unauthorized")
			return
		}

		oc := oauthConfig(cfg, c)
		resp, err := slack.GetOAuthResponseContext(
			c.Request.Context(),
			http.DefaultClient,
			cfg.Install.ClientID,
			cfg.Install.ClientSecret,
			code,
			oc.RedirectURL,
		)
		if err != nil {
			logger.ErrorCF("install", "OAuth exchange failed", map[string]any{"error": err.Error()})
			c.String(http.StatusUnauthorized, "Grant access fail: "+err.Error())
			return
		}

		if err := store.Save(c.Request.Context(), resp.TeamID, resp.AccessToken); err != nil {
			logger.ErrorCF("install", "Token save failed", map[string]any{
				"team":  resp.TeamID,
				"error": err.Error(),
			})
			c.String(http.StatusInternalServerError, err.Error())
			return
		}

		logger.InfoCF("install", "Workspace installed", map[string]any{"team": resp.TeamID})
		c.String(http.StatusOK, "OK!")
	}
}

func oauthConfig(cfg *config.Config, c *gin.Context) *oauth2.Config {
	redirect := cfg.Install.RedirectURL
	if redirect == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		redirect = scheme + "://" + c.Request.Host + "/slack/auth"
	}
	return &oauth2.Config{
		ClientID:     cfg.Install.ClientID,
		ClientSecret: cfg.Install.ClientSecret,
		Endpoint:     slackoauth.Endpoint,
		RedirectURL:  redirect,
		Scopes:       []string{oauthScopes},
	}
}
