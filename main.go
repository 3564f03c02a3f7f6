// Command cluedo-server starts the Cluedo board server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, session storage, debug logging,
// version output, and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/stat9k/Cluedo-Text/api"
	"github.com/stat9k/Cluedo-Text/game/config"
	"github.com/stat9k/Cluedo-Text/game/service"
	"github.com/stat9k/Cluedo-Text/game/session"
	"github.com/stat9k/Cluedo-Text/transport/mcp"
	"github.com/stat9k/Cluedo-Text/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Cluedo Board Server"
)

// Session store kinds
const (
	storeFile = "file"
	storeBolt = "bolt"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 8080, "HTTP server port")
	host         = flag.String("host", "localhost", "HTTP server host")
	configDir    = flag.String("config-dir", envOr("CONFIG_DIR", "configs"), "Directory containing board configurations")
	store        = flag.String("store", envOr("SESSION_STORE", storeFile), "Session store: file or bolt")
	sessionsPath = flag.String("sessions", os.Getenv("SESSIONS_PATH"), "Session directory (file store) or database file (bolt store)")
	sessionTTL   = flag.Duration("session-ttl", 24*time.Hour, "Remove sessions not accessed for this long")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// envOr returns the environment variable key, or fallback when it is unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -store bolt        # Keep sessions in a bolt database\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp -port 9090     # Run MCP stdio server with internal HTTP on port 9090\n", os.Args[0])
	}
}

// setupLogging sends human-readable logs to stderr. Stdout stays free for the
// MCP stdio protocol.
func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
}

// main parses flags, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists
	envErr := godotenv.Load()

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	setupLogging(*debug)

	if envErr == nil {
		log.Info().Msg("loaded environment variables from .env file")
	} else if !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("error loading .env file")
	}

	// Determine mode from command
	mode := "server"
	if args := flag.Args(); len(args) > 0 {
		mode = args[0]
	}

	log.Info().Str("version", Version).Str("mode", mode).Msgf("starting %s", AppName)

	app, err := initializeServices()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		err = runStdioMCPWithInternalServer(ctx, app)

	case "server", "http":
		err = runHTTPServer(ctx, app)

	default:
		log.Fatal().Str("mode", mode).Msg("unknown mode, use 'server' (default) or 'stdio-mcp'")
	}

	if err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		app.Close()
		os.Exit(1)
	}
}

// application bundles the wired services of one server process.
type application struct {
	game        service.GameService
	sessions    *session.Manager
	persistence session.SessionPersistence
	hub         *websocket.Hub
	closers     []io.Closer
}

// Close flushes sessions and releases the session store. It is safe to call twice.
func (a *application) Close() {
	if a.sessions != nil {
		if err := a.sessions.SaveAllSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to save sessions on shutdown")
		}
		a.sessions = nil
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close session store")
		}
	}
	a.closers = nil
}

// newPersistence opens the session store selected by kind.
func newPersistence(kind, path string, configs service.ConfigManager) (session.SessionPersistence, io.Closer, error) {
	switch kind {
	case storeFile, "":
		if path == "" {
			path = "sessions"
		}
		p, err := session.NewFilePersistence(path, configs)
		return p, nil, err
	case storeBolt:
		if path == "" {
			path = "sessions.db"
		}
		p, err := session.NewBoltPersistence(path, configs)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q (want %s or %s)", kind, storeFile, storeBolt)
	}
}

// initializeServices wires the config manager, session store, WebSocket hub and
// game service.
func initializeServices() (*application, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(*configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, closer, err := newPersistence(*store, *sessionsPath, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	app := &application{
		persistence: persistence,
		sessions:    session.NewManagerWithPersistence(persistence),
		hub:         websocket.NewHub(),
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	// Load persisted sessions on startup
	if err := app.sessions.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted sessions")
	}

	// Viewers watch pieces move one cell at a time
	app.game = service.NewGameService(app.sessions, configManager,
		service.WithStepListener(app.hub.BroadcastStep))

	log.Info().
		Str("config_dir", *configDir).
		Str("store", *store).
		Int("sessions", app.sessions.Count()).
		Msg("services initialized")

	return app, nil
}

// startBackground runs the hub and session housekeeping in g until ctx ends.
func startBackground(ctx context.Context, g *errgroup.Group, app *application) {
	g.Go(func() error {
		app.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		sessionCleanupRoutine(ctx, app.sessions, *sessionTTL, time.Hour)
		return nil
	})
	if _, ok := app.persistence.(*session.FilePersistence); ok {
		g.Go(func() error {
			filesystemSyncRoutine(ctx, app.sessions, app.persistence, 5*time.Second)
			return nil
		})
	}
}

// newMux combines the REST API with the /mcp proxy endpoint.
func newMux(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag or environment), it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, app *application) error {
	addr := fmt.Sprintf("%s:%d", *host, *port)

	apiServer := api.NewServer(app.game, app.hub)
	mainRouter := newMux(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	startBackground(ctx, g, app)

	g.Go(func() error {
		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	if ngrokShouldRun() {
		g.Go(func() error {
			runNgrok(ctx, mainRouter)
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	log.Info().Msg("server stopped")
	return err
}

// ngrokShouldRun reports whether a tunnel was requested by flag or environment.
func ngrokShouldRun() bool {
	if *ngrokEnabled {
		return true
	}
	envEnabled := os.Getenv("NGROK_ENABLED")
	return envEnabled == "true" || envEnabled == "1"
}

// runNgrok serves handler through an ngrok tunnel until ctx ends. Tunnel
// failures are logged and never stop the local server.
func runNgrok(ctx context.Context, handler http.Handler) {
	// Get auth token from flag or environment (support both naming conventions)
	authToken := *ngrokAuth
	if authToken == "" {
		authToken = envOr("NGROK_AUTHTOKEN", os.Getenv("NGROK_AUTH_TOKEN"))
	}
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	domain := *ngrokDomain
	if domain == "" {
		domain = os.Getenv("NGROK_DOMAIN")
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Info().Str("domain", domain).Msg("using custom ngrok domain")
	}

	log.Info().Msg("starting ngrok tunnel")
	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}

	ngrokURL := tun.URL()
	log.Info().
		Str("url", ngrokURL).
		Str("api", ngrokURL+"/api").
		Str("websocket", ngrokURL+"/ws?session=<session_id>").
		Str("mcp", ngrokURL+"/mcp").
		Msg("ngrok tunnel established")

	tunnelServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		tunnelServer.Close()
	}()

	if err := tunnelServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within maxAge.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, maxAge, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// filesystemSyncRoutine drops sessions from memory once their files are deleted.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pruneOrphans(manager, persistence)
		}
	}
}

// pruneOrphans removes in-memory sessions that the store no longer has.
func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence) int {
	pruned := 0
	for _, s := range manager.List() {
		if persistence.Exists(s.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(s.ID); err == nil {
			pruned++
			log.Debug().Str("session", s.ID).Msg("pruned session from memory (file deleted)")
		}
	}

	if pruned > 0 {
		log.Info().Int("pruned", pruned).Msg("filesystem sync pruned orphaned sessions")
	}
	return pruned
}

// externalServerURL is where stdio mode looks for an already running server.
var externalServerURL = "http://localhost:8080"

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at externalServerURL; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(ctx context.Context, app *application) error {
	baseURL := externalServerURL
	log.Info().Str("url", baseURL).Msg("checking for external API server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if !serverAvailable(baseURL) {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		startBackground(ctx, g, app)

		httpServer := &http.Server{Handler: api.NewServer(app.game, app.hub)}
		g.Go(func() error {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("internal HTTP server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return httpServer.Close()
		})

		log.Info().Str("url", baseURL).Msg("internal HTTP server started for MCP stdio")
	} else {
		log.Info().Str("url", baseURL).Msg("external API server found, using it for MCP")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	// ServeStdio blocks until stdin closes or the process is signalled
	err := server.ServeStdio(mcpClient.GetMCPServer())
	cancel()
	if waitErr := g.Wait(); err == nil {
		err = waitErr
	}
	return err
}

// serverAvailable reports whether a Cluedo server answers its health check at baseURL.
func serverAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
