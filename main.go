// Command gridworld serves the predator/prey gridworld environment.
//
// Commands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "rollout" plays random-policy episodes locally and prints their returns
//  4. "validate" checks every environment config in the config directory
//
// Every flag can also be set through the environment (or a .env file), and
// ngrok tunneling is available for external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/CentralLoaf/Gridworld-DQN/api"
	"github.com/CentralLoaf/Gridworld-DQN/game/config"
	"github.com/CentralLoaf/Gridworld-DQN/game/engine"
	"github.com/CentralLoaf/Gridworld-DQN/game/service"
	"github.com/CentralLoaf/Gridworld-DQN/game/session"
	"github.com/CentralLoaf/Gridworld-DQN/transport/mcp"
	"github.com/CentralLoaf/Gridworld-DQN/transport/websocket"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"gonum.org/v1/gonum/stat"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Gridworld Predator/Prey Server"
)

const (
	sessionMaxAge        = 24 * time.Hour
	sessionCleanupPeriod = 1 * time.Hour
	persistenceSyncEvery = 5 * time.Second
)

// main loads .env, builds the command tree and runs it
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the root command. Root flags are inherited by every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "gridworld",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing environment configurations", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for file session storage", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "session-store", Value: "file", Usage: "Session storage backend: file, sqlite or memory", Sources: cli.EnvVars("SESSION_STORE")},
			&cli.StringFlag{Name: "sqlite-path", Value: "sessions.db", Usage: "Database path for the sqlite session store", Sources: cli.EnvVars("SQLITE_PATH")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: serveAction,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  serveAction,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  stdioMCPAction,
			},
			{
				Name:  "rollout",
				Usage: "Play random-policy episodes and print their returns",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: config.DefaultConfigName, Usage: "Environment config to roll out"},
					&cli.IntFlag{Name: "episodes", Value: 10, Usage: "Number of episodes"},
					&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "Seed for agent placement and the random policy"},
					&cli.IntFlag{Name: "max-steps", Value: 500, Usage: "Truncate episodes after this many steps (0 keeps the config value)"},
				},
				Action: rolloutAction,
			},
			{
				Name:   "validate",
				Usage:  "Validate every environment config in the config directory",
				Action: validateAction,
			},
		},
	}
}

// serviceOptions selects where configs and sessions live
type serviceOptions struct {
	ConfigDir    string
	SessionStore string
	SessionsDir  string
	SQLitePath   string
}

func serviceOptionsFrom(cmd *cli.Command) serviceOptions {
	return serviceOptions{
		ConfigDir:    cmd.String("config-dir"),
		SessionStore: cmd.String("session-store"),
		SessionsDir:  cmd.String("sessions-dir"),
		SQLitePath:   cmd.String("sqlite-path"),
	}
}

// services bundles the game service with the resources that must be
// released on shutdown
type services struct {
	Game        service.GameService
	Sessions    *session.Manager
	persistence session.SessionPersistence
}

// Close flushes sessions and releases the persistence backend
func (s *services) Close() {
	if err := s.Sessions.SaveAllSessions(); err != nil {
		log.Printf("Warning: Failed to save sessions: %v", err)
	}
	if err := session.ClosePersistence(s.persistence); err != nil {
		log.Printf("Warning: Failed to close session store: %v", err)
	}
}

// initializeServices wires session/config managers and the game service.
// It also starts background routines that prune stale sessions until ctx ends.
func initializeServices(ctx context.Context, opts serviceOptions) (*services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewPersistence(opts.SessionStore, opts.SessionsDir, opts.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)

	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Printf("Warning: Failed to load persisted sessions: %v", err)
	}

	gameService := service.NewGameService(sessionManager, configManager)

	go sessionCleanupRoutine(ctx, sessionManager)
	if persistence != nil {
		go persistenceSyncRoutine(ctx, sessionManager)
	}

	return &services{Game: gameService, Sessions: sessionManager, persistence: persistence}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the retention window
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(sessionCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// persistenceSyncRoutine drops in-memory sessions whose stored copy was
// deleted out from under the server
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(persistenceSyncEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.SyncWithPersistence(); pruned > 0 {
				log.Printf("Persistence sync: pruned %d orphaned sessions from memory", pruned)
			}
		}
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := initializeServices(ctx, serviceOptionsFrom(cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	return runHTTPServer(ctx, cmd, svc.Game)
}

// newHTTPHandler combines the API server with the /mcp endpoint. The MCP
// tools call back into the API at baseURL.
func newHTTPHandler(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(gameService, hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
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

// runHTTPServer starts the HTTP server and, when enabled, an ngrok tunnel
// serving the same handler. It blocks until SIGINT/SIGTERM.
func runHTTPServer(ctx context.Context, cmd *cli.Command, gameService service.GameService) error {
	hub := websocket.NewHub()
	go hub.Run()

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	handler := newHTTPHandler(gameService, hub, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	var err error
	select {
	case sig := <-stop:
		log.Printf("Received signal: %v. Shutting down...", sig)
	case err = <-serveErr:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()
	log.Println("Server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx ends
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

func stdioMCPAction(ctx context.Context, cmd *cli.Command) error {
	log.Printf("Starting %s v%s (mode: stdio-mcp)", AppName, Version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	svc, err := initializeServices(ctx, serviceOptionsFrom(cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), cmd.Int("port"))
	return runStdioMCPWithInternalServer(svc.Game, externalURL)
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at externalURL; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(gameService service.GameService, externalURL string) error {
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		if resp != nil {
			resp.Body.Close()
		}
		log.Printf("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		internalAddr := listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		hub := websocket.NewHub()
		go hub.Run()

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()

		baseURL = "http://" + internalAddr
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// rolloutSummary aggregates the episodes of one rollout
type rolloutSummary struct {
	Episodes        int
	Captures        int
	Lengths         []float64
	PreyReturns     []float64
	PredatorReturns []float64
}

// rollout plays episodes with both agents choosing uniformly random actions.
// Agent placement and the policy draw from separate streams of the same seed.
func rollout(cfg *engine.EnvConfig, episodes int, seed uint64, w io.Writer) (*rolloutSummary, error) {
	sim, err := engine.NewSimulator(cfg, seed)
	if err != nil {
		return nil, err
	}
	policy := engine.NewRand(seed + 1)

	summary := &rolloutSummary{}
	for ep := 0; ep < episodes; ep++ {
		if ep > 0 {
			if _, err := sim.Reset(); err != nil {
				return nil, err
			}
		}

		for !sim.IsOver() {
			if _, err := sim.Step(policy.IntN(engine.NumActions), policy.IntN(engine.NumActions)); err != nil {
				return nil, err
			}
		}

		state := sim.GetState()
		outcome := "truncated"
		if state.Done {
			outcome = "captured"
			summary.Captures++
		}
		summary.Episodes++
		summary.Lengths = append(summary.Lengths, float64(state.Steps))
		summary.PreyReturns = append(summary.PreyReturns, state.PreyReturn)
		summary.PredatorReturns = append(summary.PredatorReturns, state.PredatorReturn)

		fmt.Fprintf(w, "episode %3d  steps %4d  prey %9.2f  predator %8.2f  %s\n",
			state.Episode, state.Steps, state.PreyReturn, state.PredatorReturn, outcome)
	}

	if summary.Episodes > 0 {
		fmt.Fprintf(w, "%s\n", strings.Repeat("=", 40))
		fmt.Fprintf(w, "captured %d/%d  mean steps %.1f  mean prey return %.2f  mean predator return %.2f\n",
			summary.Captures, summary.Episodes,
			stat.Mean(summary.Lengths, nil),
			stat.Mean(summary.PreyReturns, nil),
			stat.Mean(summary.PredatorReturns, nil))
	}

	return summary, nil
}

func rolloutAction(ctx context.Context, cmd *cli.Command) error {
	episodes := cmd.Int("episodes")
	if episodes < 1 {
		return fmt.Errorf("episodes must be positive, got %d", episodes)
	}

	configManager, err := config.NewManager(cmd.String("config-dir"))
	if err != nil {
		return err
	}
	loaded, err := configManager.LoadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	cfg := *loaded
	if maxSteps := cmd.Int("max-steps"); maxSteps > 0 {
		cfg.MaxSteps = maxSteps
	}

	w := cmd.Root().Writer
	fmt.Fprintf(w, "Rolling out %d episodes on %s (%dx%d, seed %d)\n", episodes, cfg.Name, cfg.Rows, cfg.Cols, cmd.Uint64("seed"))

	_, err = rollout(&cfg, episodes, cmd.Uint64("seed"), w)
	return err
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	results, err := config.ValidateDir(cmd.String("config-dir"))
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	invalid := 0
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		fmt.Fprintln(w, "INVALID")
		invalid++
		for _, msg := range result.Errors {
			fmt.Fprintln(w, "  x "+msg)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if invalid > 0 {
		return fmt.Errorf("%d of %d configurations have errors", invalid, len(results))
	}
	fmt.Fprintf(w, "All %d configurations are valid\n", len(results))
	return nil
}
