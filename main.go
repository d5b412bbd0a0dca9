package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/debatearena/internal/api"
	"github.com/hazyhaar/debatearena/internal/config"
	"github.com/hazyhaar/debatearena/internal/db"
	"github.com/hazyhaar/debatearena/internal/debate"
	"github.com/hazyhaar/debatearena/internal/llm"
	"github.com/hazyhaar/debatearena/internal/mcp"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "version":
		fmt.Printf("debatearena %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`debatearena — structured debate platform with AI evaluation

Usage:
  debatearena serve [--config config.toml] [--addr :3000]
  debatearena mcp [--config config.toml]
  debatearena version
  debatearena help

Commands:
  serve     Start the HTTP server
  mcp       Serve the debate tools over MCP stdio
  version   Print version
  help      Show this help`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.toml")
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Parse(args)

	cfg, orch := setup(*configPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	apiHandler := api.New(orch, cfg.Debate.DefaultDifficulty, slog.Default())

	mux := http.NewServeMux()
	apiHandler.RegisterRoutes(mux)

	// Serve static files
	staticFS := http.FileServer(http.Dir("static"))
	mux.Handle("GET /static/", http.StripPrefix("/static/", staticFS))

	// SPA: serve index.html for all non-API, non-static routes
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "static/index.html")
	})

	log.Printf("debatearena %s listening on %s", version, cfg.Server.Addr)
	log.Printf("database: %s", cfg.Database.Path)

	handler := api.SecurityHeaders(api.CORS(mux))
	if err := http.ListenAndServe(cfg.Server.Addr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.toml")
	fs.Parse(args)

	cfg, orch := setup(*configPath)

	srv := mcp.NewServer(orch, cfg.Debate.DefaultDifficulty)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}

// setup loads configuration and wires the orchestrator stack shared by the
// HTTP and MCP frontends.
func setup(configPath string) (*config.Config, *debate.Orchestrator) {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}

	client := llm.NewFromConfig(cfg.LLM)
	if len(client.Providers()) == 0 {
		log.Printf("warning: no LLM providers configured, AI turns will use the fallback reply")
	} else {
		log.Printf("llm providers: %v", client.Providers())
	}

	gateway := debate.NewGateway(client,
		cfg.LLM.DefaultProvider,
		cfg.LLM.DefaultModel,
		time.Duration(cfg.LLM.TimeoutSec)*time.Second,
		slog.Default())

	store := debate.NewStore(database)
	orch := debate.NewOrchestrator(store, debate.NewKeywordRetriever(), gateway, slog.Default())
	return cfg, orch
}
