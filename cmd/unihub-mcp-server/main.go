// unihub-mcp-server exposes the UniHub SDK over the Model Context Protocol
// (stdio transport) so agents can query the campus backend through the same
// session the CLI uses.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/unihub/unihub-client/client"
	"github.com/unihub/unihub-client/internal/config"
	"github.com/unihub/unihub-client/mcp/handlers"
	"github.com/unihub/unihub-client/persist"
)

func main() {
	_ = godotenv.Load()
	config.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	config.SetLogLevel(cfg.LogLevel)

	path := cfg.StatePath
	if path == "" {
		if path, err = persist.DefaultPath(); err != nil {
			log.Fatal().Err(err).Msg("state path")
		}
	}
	kv, err := persist.NewSQLite(path)
	if err != nil {
		log.Fatal().Err(err).Msg("open state database")
	}

	c := client.New(cfg.BackendURL, client.WithStorage(kv))
	defer c.Close()

	s := server.NewMCPServer("unihub", "1.0.0", server.WithToolCapabilities(true))

	for _, h := range []interface {
		RegisterTools(*server.MCPServer) error
	}{
		handlers.NewAssistantHandler(c),
		handlers.NewTimetableHandler(c),
		handlers.NewEventsHandler(c),
	} {
		if err := h.RegisterTools(s); err != nil {
			log.Fatal().Err(err).Msg("register tools")
		}
	}

	log.Info().Str("backend_url", cfg.BackendURL).Msg("serving MCP over stdio")
	if err := server.ServeStdio(s); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
