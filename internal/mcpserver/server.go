// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes restparams validation as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/restparams"
)

const serverInstructions = `restparams MCP server: checks HTTP request parameters against restparams declarations.

Declarations are a YAML mapping. A bare key declares a parameter and its type (int, float, str, bool), a list of allowed options, or {model: Name} for a record lookup. Keys with a __modifier suffix configure it: method, name, optional, default, many, deferred, field, gt, gte, lt, lte, eq. Only the last __ segment counts, so my_str__length__lt and my_str__lt are the same.

Configuration: defaults are configurable via RESTPARAMS_* environment variables set in your MCP client config.

Key settings:
- RESTPARAMS_STRICT_BOOL (default: false) - parse bool params with strconv.ParseBool instead of truthiness
- RESTPARAMS_MAX_INLINE_SIZE (default: 1048576) - maximum inline or fetched declaration size
- RESTPARAMS_MAX_RECORDS (default: 1000) - maximum seed records per call
- RESTPARAMS_CACHE_ENABLED (default: true) - cache declaration files and URLs
- RESTPARAMS_ALLOW_PRIVATE_IPS (default: false) - allow declaration URLs on private networks`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	return run(ctx, &mcp.StdioTransport{})
}

func run(ctx context.Context, t mcp.Transport) error {
	if cfg.CacheEnabled {
		docCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}
	return newServer().Run(ctx, t)
}

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "restparams", Version: restparams.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_params",
		Description: "Validate one HTTP request against parameter declarations. Supply the request method and its query (get) and body (post) values. Returns the validated, coerced arguments, or the 400 error message a handler would send and the parameter that failed. Parameters are checked in declaration order and only the first failure is reported. Seed records for {model: Name} parameters with records, keyed by model name; records without an id get sequential ids from 1.",
	}, handleCheck)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_params",
		Description: "Compile parameter declarations and list the resulting parameters in declaration order: type, request name, allowed methods, optional/default, many, bounds and lookup field. Use this to check that a declaration block means what you intended before using check_params.",
	}, handleDescribe)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
