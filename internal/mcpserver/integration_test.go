package mcpserver

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestSession creates an in-process MCP server/client pair and returns
// the connected client session. The server is shut down when the test ends.
func startTestSession(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := newServer()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-done
	})

	return session
}

func TestIntegration_ListTools(t *testing.T) {
	session := startTestSession(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, result.Tools, 2)

	names := []string{result.Tools[0].Name, result.Tools[1].Name}
	assert.ElementsMatch(t, []string{"check_params", "describe_params"}, names)
	for _, tool := range result.Tools {
		assert.NotEmpty(t, tool.Description, "tool %q has empty description", tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %q has no input schema", tool.Name)
	}
}

func TestIntegration_CallTool_Check(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "check_params",
		Arguments: map[string]any{
			"declarations": map[string]any{"content": userDecls},
			"get":          map[string]any{"user_ids": "4,5", "sort": "created"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	structured := unmarshalStructured(t, result)
	assert.Equal(t, true, structured["valid"])
	assert.Equal(t, float64(200), structured["status"])
	args, ok := structured["args"].(map[string]any)
	require.True(t, ok, "args should be an object")
	assert.Equal(t, []any{float64(4), float64(5)}, args["user_ids"])
	assert.Equal(t, "created", args["sort"])
}

func TestIntegration_CallTool_CheckRejected(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "check_params",
		Arguments: map[string]any{
			"declarations": map[string]any{"content": "my_int: int\n"},
			"method":       "POST",
			"post":         map[string]any{"my_int": "abc"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError, "a rejected request is a tool result, not a tool error")

	structured := unmarshalStructured(t, result)
	assert.Equal(t, false, structured["valid"])
	assert.Equal(t, float64(400), structured["status"])
	assert.Equal(t, "my_int", structured["param"])
	assert.Equal(t, "type", structured["reason"])
}

func TestIntegration_CallTool_Describe(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "describe_params",
		Arguments: map[string]any{
			"declarations": map[string]any{"content": userDecls},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	structured := unmarshalStructured(t, result)
	assert.Equal(t, float64(3), structured["count"])
	summaries, ok := structured["params"].([]any)
	require.True(t, ok, "params should be an array")
	require.Len(t, summaries, 3)
	first, ok := summaries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "user_ids", first["name"])
	assert.Equal(t, "int", first["kind"])
}

func TestIntegration_CallTool_Error_MissingDeclarations(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "describe_params",
		Arguments: map[string]any{
			"declarations": map[string]any{},
		},
	})
	require.NoError(t, err, "MCP protocol call should succeed even on tool error")
	assert.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "error content should be TextContent")
	assert.Contains(t, text.Text, "exactly one of file, url, or content")
}

// unmarshalStructured decodes a tool result's structured content, falling
// back to the first text content item.
func unmarshalStructured(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	require.NotEmpty(t, result.Content, "expected at least one content item")
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &m), "failed to parse text content as JSON")
	return m
}
