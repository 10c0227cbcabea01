package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"navindex/internal/application"
	"navindex/internal/application/commands"
	"navindex/internal/domain"
	"navindex/internal/ports"
)

// RegisterReadTools adds all read-only navigation tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, registry ports.NavigationRegistry) {
	s.AddTool(navigateTool(), navigateHandler(registry))
	s.AddTool(rootsTool(), rootsHandler(registry))
	s.AddTool(levelTool(), levelHandler(registry))
	s.AddTool(treeTool(), treeHandler(registry))
	s.AddTool(searchTool(), searchHandler(registry))
}

func kindOption() mcp.ToolOption {
	return mcp.WithString("kind",
		mcp.Description("Item kind: document or media. Defaults to document."),
		mcp.Enum("document", "media"),
	)
}

func binOption() mcp.ToolOption {
	return mcp.WithBoolean("bin",
		mcp.Description("Query the recycle bin instead of the live tree"),
	)
}

// --- navigate ---

func navigateTool() mcp.Tool {
	relations := make([]string, len(commands.Relations))
	for i, r := range commands.Relations {
		relations[i] = string(r)
	}
	return mcp.NewTool("navigate",
		mcp.WithDescription("Answer a structural question about a node: its parent, children, descendants, ancestors, siblings or level."),
		mcp.WithString("relation",
			mcp.Description("Relation to follow"),
			mcp.Required(),
			mcp.Enum(relations...),
		),
		mcp.WithString("key",
			mcp.Description("Node key (UUID). Not needed for roots."),
		),
		mcp.WithString("content_type",
			mcp.Description("Optional content type key (UUID) to filter results"),
		),
		kindOption(),
		binOption(),
	)
}

func navigateHandler(registry ports.NavigationRegistry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewQueryCommand(registry,
			req.GetString("kind", ""),
			req.GetString("relation", ""),
			req.GetString("key", ""),
			req.GetBool("bin", false),
		)
		cmd.ContentType = req.GetString("content_type", "")
		return queryResult(ctx, cmd)
	}
}

// --- roots ---

func rootsTool() mcp.Tool {
	return mcp.NewTool("roots",
		mcp.WithDescription("List the top level nodes of a tree in key order."),
		mcp.WithString("content_type",
			mcp.Description("Optional content type key (UUID) to filter results"),
		),
		kindOption(),
		binOption(),
	)
}

func rootsHandler(registry ports.NavigationRegistry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewQueryCommand(registry,
			req.GetString("kind", ""),
			string(commands.RelationRoots),
			"",
			req.GetBool("bin", false),
		)
		cmd.ContentType = req.GetString("content_type", "")
		return queryResult(ctx, cmd)
	}
}

// --- level ---

func levelTool() mcp.Tool {
	return mcp.NewTool("level",
		mcp.WithDescription("Get the depth of a node. Roots are at level 1."),
		mcp.WithString("key",
			mcp.Description("Node key (UUID)"),
			mcp.Required(),
		),
		kindOption(),
		binOption(),
	)
}

func levelHandler(registry ports.NavigationRegistry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewQueryCommand(registry,
			req.GetString("kind", ""),
			string(commands.RelationLevel),
			req.GetString("key", ""),
			req.GetBool("bin", false),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%d", result.Level)), nil
	}
}

func queryResult(ctx context.Context, cmd *commands.QueryCommand) (*mcp.CallToolResult, error) {
	result, err := cmd.Execute(ctx)
	if err != nil {
		return toolError(err)
	}
	if result.Relation == commands.RelationLevel {
		return mcp.NewToolResultText(fmt.Sprintf("%d", result.Level)), nil
	}
	if len(result.Keys) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, k := range result.Keys {
		sb.WriteString(application.FormatKey(k))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display a navigation tree, or one subtree of it, as indented keys."),
		mcp.WithString("root",
			mcp.Description("Only show the subtree under this key (UUID)"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Maximum depth to render. Omit for the whole tree."),
		),
		kindOption(),
		binOption(),
	)
}

func treeHandler(registry ports.NavigationRegistry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewBuildTreeCommand(registry, req.GetString("kind", ""), req.GetBool("bin", false))
		cmd.Root = req.GetString("root", "")
		cmd.MaxDepth = req.GetInt("depth", 0)

		root, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if root.IsLeaf() {
			return mcp.NewToolResultText(fmt.Sprintf("The %s tree is empty.", application.TreeName(root.Kind, root.Trashed))), nil
		}
		var sb strings.Builder
		renderTree(&sb, root, "")
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func renderTree(sb *strings.Builder, node *domain.TreeNode, prefix string) {
	if !node.IsSyntheticRoot() {
		fmt.Fprintf(sb, "%s%s\n", prefix, node.Key)
		prefix += "  "
	}
	for _, child := range node.Children {
		renderTree(sb, child, prefix)
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Find nodes whose key matches a fragment. Useful when only part of a UUID is known."),
		mcp.WithString("query",
			mcp.Description("Key fragment, at least two characters"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default 20)"),
		),
		kindOption(),
		binOption(),
	)
}

func searchHandler(registry ports.NavigationRegistry) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		cmd := commands.NewSearchCommand(registry, req.GetString("kind", ""), query, req.GetBool("bin", false))
		cmd.Limit = req.GetInt("limit", 20)
		results, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  level %d\n", r.Key, r.Level)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}
