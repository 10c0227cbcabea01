package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"navindex/internal/application/commands"
)

// RegisterWriteTools adds all structural mutation tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, env commands.Env) {
	s.AddTool(addTool(), addHandler(env))
	s.AddTool(moveTool(), moveHandler(env))
	s.AddTool(sortTool(), sortHandler(env))
	s.AddTool(removeTool(), removeHandler(env))
	s.AddTool(trashTool(), trashHandler(env))
	s.AddTool(restoreTool(), restoreHandler(env))
	s.AddTool(purgeTool(), purgeHandler(env))
	s.AddTool(rebuildTool(), rebuildHandler(env))
}

// --- add ---

func addTool() mcp.Tool {
	return mcp.NewTool("add",
		mcp.WithDescription("Add a node to the live tree. Without a parent the node becomes a root."),
		mcp.WithString("key",
			mcp.Description("Key (UUID) for the new node. Omit to generate one."),
		),
		mcp.WithString("content_type",
			mcp.Description("Content type key (UUID)"),
		),
		mcp.WithString("parent",
			mcp.Description("Parent key (UUID). Omit to add at the top level."),
		),
		kindOption(),
	)
}

func addHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewAddCommand(env,
			req.GetString("kind", ""),
			req.GetString("key", ""),
			req.GetString("content_type", ""),
			req.GetString("parent", ""),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mutationResult(result)
	}
}

// --- sort ---

func sortTool() mcp.Tool {
	return mcp.NewTool("sort",
		mcp.WithDescription("Set the sort order of a node in the live tree. Roots are listed by sort order."),
		mcp.WithString("key",
			mcp.Description("Key (UUID) of the node"),
			mcp.Required(),
		),
		mcp.WithNumber("sort_order",
			mcp.Description("New sort order (0 or greater)"),
			mcp.Required(),
		),
		kindOption(),
	)
}

func sortHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewSortCommand(env,
			req.GetString("kind", ""),
			req.GetString("key", ""),
			req.GetInt("sort_order", 0),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mutationResult(result)
	}
}

// --- move ---

func moveTool() mcp.Tool {
	return mcp.NewTool("move",
		mcp.WithDescription("Move a node and its subtree under a new parent in the live tree."),
		mcp.WithString("key",
			mcp.Description("Key (UUID) of the node to move"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("New parent key (UUID). Omit to move to the top level."),
		),
		kindOption(),
	)
}

func moveHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewMoveCommand(env,
			req.GetString("kind", ""),
			req.GetString("key", ""),
			req.GetString("target", ""),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mutationResult(result)
	}
}

// --- remove ---

func removeTool() mcp.Tool {
	return mcp.NewTool("remove",
		mcp.WithDescription("Permanently remove a node and all its descendants from the live tree."),
		mcp.WithString("key",
			mcp.Description("Key (UUID) of the node to remove"),
			mcp.Required(),
		),
		kindOption(),
	)
}

func removeHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewRemoveCommand(env, req.GetString("kind", ""), req.GetString("key", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mutationResult(result)
	}
}

// --- trash ---

func trashTool() mcp.Tool {
	return mcp.NewTool("trash",
		mcp.WithDescription("Move a node and its subtree from the live tree into the recycle bin."),
		mcp.WithString("key",
			mcp.Description("Key (UUID) of the node to trash"),
			mcp.Required(),
		),
		kindOption(),
	)
}

func trashHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewTrashCommand(env, req.GetString("kind", ""), req.GetString("key", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mutationResult(result)
	}
}

// --- restore ---

func restoreTool() mcp.Tool {
	return mcp.NewTool("restore",
		mcp.WithDescription("Restore a node and its subtree from the recycle bin into the live tree."),
		mcp.WithString("key",
			mcp.Description("Key (UUID) of the trashed node"),
			mcp.Required(),
		),
		mcp.WithString("target",
			mcp.Description("Live parent key (UUID). Omit to restore at the top level."),
		),
		kindOption(),
	)
}

func restoreHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewRestoreCommand(env,
			req.GetString("kind", ""),
			req.GetString("key", ""),
			req.GetString("target", ""),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mutationResult(result)
	}
}

// --- purge ---

func purgeTool() mcp.Tool {
	return mcp.NewTool("purge",
		mcp.WithDescription("Permanently delete a node and its subtree from the recycle bin."),
		mcp.WithString("key",
			mcp.Description("Key (UUID) of the trashed node"),
			mcp.Required(),
		),
		kindOption(),
	)
}

func purgeHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewPurgeCommand(env, req.GetString("kind", ""), req.GetString("key", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mutationResult(result)
	}
}

// --- rebuild ---

func rebuildTool() mcp.Tool {
	return mcp.NewTool("rebuild",
		mcp.WithDescription("Reload navigation trees from the store. Use after external changes."),
		mcp.WithBoolean("all",
			mcp.Description("Rebuild every tree of every kind"),
		),
		mcp.WithBoolean("broadcast",
			mcp.Description("Ask other processes sharing the store to rebuild too"),
		),
		kindOption(),
		binOption(),
	)
}

func rebuildHandler(env commands.Env) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var cmd *commands.RebuildCommand
		if req.GetBool("all", false) {
			cmd = commands.NewRebuildAllCommand(env)
		} else {
			cmd = commands.NewRebuildCommand(env, req.GetString("kind", ""), req.GetBool("bin", false))
		}
		cmd.Broadcast = req.GetBool("broadcast", false)

		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(withWarnings(result.Message, result.NotifyErrors)), nil
	}
}

func mutationResult(result *commands.MutationResult) (*mcp.CallToolResult, error) {
	msg := result.Message
	if result.Reconciled {
		msg += " (index reconciled from store)"
	}
	return mcp.NewToolResultText(withWarnings(msg, result.NotifyErrors)), nil
}

func withWarnings(msg string, errs []error) string {
	if len(errs) == 0 {
		return msg
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for _, err := range errs {
		fmt.Fprintf(&sb, "\nwarning: %v", err)
	}
	return sb.String()
}
