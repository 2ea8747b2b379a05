// Package mcpserver exposes the model analyses as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leapstack-labs/pbixlint/internal/analysis"
	"github.com/leapstack-labs/pbixlint/pkg/pbix"
)

// ToolPrefix prefixes every tool name: pbix_tables, pbix_dax_measures, ...
const ToolPrefix = "pbix_"

// Config holds configuration for the tool server.
type Config struct {
	Name     string
	Version  string
	Loader   pbix.Loader
	Analyzer *analysis.Analyzer
	Logger   *slog.Logger
}

// Server wraps an MCP server with one tool per analysis kind.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New creates the tool server and registers its tools.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Loader == nil {
		cfg.Loader = pbix.NewLoader(cfg.Logger)
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = analysis.New(nil)
	}
	if cfg.Name == "" {
		cfg.Name = "pbixlint"
	}

	s := server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(true))
	for _, kind := range analysis.AllKinds() {
		AddAnalysisTool(s, kind, cfg.Loader, cfg.Analyzer, cfg.Logger)
	}
	AddReportTool(s, cfg.Loader, cfg.Analyzer, cfg.Logger)

	return &Server{mcp: s, logger: cfg.Logger}
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve answers requests on stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	s.logger.Info("starting MCP server on stdio")
	if err := server.NewStdioServer(s.mcp).Listen(ctx, stdin, stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// ToolName returns the tool name for kind.
func ToolName(kind analysis.Kind) string {
	return ToolPrefix + string(kind)
}

var toolDescriptions = map[analysis.Kind]string{
	analysis.KindTables:                  "List the tables of a Power BI model file.",
	analysis.KindMeasures:                "List the DAX measures of a Power BI model file with their expressions.",
	analysis.KindRelationships:           "List the relationships of a Power BI model file.",
	analysis.KindPowerQuery:              "List the Power Query (M) scripts of a Power BI model file.",
	analysis.KindBestPracticesDAX:        "Scan the DAX measures of a Power BI model file for best-practice issues.",
	analysis.KindBestPracticesPowerQuery: "Scan the Power Query scripts of a Power BI model file for hardcoded local file paths.",
	analysis.KindSchema:                  "List every column of every table of a Power BI model file.",
}

func filePathOption() mcp.ToolOption {
	return mcp.WithString("file_path",
		mcp.Required(),
		mcp.Description("Path to a .pbit, .pbix or .bim file on the server's filesystem"))
}

// AddAnalysisTool registers the tool for one analysis kind.
func AddAnalysisTool(s *server.MCPServer, kind analysis.Kind, loader pbix.Loader, a *analysis.Analyzer, logger *slog.Logger) {
	tool := mcp.NewTool(
		ToolName(kind),
		mcp.WithDescription(toolDescriptions[kind]),
		filePathOption(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createAnalysisHandler(kind, loader, a, logger))
}

// AddReportTool registers pbix_analyze, which runs every analysis at once.
func AddReportTool(s *server.MCPServer, loader pbix.Loader, a *analysis.Analyzer, logger *slog.Logger) {
	tool := mcp.NewTool(
		ToolPrefix+"analyze",
		mcp.WithDescription("Run every analysis against a Power BI model file."),
		filePathOption(),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createReportHandler(loader, a, logger))
}

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func createAnalysisHandler(kind analysis.Kind, loader pbix.Loader, a *analysis.Analyzer, logger *slog.Logger) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		model, errResult := loadFromRequest(ctx, request, loader, logger)
		if errResult != nil {
			return errResult, nil
		}
		payload, err := a.Run(model, kind)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResponse(map[string]any{kind.ResponseKey(): payload})
	}
}

func createReportHandler(loader pbix.Loader, a *analysis.Analyzer, logger *slog.Logger) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		model, errResult := loadFromRequest(ctx, request, loader, logger)
		if errResult != nil {
			return errResult, nil
		}
		return marshalToolResponse(a.All(model))
	}
}

// loadFromRequest validates the file_path argument and loads the model.
// Failures are returned as tool error results.
func loadFromRequest(ctx context.Context, request mcp.CallToolRequest, loader pbix.Loader, logger *slog.Logger) (pbix.Model, *mcp.CallToolResult) {
	args, ok := request.GetRawArguments().(map[string]interface{})
	if !ok {
		return nil, mcp.NewToolResultError("invalid arguments format")
	}
	path, _ := args["file_path"].(string)
	if strings.TrimSpace(path) == "" {
		return nil, mcp.NewToolResultError("file_path parameter is required")
	}

	model, err := loader.Load(ctx, path)
	if err != nil {
		logger.Debug("tool load failed", "tool", request.Params.Name, "path", path, "error", err)
		return nil, mcp.NewToolResultError(err.Error())
	}
	return model, nil
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
