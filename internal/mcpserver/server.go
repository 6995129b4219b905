// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the camera ledger as tools for LLM integration.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/camledger/internal/ledger"
	"github.com/starford/camledger/internal/lending"
)

const dateFormatURI = "camledger://date-format"

// Server wraps the MCP server with ledger tools.
type Server struct {
	mcp *server.MCPServer
	svc *lending.Service
}

// New creates a new MCP server with all ledger tools registered.
func New(svc *lending.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"camledger",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_cameras",
		mcp.WithDescription("List every camera with its status (available or checked out), "+
			"current borrower and upcoming reservations."),
	), s.listCameras)

	s.mcp.AddTool(mcp.NewTool("reserve_camera",
		mcp.WithDescription("Reserve a camera for a closed date interval. "+
			"Dates use M/D or Y/M/D; read get_date_format or the "+dateFormatURI+" resource first."),
		mcp.WithNumber("camera_id", mcp.Required(), mcp.Description("Camera id from list_cameras")),
		mcp.WithString("user", mcp.Description("Borrower name")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("First day, e.g. 1/15")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Last day, e.g. 1/20")),
		mcp.WithString("purpose", mcp.Description("What the camera is for")),
	), s.reserveCamera)

	s.mcp.AddTool(mcp.NewTool("return_camera",
		mcp.WithDescription("Return a checked-out camera. Removes only the reservation covering today."),
		mcp.WithNumber("camera_id", mcp.Required(), mcp.Description("Camera id")),
	), s.returnCamera)

	s.mcp.AddTool(mcp.NewTool("cancel_reservation",
		mcp.WithDescription("Cancel reservations whose stored dates match exactly (Y/M/D as listed)."),
		mcp.WithNumber("camera_id", mcp.Required(), mcp.Description("Camera id")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Stored start date, e.g. 2026/1/15")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("Stored end date, e.g. 2026/1/20")),
	), s.cancelReservation)

	s.mcp.AddTool(mcp.NewTool("add_camera",
		mcp.WithDescription("Add a camera to the collection."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Camera name")),
	), s.addCamera)

	s.mcp.AddTool(mcp.NewTool("rename_camera",
		mcp.WithDescription("Rename a camera."),
		mcp.WithNumber("camera_id", mcp.Required(), mcp.Description("Camera id")),
		mcp.WithString("name", mcp.Required(), mcp.Description("New name")),
	), s.renameCamera)

	s.mcp.AddTool(mcp.NewTool("delete_camera",
		mcp.WithDescription("Delete a camera. Refused while the camera is checked out."),
		mcp.WithNumber("camera_id", mcp.Required(), mcp.Description("Camera id")),
	), s.deleteCamera)

	s.mcp.AddTool(mcp.NewTool("camera_history",
		mcp.WithDescription("Recent lending journal entries, newest first."),
		mcp.WithNumber("camera_id", mcp.Description("Only this camera (omit for all)")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries (default 50)")),
	), s.cameraHistory)

	s.mcp.AddTool(mcp.NewTool("get_date_format",
		mcp.WithDescription("Returns the accepted reservation date formats and booking rules."),
	), s.getDateFormat)

	s.mcp.AddResource(
		mcp.NewResource(dateFormatURI, "Date Format",
			mcp.WithResourceDescription("Accepted reservation date formats and booking rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDateFormatResource,
	)

	return s
}

// Handler returns the streamable HTTP transport for mounting on a router.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listCameras(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Snapshot()), nil
}

func (s *Server) reserveCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("camera_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := s.svc.Reserve(ctx, id, ledger.ReserveRequest{
		User:    req.GetString("user", ""),
		Start:   start,
		End:     end,
		Purpose: req.GetString("purpose", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("reserved camera %d: %s to %s", id, r.StartDate, r.EndDate)), nil
}

func (s *Server) returnCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("camera_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, ok := s.svc.Return(ctx, id)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("camera %d has no active loan", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("returned camera %d (borrowed by %s)", id, r.User)), nil
}

func (s *Server) cancelReservation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("camera_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n := s.svc.Cancel(ctx, id, start, end)
	return mcp.NewToolResultText(fmt.Sprintf("cancelled %d reservation(s)", n)), nil
}

func (s *Server) addCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := s.svc.AddCamera(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added camera %d", id)), nil
}

func (s *Server) renameCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("camera_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	renamed, err := s.svc.RenameCamera(ctx, id, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !renamed {
		return mcp.NewToolResultText(fmt.Sprintf("camera %d not found, nothing changed", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed camera %d", id)), nil
}

func (s *Server) deleteCamera(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("camera_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	deleted, err := s.svc.DeleteCamera(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !deleted {
		return mcp.NewToolResultText(fmt.Sprintf("camera %d not found, nothing changed", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted camera %d", id)), nil
}

func (s *Server) cameraHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := s.svc.History(ctx, req.GetInt("camera_id", 0), req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(events), nil
}

func (s *Server) getDateFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DateFormatContract), nil
}

func (s *Server) readDateFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      dateFormatURI,
			MIMEType: "text/markdown",
			Text:     DateFormatContract,
		},
	}, nil
}
