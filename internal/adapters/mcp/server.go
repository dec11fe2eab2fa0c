// Package mcp exposes the DTMF sender as a Model Context Protocol tool.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	senddtmf "github.com/aretw0/senddtmf"
	"github.com/aretw0/senddtmf/internal/metrics"
	"github.com/aretw0/senddtmf/pkg/ctrlfile"
	"github.com/aretw0/senddtmf/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Sender delivers a sequence to the control path.
type Sender interface {
	Send(ctx context.Context, digits string) (ctrlfile.Report, error)
}

// SendResult is the JSON text returned by the send_dtmf tool on success.
type SendResult struct {
	Status  string `json:"status"`
	Digits  string `json:"digits"`
	Bytes   int    `json:"bytes"`
	Blocked bool   `json:"blocked"`
}

// Server wraps a Sender and exposes it as an MCP server.
type Server struct {
	sender    Sender
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(sender Sender) *Server {
	s := &Server{
		sender:    sender,
		mcpServer: server.NewMCPServer("send-dtmf-mcp", strings.TrimSpace(senddtmf.Version)),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_dtmf",
		mcp.WithDescription("Write a DTMF sequence to the SvxLink control file so the repeater plays the tones."),
		mcp.WithString("digits", mcp.Required(), mcp.Description("DTMF sequence, e.g. *123#. Symbols: 0-9 A-D * #")),
	)
	s.mcpServer.AddTool(sendTool, s.handleSendDTMF)
}

func (s *Server) handleSendDTMF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	digits, err := request.RequireString("digits")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := s.sender.Send(ctx, digits)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("send failed (%s, exit code %d): %v",
			metrics.Outcome(err), domain.ExitCode(err), err)), nil
	}

	jsonBytes, _ := json.Marshal(SendResult{
		Status:  "sent",
		Digits:  digits,
		Bytes:   rep.Written,
		Blocked: rep.Blocked,
	})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}
