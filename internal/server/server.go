package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ironsheep/dss-annotator/internal/config"
	"github.com/ironsheep/dss-annotator/internal/imagestore"
	"github.com/ironsheep/dss-annotator/internal/ocr"
	"github.com/ironsheep/dss-annotator/internal/persist"
	"github.com/ironsheep/dss-annotator/internal/project"
	"github.com/ironsheep/dss-annotator/internal/render"
)

// Version is reported in the initialize handshake.
var Version = "0.1.0"

// Deps are the collaborators a Server drives. Store and OCR may be nil;
// the tools that need them then fail.
type Deps struct {
	Config   *config.Config
	Project  *project.Project
	Library  *imagestore.Library
	Ingester imagestore.Ingester
	Store    *imagestore.Store
	Panel    *imagestore.Panel
	Renderer *render.Renderer
	Exporter *persist.Exporter
	OCR      *ocr.Reader
}

// Server handles MCP protocol communication
type Server struct {
	cfg      *config.Config
	project  *project.Project
	library  *imagestore.Library
	ingester imagestore.Ingester
	store    *imagestore.Store
	panel    *imagestore.Panel
	renderer *render.Renderer
	exporter *persist.Exporter
	ocr      *ocr.Reader
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance. Missing collaborators are
// filled with in-memory defaults.
func New(d Deps) *Server {
	if d.Config == nil {
		d.Config = config.Default()
	}
	if d.Library == nil {
		d.Library = imagestore.NewLibrary()
	}
	if d.Renderer == nil {
		d.Renderer = render.NewRenderer(render.DefaultSizes)
	}
	if d.Project == nil {
		d.Project = project.New(project.Options{Renderer: d.Renderer})
	}
	if d.Exporter == nil {
		d.Exporter = &persist.Exporter{Dir: d.Config.Export.Dir, Format: d.Config.Export.ImageFormat, Sources: d.Library}
	}
	if d.Panel == nil {
		d.Panel = imagestore.NewPanel(d.Store)
		d.Panel.CategoryColor = d.Project.CategoryColor
	}
	return &Server{
		cfg:      d.Config,
		project:  d.Project,
		library:  d.Library,
		ingester: d.Ingester,
		store:    d.Store,
		panel:    d.Panel,
		renderer: d.Renderer,
		exporter: d.Exporter,
		ocr:      d.OCR,
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve handles line-delimited requests from r until EOF or until ctx is
// cancelled. Cancellation is not an error.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines, errc := readLines(ctx, r)
	encoder := json.NewEncoder(w)

	for {
		var line []byte
		select {
		case <-ctx.Done():
			log.Printf("Stopping: %v", ctx.Err())
			return nil
		case l, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return fmt.Errorf("scanner error: %w", err)
				}
				return nil
			}
			line = l
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				log.Printf("Failed to encode response: %v", err)
			}
		}
	}
}

// readLines scans r on its own goroutine so a blocked read never holds up
// shutdown. Empty lines are dropped. The scanner error is sent on the
// second channel before the first is closed.
func readLines(ctx context.Context, r io.Reader) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errc := make(chan error, 1)

	go func() {
		var err error
		defer func() {
			errc <- err
			close(lines)
		}()

		scanner := bufio.NewScanner(r)
		// Image bytes arrive base64-encoded, so allow large lines.
		buf := make([]byte, 0, 64*1024)
		scanner.Buffer(buf, 64*1024*1024)

		for scanner.Scan() {
			if len(scanner.Bytes()) == 0 {
				continue
			}
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		err = scanner.Err()
	}()

	return lines, errc
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	if config.Debug() {
		log.Printf("request %v %s", req.ID, req.Method)
	}
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "dss-annotator",
				"version": Version,
			},
		},
	}
}
