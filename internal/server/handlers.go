package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/dss-annotator/internal/config"
	"github.com/ironsheep/dss-annotator/internal/imagestore"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "dss_click", "dss_export").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		if config.Debug() {
			log.Printf("tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Calls into the project, image library or exporter
//  4. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Images
	case "dss_image_load_file":
		return s.handleImageLoadFile(ctx, args)
	case "dss_image_load_bytes":
		return s.handleImageLoadBytes(ctx, args)
	case "dss_image_load_item":
		return s.handleImageLoadItem(ctx, args)
	case "dss_items_list":
		return s.handleItemsList(ctx, args)
	case "dss_images_list":
		return s.handleImagesList(args)
	case "dss_image_set_working":
		return s.handleImageSetWorking(ctx, args)
	case "dss_image_remove":
		return s.handleImageRemove(ctx, args)
	case "dss_image_hide":
		return s.handleImageHide()
	case "dss_display_frame":
		return s.handleDisplayFrame(args)
	case "dss_grid_spacing":
		return s.handleGridSpacing(args)
	case "dss_overlay":
		return s.handleOverlay()

	// Selection
	case "dss_click":
		return s.handleClick(args)
	case "dss_segment":
		return s.handleSegment(args)
	case "dss_line":
		return s.handleLine(args)
	case "dss_redraw_begin":
		return s.handleRedrawBegin(args)
	case "dss_redraw_cancel":
		return s.handleRedrawCancel()

	// Groups
	case "dss_group_list":
		return s.handleGroupList()
	case "dss_group_rename":
		return s.handleGroupRename(args)
	case "dss_group_color":
		return s.handleGroupColor(args)
	case "dss_group_hide":
		return s.handleGroupHide(args)
	case "dss_group_remove":
		return s.handleGroupRemove(args)
	case "dss_group_ocr":
		return s.handleGroupOCR(args)

	// Categories
	case "dss_category_add":
		return s.handleCategoryAdd(args)
	case "dss_category_list":
		return s.handleCategoryList()
	case "dss_category_rename":
		return s.handleCategoryRename(args)
	case "dss_category_color":
		return s.handleCategoryColor(args)
	case "dss_category_amount":
		return s.handleCategoryAmount(args)
	case "dss_category_range":
		return s.handleCategoryRange(args)
	case "dss_category_order":
		return s.handleCategoryOrder(args)
	case "dss_category_remove":
		return s.handleCategoryRemove(args)

	// Rules
	case "dss_rule_comparators":
		return s.handleRuleComparators()
	case "dss_rule_add":
		return s.handleRuleAdd(ctx, args)
	case "dss_rule_list":
		return s.handleRuleList()
	case "dss_rule_remove":
		return s.handleRuleRemove(args)

	// Project
	case "dss_project_attributes":
		return s.handleProjectAttributes()
	case "dss_project_set_attribute":
		return s.handleProjectSetAttribute(args)
	case "dss_project_preview":
		return s.handleProjectPreview()
	case "dss_xml_preview":
		return s.handleXMLPreview()
	case "dss_export":
		return s.handleExport(ctx, args)
	case "dss_session_save":
		return s.handleSessionSave()
	case "dss_status":
		return s.handleStatus()
	case "dss_info_panel":
		return s.handleInfoPanel(ctx)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// pngBase64 encodes img as base64 PNG.
func pngBase64(img image.Image) (string, error) {
	data, err := imagestore.EncodeBytes(img, imagestore.FormatPNG)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
