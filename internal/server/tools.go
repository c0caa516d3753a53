package server

import "github.com/ironsheep/dss-annotator/internal/persist"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	s := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

var (
	xProp        = prop("number", "X in display pixels, origin bottom-left")
	yProp        = prop("number", "Y in display pixels, origin bottom-left")
	groupProp    = prop("string", "Group name")
	categoryProp = prop("string", "Category name")
	newNameProp  = prop("string", "New name")
	colorProp    = prop("string", "Color as #rrggbb, #rgb or a color name")
	workingProp  = prop("boolean", "Make this the working image. Default true when no image is open")
	noArgs       = objectSchema(map[string]interface{}{})
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Acquisition
		{
			Name:        "dss_image_load_file",
			Description: "Load an image file into the thumbnail set. The image is hashed and resized for display.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":    prop("string", "Absolute path to the image file"),
				"working": workingProp,
			}, "path"),
		},
		{
			Name:        "dss_image_load_bytes",
			Description: "Load an image from base64-encoded bytes into the thumbnail set.",
			InputSchema: objectSchema(map[string]interface{}{
				"data":    prop("string", "Base64-encoded image bytes"),
				"name":    prop("string", "Name recorded as the image path"),
				"working": workingProp,
			}, "data"),
		},
		{
			Name:        "dss_image_load_item",
			Description: "Load the image of a key-value store item (glworb:*). Items without image data get a placeholder showing their fields.",
			InputSchema: objectSchema(map[string]interface{}{
				"id":      prop("string", "Item key"),
				"working": workingProp,
			}, "id"),
		},
		{
			Name:        "dss_items_list",
			Description: "List image items in the key-value store with their formatted fields.",
			InputSchema: objectSchema(map[string]interface{}{
				"filter": prop("string", "Only items whose text contains this substring"),
			}),
		},
		{
			Name:        "dss_images_list",
			Description: "List the loaded thumbnails in load order.",
			InputSchema: objectSchema(map[string]interface{}{
				"thumbnails": prop("boolean", "Include base64 PNG thumbnails"),
			}),
		},
		{
			Name:        "dss_image_set_working",
			Description: "Switch the working image to a loaded thumbnail. Groups are kept.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Thumbnail path or content hash"),
			}, "path"),
		},
		{
			Name:        "dss_image_remove",
			Description: "Remove a thumbnail. Removing the working image switches to the previous thumbnail.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": prop("string", "Thumbnail path or content hash"),
			}, "path"),
		},
		{
			Name:        "dss_image_hide",
			Description: "Toggle hiding the working image content behind a gradient.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_display_frame",
			Description: "Report where the working image is displayed: letterbox offset and displayed size.",
			InputSchema: objectSchema(map[string]interface{}{
				"offset_x":       prop("integer", "Horizontal letterbox offset"),
				"offset_y":       prop("integer", "Vertical letterbox offset"),
				"display_width":  prop("integer", "Displayed width"),
				"display_height": prop("integer", "Displayed height"),
			}, "display_width", "display_height"),
		},
		{
			Name:        "dss_grid_spacing",
			Description: "Set or adjust the selection grid spacing. Returns the new spacing.",
			InputSchema: objectSchema(map[string]interface{}{
				"spacing": prop("integer", "New spacing in display pixels"),
				"delta":   prop("integer", "Amount to add to the current spacing, e.g. 10 or -10"),
			}),
		},
		{
			Name:        "dss_overlay",
			Description: "Render the working image with the grid and group overlays as base64 PNG.",
			InputSchema: noArgs,
		},

		// Selection
		{
			Name:        "dss_click",
			Description: "Toggle the grid cell under a click. The cell joins a nearby group or starts a new one. In redraw mode the click is a rectangle corner.",
			InputSchema: objectSchema(map[string]interface{}{"x": xProp, "y": yProp}, "x", "y"),
		},
		{
			Name:        "dss_segment",
			Description: "Toggle every cell along a drag, following its dominant axis.",
			InputSchema: objectSchema(map[string]interface{}{
				"x1": xProp, "y1": yProp, "x2": xProp, "y2": yProp,
			}, "x1", "y1", "x2", "y2"),
		},
		{
			Name:        "dss_line",
			Description: "Toggle every cell of the row (axis x) or column (axis y) through a point.",
			InputSchema: objectSchema(map[string]interface{}{
				"x":    xProp,
				"y":    yProp,
				"axis": map[string]interface{}{"type": "string", "enum": []string{"x", "y"}, "description": "x for a row, y for a column"},
			}, "x", "y", "axis"),
		},
		{
			Name:        "dss_redraw_begin",
			Description: "Enter redraw mode for a group: the next two clicks give a rectangle that replaces its regions.",
			InputSchema: objectSchema(map[string]interface{}{"group": groupProp}, "group"),
		},
		{
			Name:        "dss_redraw_cancel",
			Description: "Leave redraw mode.",
			InputSchema: noArgs,
		},

		// Groups
		{
			Name:        "dss_group_list",
			Description: "List groups with regions, bounding rectangles and source-space rectangles.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_group_rename",
			Description: "Rename a group. A saved default color for the new name is applied.",
			InputSchema: objectSchema(map[string]interface{}{"name": groupProp, "new_name": newNameProp}, "name", "new_name"),
		},
		{
			Name:        "dss_group_color",
			Description: "Set a group's color.",
			InputSchema: objectSchema(map[string]interface{}{"name": groupProp, "color": colorProp}, "name", "color"),
		},
		{
			Name:        "dss_group_hide",
			Description: "Toggle drawing a group as an outline only.",
			InputSchema: objectSchema(map[string]interface{}{"name": groupProp}, "name"),
		},
		{
			Name:        "dss_group_remove",
			Description: "Remove a group.",
			InputSchema: objectSchema(map[string]interface{}{"name": groupProp}, "name"),
		},
		{
			Name:        "dss_group_ocr",
			Description: "Run OCR over a group's bounding box on the working image.",
			InputSchema: objectSchema(map[string]interface{}{"name": groupProp}, "name"),
		},

		// Categories
		{
			Name:        "dss_category_add",
			Description: "Add a category. Without a rough order it is appended.",
			InputSchema: objectSchema(map[string]interface{}{
				"name":         categoryProp,
				"color":        colorProp,
				"rough_amount": prop("integer", "Rough count"),
				"rough_order":  prop("number", "Sort key; may be negative or fractional"),
			}),
		},
		{
			Name:        "dss_category_list",
			Description: "List categories in rough order with the derived dictionaries.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_category_rename",
			Description: "Rename a category.",
			InputSchema: objectSchema(map[string]interface{}{"name": categoryProp, "new_name": newNameProp}, "name", "new_name"),
		},
		{
			Name:        "dss_category_color",
			Description: "Set a category's color.",
			InputSchema: objectSchema(map[string]interface{}{"name": categoryProp, "color": colorProp}, "name", "color"),
		},
		{
			Name:        "dss_category_amount",
			Description: "Set a category's rough amount directly.",
			InputSchema: objectSchema(map[string]interface{}{
				"name":         categoryProp,
				"rough_amount": prop("integer", "Rough count"),
			}, "name", "rough_amount"),
		},
		{
			Name:        "dss_category_range",
			Description: "Derive a category's rough amount from a start and end, each an integer or roman numeral. An unparseable range is flagged invalid and the amount is kept.",
			InputSchema: objectSchema(map[string]interface{}{
				"name":  categoryProp,
				"start": prop("string", "Range start, e.g. 5 or III"),
				"end":   prop("string", "Range end, e.g. 12 or X"),
			}, "name", "start", "end"),
		},
		{
			Name:        "dss_category_order",
			Description: "Set a category's rough order and re-sort.",
			InputSchema: objectSchema(map[string]interface{}{
				"name":        categoryProp,
				"rough_order": prop("number", "Sort key"),
			}, "name", "rough_order"),
		},
		{
			Name:        "dss_category_remove",
			Description: "Remove a category.",
			InputSchema: objectSchema(map[string]interface{}{"name": categoryProp}, "name"),
		},

		// Rules
		{
			Name:        "dss_rule_comparators",
			Description: "List the comparator symbols with their parameter shapes.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_rule_add",
			Description: "Add a rule. When the source names a group, a crop and OCR pipe is registered and loaded store items are run through it.",
			InputSchema: objectSchema(map[string]interface{}{
				"source":      prop("string", "Source field or group name"),
				"symbol":      prop("string", "Comparator symbol: ~~, is, between"),
				"params":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}, "description": "Comparator parameters, at least one"},
				"destination": prop("string", "Destination field"),
				"result":      prop("string", "Value written to the destination field"),
			}, "source", "symbol", "params", "destination", "result"),
		},
		{
			Name:        "dss_rule_list",
			Description: "List rules with their canonical string form.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_rule_remove",
			Description: "Remove a rule by id.",
			InputSchema: objectSchema(map[string]interface{}{"id": prop("string", "Rule id")}, "id"),
		},

		// Project
		{
			Name:        "dss_project_attributes",
			Description: "List the project attributes and the standard attribute names.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_project_set_attribute",
			Description: "Set a project attribute. The name attribute sets the publish key.",
			InputSchema: objectSchema(map[string]interface{}{
				"name":  prop("string", "Attribute name"),
				"value": prop("string", "Attribute value"),
			}, "name", "value"),
		},
		{
			Name:        "dss_project_preview",
			Description: "Return the project overview bar, its thumbnail and the dimensions image as base64 PNG.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_xml_preview",
			Description: "Return the project XML without writing it.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_export",
			Description: "Export the project: xml, xml->pub, xml+sources(dir) or xml+sources(zipped).",
			InputSchema: objectSchema(map[string]interface{}{
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        persist.ExportModes,
					"description": "Export mode. Default xml",
				},
			}),
		},
		{
			Name:        "dss_session_save",
			Description: "Save the session and the name to color defaults.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_status",
			Description: "Return recent status messages from degraded operations.",
			InputSchema: noArgs,
		},
		{
			Name:        "dss_info_panel",
			Description: "Return the fields of the working image's store item, refreshed periodically.",
			InputSchema: noArgs,
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
