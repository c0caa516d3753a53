// Package server implements the MCP (Model Context Protocol) server that
// drives the annotator.
//
// The server is the display surface of the annotator: a client loads
// images, reports how the working image is displayed, clicks on it to
// build groups of grid cells, and edits categories, rules and project
// attributes. Every tool maps onto one project operation.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Coordinates
//
// Click coordinates are display pixels with the origin at the bottom-left
// of the display container. Letterbox offsets reported through
// dss_display_frame are included, so a click at (offset_x, offset_y) is the
// bottom-left corner of the image.
//
// # Available Tools
//
// Images:
//   - dss_image_load_file, dss_image_load_bytes, dss_image_load_item
//   - dss_items_list, dss_images_list
//   - dss_image_set_working, dss_image_remove, dss_image_hide
//   - dss_display_frame, dss_grid_spacing, dss_overlay
//
// Selection:
//   - dss_click, dss_segment, dss_line
//   - dss_redraw_begin, dss_redraw_cancel
//
// Groups:
//   - dss_group_list, dss_group_rename, dss_group_color
//   - dss_group_hide, dss_group_remove, dss_group_ocr
//
// Categories:
//   - dss_category_add, dss_category_list, dss_category_rename
//   - dss_category_color, dss_category_amount, dss_category_range
//   - dss_category_order, dss_category_remove
//
// Rules:
//   - dss_rule_comparators, dss_rule_add, dss_rule_list, dss_rule_remove
//
// Project:
//   - dss_project_attributes, dss_project_set_attribute
//   - dss_project_preview, dss_xml_preview, dss_export
//   - dss_session_save, dss_status, dss_info_panel
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Failures of the key-value store or the rule pipeline during an otherwise
// successful operation do not fail the call. They are kept as status
// messages and returned by dss_status.
//
// # Usage
//
//	srv := server.New(server.Deps{Config: cfg, Project: proj})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
