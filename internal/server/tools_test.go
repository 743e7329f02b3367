package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"document_scan",
		"document_order_corners",
		"document_destination",
		"stability_observe",
		"stability_reset",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("properties should be a map")
			}

			// Every required parameter must be declared.
			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				if _, ok := props[name]; !ok {
					t.Errorf("required parameter %s not in properties", name)
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	pathTools := map[string]bool{
		"image_load":        true,
		"document_scan":     true,
		"stability_observe": true,
	}

	for _, tool := range GetToolDefinitions() {
		if !pathTools[tool.Name] {
			continue
		}
		required, _ := tool.InputSchema["required"].([]string)
		found := false
		for _, r := range required {
			if r == "path" {
				found = true
			}
		}
		if !found {
			t.Errorf("%s should require path", tool.Name)
		}
	}
}

func TestToolDefinitions_OptionalDefaults(t *testing.T) {
	toolDefaults := map[string]map[string]interface{}{
		"document_scan": {"include_image": true, "overlay": false, "overlay_color": "#00ff00", "max_dimension": 1600},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for toolName, expectedDefaults := range toolDefaults {
		props := toolMap[toolName].InputSchema["properties"].(map[string]interface{})
		for paramName, want := range expectedDefaults {
			param, ok := props[paramName].(map[string]interface{})
			if !ok {
				t.Errorf("%s.%s: parameter not found", toolName, paramName)
				continue
			}
			if got := param["default"]; got != want {
				t.Errorf("%s.%s: default got %v, want %v", toolName, paramName, got, want)
			}
		}
	}
}

func TestToolDefinitions_PointsSchema(t *testing.T) {
	props := pointsProperty("corners")
	if props["minItems"] != 4 || props["maxItems"] != 4 {
		t.Errorf("points must hold exactly four items: %v", props)
	}
	items, ok := props["items"].(map[string]interface{})
	if !ok || items["type"] != "object" {
		t.Errorf("items: got %v", props["items"])
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result := resp.Result.(map[string]interface{})
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
