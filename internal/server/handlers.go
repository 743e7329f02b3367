package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/logger"
	"github.com/ironsheep/docscan/internal/scan"
	"github.com/ironsheep/docscan/internal/stability"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "document_scan").
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
// Scan failures carry their kind in the error data.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		logger.WithField("tool", params.Name).WithError(err).Debug("tool failed")
		var data interface{} = err.Error()
		if kind := scan.KindOf(err); kind != "" {
			data = map[string]string{"kind": string(kind), "error": err.Error()}
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", data)
	}

	text, err := marshalJSON(result)
	if err != nil {
		logger.WithField("tool", params.Name).WithError(err).Error("failed to encode tool result")
		return s.errorResponse(req.ID, -32603, "Internal error", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_load":
		return s.handleImageLoad(args)

	// Document operations
	case "document_scan":
		return s.handleDocumentScan(args)
	case "document_order_corners":
		return s.handleOrderCorners(args)
	case "document_destination":
		return s.handleDestination(args)

	// Stability operations
	case "stability_observe":
		return s.handleStabilityObserve(args)
	case "stability_reset":
		return s.handleStabilityReset(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message string, data interface{}) *MCPResponse {
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

// marshalJSON converts a value to a pretty-printed JSON string.
func marshalJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(b), nil
}

// finite returns nil for NaN and infinities, which JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return json.Unmarshal(args, v)
}

// === Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Document Handlers ===

type documentScanArgs struct {
	Path         string `json:"path"`
	IncludeImage *bool  `json:"include_image"`
	Overlay      bool   `json:"overlay"`
	OverlayColor string `json:"overlay_color"`
	MaxDimension *int   `json:"max_dimension"`
}

type documentScanResult struct {
	*scan.Result
	Image   *imaging.EncodedImage `json:"image,omitempty"`
	Overlay *imaging.EncodedImage `json:"overlay,omitempty"`
}

func (s *Server) handleDocumentScan(args json.RawMessage) (interface{}, error) {
	var a documentScanArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	maxDim := 1600
	if a.MaxDimension != nil {
		maxDim = *a.MaxDimension
	}

	// Stored photos are scanned once; keeping them cached would grow without bound.
	defer s.cache.Evict(a.Path)

	res, err := s.scanner.ScanFile(a.Path)
	if err != nil {
		return nil, err
	}
	out := documentScanResult{Result: res}

	if a.IncludeImage == nil || *a.IncludeImage {
		if out.Image, err = imaging.EncodePNG(res.Image, maxDim); err != nil {
			return nil, err
		}
	}
	if a.Overlay {
		src, err := s.cache.Load(a.Path)
		if err != nil {
			return nil, err
		}
		drawn := imaging.DrawQuad(src, res.Corners, a.OverlayColor)
		if out.Overlay, err = imaging.EncodePNG(drawn, maxDim); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type pointArg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func toQuad(pts []pointArg) (geometry.Quad, error) {
	gp := make([]geometry.Point, len(pts))
	for i, p := range pts {
		gp[i] = geometry.Point{X: p.X, Y: p.Y}
	}
	return geometry.QuadFromPoints(gp)
}

type orderCornersArgs struct {
	Points []pointArg `json:"points"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Strict *bool      `json:"strict"`
}

type orderCornersResult struct {
	Corners geometry.Quad `json:"corners"`
	Roles   []string      `json:"roles"`
	// Ratio is null when two roles share a point and the bottom edge has no length.
	Ratio  *float64 `json:"ratio"`
	Strict bool     `json:"strict"`
}

func (s *Server) handleOrderCorners(args json.RawMessage) (interface{}, error) {
	var a orderCornersArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 || a.Height <= 0 {
		return nil, fmt.Errorf("width and height must be positive (got %dx%d)", a.Width, a.Height)
	}
	q, err := toQuad(a.Points)
	if err != nil {
		return nil, err
	}

	strict := s.cfg.Scan.StrictCornerOrder
	if a.Strict != nil {
		strict = *a.Strict
	}
	size := geometry.Size{Width: a.Width, Height: a.Height}
	var ordered geometry.Quad
	if strict {
		ordered = geometry.OrderCornersUnique(q, size)
	} else {
		ordered = geometry.OrderCorners(q, size)
	}

	return orderCornersResult{
		Corners: ordered,
		Roles:   []string{"top-left", "bottom-left", "bottom-right", "top-right"},
		Ratio:   finite(geometry.Ratio(ordered)),
		Strict:  strict,
	}, nil
}

type destinationArgs struct {
	Ratio   *float64   `json:"ratio"`
	Corners []pointArg `json:"corners"`
	Width   int        `json:"width"`
	Height  int        `json:"height"`
}

type destinationResult struct {
	Ratio       float64       `json:"ratio"`
	Destination geometry.Rect `json:"destination"`
}

func (s *Server) handleDestination(args json.RawMessage) (interface{}, error) {
	var a destinationArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var ratio float64
	switch {
	case a.Ratio != nil:
		ratio = *a.Ratio
	case len(a.Corners) > 0:
		q, err := toQuad(a.Corners)
		if err != nil {
			return nil, err
		}
		ratio = geometry.Ratio(q)
	default:
		return nil, errors.New("either ratio or corners is required")
	}

	rect, err := geometry.Destination(ratio, geometry.Size{Width: a.Width, Height: a.Height})
	if err != nil {
		return nil, err
	}
	return destinationResult{Ratio: ratio, Destination: rect}, nil
}

// === Stability Handlers ===

type stabilityResult struct {
	Decision string             `json:"decision"`
	Detail   stability.Decision `json:"detail"`
	State    stability.State    `json:"state"`
}

func (s *Server) handleStabilityObserve(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	// Frames are observed once; keeping them cached would grow without bound.
	s.cache.Evict(a.Path)

	d := s.monitor.Observe(img)
	return newStabilityResult(d, s.monitor.State()), nil
}

func (s *Server) handleStabilityReset(args json.RawMessage) (interface{}, error) {
	s.monitor.Reset()
	return newStabilityResult(stability.Decision{Kind: stability.Idle}, s.monitor.State()), nil
}
