package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"gopkg.in/yaml.v3"
)

// Format identifies a graph definition encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// ErrUnsupportedFormat is returned for unknown formats and file extensions.
var ErrUnsupportedFormat = errors.New("unsupported graph format")

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadFile reads and builds a graph from a definition file.
func LoadFile(path string) (*Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	g, err := parse(data, format, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph %s: %w", path, err)
	}
	return g, nil
}

// Parse builds a graph from an in-memory definition.
func Parse(data []byte, format Format) (*Graph, error) {
	return parse(data, format, "graph."+string(format))
}

func parse(data []byte, format Format, filename string) (*Graph, error) {
	var (
		cfg GraphConfig
		err error
	)

	switch format {
	case FormatJSON:
		if err = json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON graph: %w", err)
		}
	case FormatYAML:
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML graph: %w", err)
		}
	case FormatHCL:
		if cfg, err = parseHCL(data, filename); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return New(cfg)
}

type hclFile struct {
	Graphs []*hclGraph `hcl:"graph,block"`
}

type hclGraph struct {
	ID        string     `hcl:"id,label"`
	StartNode string     `hcl:"start_node"`
	Nodes     []*hclNode `hcl:"node,block"`
}

type hclNode struct {
	Name        string            `hcl:"name,label"`
	Tool        string            `hcl:"tool,optional"`
	RouteKey    string            `hcl:"route_key,optional"`
	Next        map[string]string `hcl:"next,optional"`
	DefaultNext string            `hcl:"default_next,optional"`
}

// parseHCL decodes a file holding exactly one graph block:
//
//	graph "code_review_v1" {
//	  start_node = "extract"
//	  node "extract" {
//	    tool         = "extract_functions"
//	    default_next = "complexity"
//	  }
//	}
func parseHCL(data []byte, filename string) (GraphConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return GraphConfig{}, fmt.Errorf("failed to parse HCL graph %s: %w", filename, diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return GraphConfig{}, fmt.Errorf("failed to decode HCL graph %s: %w", filename, diags)
	}

	if len(parsed.Graphs) != 1 {
		return GraphConfig{}, fmt.Errorf("HCL file %s must contain exactly one graph block, found %d", filename, len(parsed.Graphs))
	}

	g := parsed.Graphs[0]
	cfg := GraphConfig{
		ID:        g.ID,
		StartNode: g.StartNode,
		Nodes:     make(map[string]NodeConfig, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		if _, exists := cfg.Nodes[n.Name]; exists {
			return GraphConfig{}, &GraphIntegrityError{GraphID: g.ID, Node: n.Name, Reason: ReasonDuplicateNode}
		}
		cfg.Nodes[n.Name] = NodeConfig{
			Name:        n.Name,
			Tool:        n.Tool,
			RouteKey:    n.RouteKey,
			Next:        n.Next,
			DefaultNext: n.DefaultNext,
		}
	}
	return cfg, nil
}
