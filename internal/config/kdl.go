package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Load reads configuration from a .refactorlens.kdl file at path. A missing
// file is not an error: the documented defaults are returned so a bare run
// works out of the box.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "roots":
			cfg.Roots = collectStringArgs(n)
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		case "languages":
			cfg.Languages = collectStringArgs(n)
		case "granularity":
			if s, ok := firstStringArg(n); ok {
				cfg.Granularity = Granularity(s)
			}
		case "top_k":
			if v, ok := firstIntArg(n); ok {
				cfg.TopK = v
			}
		case "normalizer":
			if s, ok := firstStringArg(n); ok {
				cfg.Normalizer = s
			}
		case "disabled_extractors":
			cfg.DisabledExtractors = collectStringArgs(n)
		case "weights":
			for _, cn := range n.Children {
				if v, ok := firstFloatArg(cn); ok {
					cfg.Weights[nodeName(cn)] = v
				}
			}
		case "packs":
			parsePacksNode(n, &cfg.Packs)
		case "coverage":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "report_path":
					if s, ok := firstStringArg(cn); ok {
						cfg.Coverage.ReportPath = s
					}
				case "format_hint":
					if s, ok := firstStringArg(cn); ok {
						cfg.Coverage.FormatHint = s
					}
				}
			}
		case "structure":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "large_file_lines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Structure.LargeFileLines = v
					}
				case "max_files_per_dir":
					if v, ok := firstIntArg(cn); ok {
						cfg.Structure.MaxFilesPerDir = v
					}
				}
			}
		}
	}

	return cfg, nil
}

func parsePacksNode(n *document.Node, packs *Packs) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "enable":
			for _, en := range cn.Children {
				b, ok := firstBoolArg(en)
				if !ok {
					continue
				}
				switch nodeName(en) {
				case "clone":
					packs.EnableClone = b
				case "cycle":
					packs.EnableCycle = b
				case "chokepoint":
					packs.EnableChokepoint = b
				case "coverage":
					packs.EnableCoverage = b
				case "structure":
					packs.EnableStructure = b
				}
			}
		case "max_packs":
			if v, ok := firstIntArg(cn); ok {
				packs.MaxPacks = v
			}
		case "non_overlap":
			if b, ok := firstBoolArg(cn); ok {
				packs.NonOverlap = b
			}
		case "centrality_samples":
			if v, ok := firstIntArg(cn); ok {
				packs.CentralitySamples = v
			}
		case "clone":
			for _, kn := range cn.Children {
				switch nodeName(kn) {
				case "min_similarity":
					if v, ok := firstFloatArg(kn); ok {
						packs.Clone.MinSimilarity = v
					}
				case "min_total_loc":
					if v, ok := firstIntArg(kn); ok {
						packs.Clone.MinTotalLOC = v
					}
				case "max_parameters":
					if v, ok := firstIntArg(kn); ok {
						packs.Clone.MaxParameters = v
					}
				}
			}
		}
	}
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads strings from inline arguments or, for block form
// like roots { "src" "lib" }, from child nodes whose names are the values.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
