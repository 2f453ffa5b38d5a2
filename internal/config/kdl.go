package config

import (
	"os"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	scerrors "github.com/scalpel-dev/scalpel/internal/errors"
)

// loadKDL parses a .scalpel.kdl file:
//
//	cache {
//	    trees 32
//	}
//	languages {
//	    "**/*.inc" "php"
//	}
//	tempvars {
//	    go "{name} := {value}"
//	}
//
// A missing file returns (nil, nil) so Load can fall through.
func loadKDL(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, scerrors.NewConfigError("config", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, scerrors.NewConfigError("config", path, err)
	}

	cfg := Default()
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "cache":
			for _, cn := range n.Children {
				if nodeName(cn) == "trees" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Cache.Trees = v
					}
				}
			}
		case "languages":
			for _, cn := range n.Children {
				if l, ok := firstStringArg(cn); ok {
					cfg.Languages[nodeName(cn)] = l
				}
			}
		case "tempvars":
			for _, cn := range n.Children {
				if f, ok := firstStringArg(cn); ok {
					cfg.TempVars[nodeName(cn)] = f
				}
			}
		}
	}
	return validated(cfg, path)
}

// nodeName returns the node's name with any surrounding quotes removed;
// kdl-go keeps the quote characters of quoted names like "**/*.inc".
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	name := n.Name.NodeNameString()
	if unquoted, err := strconv.Unquote(name); err == nil {
		return unquoted
	}
	return name
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

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
