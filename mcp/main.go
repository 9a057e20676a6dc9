// MCP Server for scopemap - exposes binary scope inspection to LLM tooling
package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"scopemap/cache"
	"scopemap/config"
	"scopemap/index"
	"scopemap/render"
	"scopemap/scanner"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "1.0.0"

// Input types for tools
type BinaryInput struct {
	Path string `json:"path" jsonschema:"Path to the binary to inspect"`
}

type BindingInput struct {
	Path string `json:"path" jsonschema:"Path to the binary to inspect"`
	Name string `json:"name" jsonschema:"Binding name to look up (exact match)"`
}

type ListBinariesInput struct {
	Path    string `json:"path" jsonschema:"Directory to search for debuggable binaries"`
	Pattern string `json:"pattern,omitempty" jsonschema:"Optional filter on binary paths (case-insensitive substring)"`
}

type StatusInput struct{}

// responseCache holds rendered output keyed by binary content hash, so
// repeated tool calls against an unchanged binary skip re-extraction.
var responseCache *cache.Cache

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Config error, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	responseCache, err = cache.New(cache.Options{
		Dir:     cfg.Cache.Dir,
		TTL:     cfg.CacheTTL(),
		Enabled: cfg.Cache.Enabled,
	})
	if err != nil {
		log.Printf("Cache disabled: %v", err)
		responseCache, _ = cache.New(cache.Options{Enabled: false})
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "scopemap",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_scopes",
		Description: "Get the lexical scope tree of a compiled binary from its DWARF debug data. Shows functions and nested blocks with their variable bindings, frame locations, and resolved types. Use this to understand where variables live and which scopes contain them.",
	}, handleGetScopes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_types",
		Description: "Get the deduplicated type table extracted from a binary's DWARF data, including each type's kind, name, byte size, and underlying type chain.",
	}, handleGetTypes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_binding",
		Description: "Find every scope in a binary that declares a given variable name, annotated with which enclosing declaration each one shadows. Use this to explain shadowing: nested declarations of the same name hide the outer binding within their extent.",
	}, handleFindBinding)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_binaries",
		Description: "Discover debuggable binaries (ELF or Mach-O) under a directory, honoring .gitignore. Use this to find inspection targets when you only know the project location.",
	}, handleListBinaries)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Check scopemap MCP server status. Returns version, cache statistics, and confirms local filesystem access is available.",
	}, handleStatus)

	// Run server on stdio
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Printf("Server error: %v", err)
	}
}

// validatePath validates and returns the absolute path
func validatePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("path does not exist: %s", absPath)
	}

	return absPath, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// cachedRender returns the cached output for (binPath, operation) when
// the binary is unchanged, otherwise renders and caches.
func cachedRender(binPath, operation string, renderFn func(*scanner.Dump) string) (string, error) {
	hash := ""
	if responseCache != nil && responseCache.Enabled() {
		if h, err := index.HashFile(binPath); err == nil {
			hash = h
			if out, ok := responseCache.GetOutput(hash, operation); ok {
				return out, nil
			}
		}
	}

	dump, err := scanner.Extract(binPath)
	if err != nil {
		return "", err
	}
	out := renderFn(dump)

	if hash != "" {
		responseCache.SetOutput(hash, operation, out)
	}
	return out, nil
}

func handleGetScopes(ctx context.Context, req *mcp.CallToolRequest, input BinaryInput) (*mcp.CallToolResult, any, error) {
	binPath, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	out, err := cachedRender(binPath, "scopes", func(dump *scanner.Dump) string {
		var buf bytes.Buffer
		render.Tree(&buf, dump, 0)
		return buf.String()
	})
	if err != nil {
		return errorResult("Extraction error: " + err.Error()), nil, nil
	}

	return textResult(out), nil, nil
}

func handleGetTypes(ctx context.Context, req *mcp.CallToolRequest, input BinaryInput) (*mcp.CallToolResult, any, error) {
	binPath, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	out, err := cachedRender(binPath, "types", func(dump *scanner.Dump) string {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("=== Types: %s ===\n", dump.Binary))
		for i, t := range dump.Types {
			sb.WriteString(fmt.Sprintf("  [%d] %s", i, t.Kind))
			if t.Name != "" {
				sb.WriteString(" " + t.Name)
			}
			if t.Size > 0 {
				sb.WriteString(fmt.Sprintf(" (%d bytes)", t.Size))
			}
			if t.Parent != nil {
				sb.WriteString(fmt.Sprintf(" -> [%d]", *t.Parent))
			}
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("\n%d types\n", len(dump.Types)))
		return sb.String()
	})
	if err != nil {
		return errorResult("Extraction error: " + err.Error()), nil, nil
	}

	return textResult(out), nil, nil
}

func handleFindBinding(ctx context.Context, req *mcp.CallToolRequest, input BindingInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return errorResult("name is required"), nil, nil
	}
	binPath, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	out, err := cachedRender(binPath, "binding:"+input.Name, func(dump *scanner.Dump) string {
		refs := index.ShadowChain(dump, input.Name)
		if len(refs) == 0 {
			return fmt.Sprintf("No bindings named %q in %s\n", input.Name, binPath)
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%q is declared in %d scope(s) of %s:\n", input.Name, len(refs), binPath))
		for _, ref := range refs {
			label := ref.ScopeName
			if label == "" {
				label = fmt.Sprintf("block #%d", ref.ScopeIndex)
			}
			sb.WriteString(fmt.Sprintf("  depth %d: %s", ref.Depth, label))
			if ref.Binding.Type != nil {
				sb.WriteString(": " + dump.TypeName(*ref.Binding.Type))
			}
			if ref.Shadows != nil {
				hidden := dump.Scopes[*ref.Shadows].Name
				if hidden == "" {
					hidden = fmt.Sprintf("block #%d", *ref.Shadows)
				}
				sb.WriteString(fmt.Sprintf("  (shadows the declaration in %s)", hidden))
			}
			sb.WriteString("\n")
		}
		return sb.String()
	})
	if err != nil {
		return errorResult("Extraction error: " + err.Error()), nil, nil
	}

	return textResult(out), nil, nil
}

func handleListBinaries(ctx context.Context, req *mcp.CallToolRequest, input ListBinariesInput) (*mcp.CallToolResult, any, error) {
	root, err := validatePath(input.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	gitignore := scanner.LoadGitignore(root)
	binaries, err := scanner.FindBinaries(root, gitignore)
	if err != nil {
		return errorResult("Scan error: " + err.Error()), nil, nil
	}

	pattern := strings.ToLower(input.Pattern)
	var sb strings.Builder
	count := 0
	for _, b := range binaries {
		if pattern != "" && !strings.Contains(strings.ToLower(b.Path), pattern) {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s (%d bytes)\n", b.Path, b.Size))
		count++
	}

	if count == 0 {
		return textResult("No debuggable binaries found under " + root), nil, nil
	}
	return textResult(fmt.Sprintf("%d debuggable binaries under %s:\n%s", count, root, sb.String())), nil, nil
}

func handleStatus(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, any, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("scopemap MCP server v%s\n", version))
	sb.WriteString("Local filesystem access: OK\n")

	if responseCache != nil && responseCache.Enabled() {
		stats := responseCache.Stats()
		sb.WriteString(fmt.Sprintf("Cache: enabled (%d entries, %.0f%% hit rate)\n",
			responseCache.Size(), responseCache.HitRate()*100))
		sb.WriteString(fmt.Sprintf("  hits: %d, misses: %d, writes: %d\n",
			stats.Hits, stats.Misses, stats.Writes))
	} else {
		sb.WriteString("Cache: disabled\n")
	}

	return textResult(sb.String()), nil, nil
}
