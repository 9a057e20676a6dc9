package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scopemap/config"
	"scopemap/index"
	"scopemap/render"
	"scopemap/scanner"
)

func main() {
	jsonMode := flag.Bool("json", false, "Output JSON (for programmatic use)")
	dapMode := flag.Bool("dap", false, "Output DAP-shaped scopes/variables JSON")
	indexMode := flag.Bool("index", false, "Build or refresh the persisted scope index")
	forceReindex := flag.Bool("force", false, "Force re-extraction even if the index is up-to-date")
	queryMode := flag.Bool("query", false, "Query scopes and bindings")
	queryName := flag.String("name", "", "Query: binding name to look up (use with --query)")
	queryLine := flag.String("line", "", "Query: file:line to locate covering scopes for (use with --query)")
	scanMode := flag.Bool("scan", false, "Discover debuggable binaries under a directory")
	indexOutput := flag.String("output", "", "Output path for index file (default: .scopemap/index.gob)")
	width := flag.Int("width", 0, "Max rendered line width (0 = auto-detect)")
	debugMode := flag.Bool("debug", false, "Show debug info on stderr")
	helpMode := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *helpMode {
		printHelp()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *debugMode {
		cfg.Debug = true
	}

	arg := flag.Arg(0)

	if *scanMode {
		if arg == "" {
			arg = "."
		}
		runScanMode(arg, *jsonMode, cfg.Debug)
		return
	}

	if arg == "" {
		fmt.Fprintln(os.Stderr, "Error: no binary specified (see scopemap --help)")
		os.Exit(1)
	}
	binPath, err := filepath.Abs(arg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving path: %v\n", err)
		os.Exit(1)
	}

	if *indexMode {
		runIndexMode(binPath, cfg, *indexOutput, *forceReindex, *jsonMode)
		return
	}

	if *queryMode {
		runQueryMode(binPath, cfg, *queryName, *queryLine, *jsonMode)
		return
	}

	dump, err := extract(binPath, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	format := cfg.Output.Format
	switch {
	case *jsonMode:
		format = config.FormatJSON
	case *dapMode:
		format = config.FormatDAP
	}

	switch format {
	case config.FormatJSON:
		json.NewEncoder(os.Stdout).Encode(dump)
	case config.FormatDAP:
		json.NewEncoder(os.Stdout).Encode(render.DAPScopes(dump))
	default:
		render.Tree(os.Stdout, dump, renderWidth(*width, cfg))
	}
}

func printHelp() {
	fmt.Println("scopemap - Inspect lexical scopes, bindings, and types in a binary's DWARF data")
	fmt.Println()
	fmt.Println("Usage: scopemap [options] <binary>")
	fmt.Println("       scopemap --scan [options] [dir]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  (default)          Scope tree with bindings and resolved types")
	fmt.Println("  --json             Full dump as JSON")
	fmt.Println("  --dap              DAP-shaped scopes/variables JSON")
	fmt.Println("  --index            Build the persisted scope index (.scopemap/index.gob)")
	fmt.Println("  --query            Query bindings and scopes")
	fmt.Println("  --scan             Discover debuggable binaries under a directory")
	fmt.Println()
	fmt.Println("Index mode (--index):")
	fmt.Println("  --force            Force re-extraction even if up-to-date")
	fmt.Println("  --output <path>    Output path for index file")
	fmt.Println()
	fmt.Println("Query mode (--query):")
	fmt.Println("  --name <ident>     Shadowing chain for a binding name")
	fmt.Println("  --line <file:n>    Scopes covering a source line")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --width <n>        Max rendered line width (0 = auto-detect)")
	fmt.Println("  --debug            Show debug info (config, index paths, etc.)")
	fmt.Println("  --help             Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  go build -gcflags=\"all=-N -l\" -o hello-demo ./hello")
	fmt.Println("  scopemap hello-demo                    # Scope tree")
	fmt.Println("  scopemap --query --name s hello-demo   # Who shadows s?")
	fmt.Println("  scopemap --query --line hello.go:24 hello-demo")
	fmt.Println("  scopemap --index hello-demo            # Persist for later queries")
	fmt.Println("  scopemap --scan ./bin                  # Find debuggable binaries")
}

// extract runs extraction with optional debug chatter.
func extract(binPath string, debug bool) (*scanner.Dump, error) {
	start := time.Now()
	dump, err := scanner.Extract(binPath)
	if err != nil {
		return nil, err
	}
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] extracted %d scopes, %d types in %v\n",
			len(dump.Scopes), len(dump.Types), time.Since(start).Round(time.Millisecond))
	}
	return dump, nil
}

func renderWidth(flagWidth int, cfg *config.Config) int {
	if flagWidth > 0 {
		return flagWidth
	}
	if cfg.Output.Width > 0 {
		return cfg.Output.Width
	}
	return render.TerminalWidth(0)
}

func runScanMode(root string, jsonMode, debug bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving path: %v\n", err)
		os.Exit(1)
	}

	gitignore := scanner.LoadGitignore(absRoot)
	if debug {
		if gitignore != nil {
			fmt.Fprintf(os.Stderr, "[debug] Loaded .gitignore from: %s\n", filepath.Join(absRoot, ".gitignore"))
		} else {
			fmt.Fprintf(os.Stderr, "[debug] No .gitignore found at: %s\n", filepath.Join(absRoot, ".gitignore"))
		}
	}

	binaries, err := scanner.FindBinaries(absRoot, gitignore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error walking tree: %v\n", err)
		os.Exit(1)
	}

	if jsonMode {
		json.NewEncoder(os.Stdout).Encode(binaries)
		return
	}
	if len(binaries) == 0 {
		fmt.Println("No debuggable binaries found.")
		return
	}
	for _, b := range binaries {
		fmt.Printf("  %s (%d bytes)\n", b.Path, b.Size)
	}
	fmt.Printf("\n%d binaries under %s\n", len(binaries), absRoot)
}

func runIndexMode(binPath string, cfg *config.Config, output string, force, jsonMode bool) {
	idxPath := output
	if idxPath == "" {
		idxPath = filepath.Join(cfg.Index.Dir, index.DefaultFile)
	}

	ix := index.New()
	if index.Exists(idxPath) {
		if existing, err := index.LoadBinary(idxPath); err == nil {
			ix = existing
		} else if cfg.Debug {
			fmt.Fprintf(os.Stderr, "[debug] discarding unreadable index: %v\n", err)
		}
	}

	if !force {
		if entry, ok := ix.Get(binPath); ok && !entry.IsStale() {
			if jsonMode {
				json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"status":     "up-to-date",
					"path":       idxPath,
					"scopes":     len(entry.Dump.Scopes),
					"bindings":   entry.Dump.BindingCount(),
					"indexed_at": time.Unix(entry.IndexedAt, 0).Format(time.RFC3339),
				})
			} else {
				fmt.Printf("✓ Index is up-to-date (%d scopes, %d bindings)\n",
					len(entry.Dump.Scopes), entry.Dump.BindingCount())
				fmt.Printf("  Path: %s\n", idxPath)
				fmt.Printf("  Last indexed: %s\n", time.Unix(entry.IndexedAt, 0).Format(time.RFC3339))
			}
			return
		}
	}

	start := time.Now()
	entry, err := ix.Add(binPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error indexing: %v\n", err)
		os.Exit(1)
	}
	if err := ix.SaveBinary(idxPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving index: %v\n", err)
		os.Exit(1)
	}

	if jsonMode {
		json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
			"status":   "indexed",
			"path":     idxPath,
			"scopes":   len(entry.Dump.Scopes),
			"bindings": entry.Dump.BindingCount(),
			"types":    len(entry.Dump.Types),
			"duration": time.Since(start).String(),
		})
		return
	}
	fmt.Printf("✓ Indexed %s (%d scopes, %d bindings, %d types) in %v\n",
		binPath, len(entry.Dump.Scopes), entry.Dump.BindingCount(), len(entry.Dump.Types),
		time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Path: %s\n", idxPath)
}

func runQueryMode(binPath string, cfg *config.Config, name, line string, jsonMode bool) {
	if name == "" && line == "" {
		fmt.Fprintln(os.Stderr, "Error: --query needs --name or --line")
		os.Exit(1)
	}

	dump, err := loadDump(binPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if name != "" {
		refs := index.ShadowChain(dump, name)
		if jsonMode {
			json.NewEncoder(os.Stdout).Encode(refs)
		} else {
			printShadowChain(dump, name, refs)
		}
		return
	}

	file, lineNo, err := parseLineRef(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	scopes := index.ScopesAtLine(dump, file, lineNo)
	if jsonMode {
		json.NewEncoder(os.Stdout).Encode(scopes)
		return
	}
	if len(scopes) == 0 {
		fmt.Printf("No scopes cover %s:%d\n", file, lineNo)
		return
	}
	fmt.Printf("Scopes covering %s:%d (outermost first):\n", file, lineNo)
	for _, idx := range scopes {
		sc := dump.Scopes[idx]
		label := sc.Name
		if label == "" {
			label = "block"
		}
		fmt.Printf("  %s%s (%d bindings)\n", indent(dump.Depth(idx)-1), label, len(sc.Bindings))
	}
}

// loadDump prefers a fresh index entry over re-extraction.
func loadDump(binPath string, cfg *config.Config) (*scanner.Dump, error) {
	idxPath := filepath.Join(cfg.Index.Dir, index.DefaultFile)
	if index.Exists(idxPath) {
		if ix, err := index.LoadBinary(idxPath); err == nil {
			if entry, ok := ix.Get(binPath); ok && !entry.IsStale() {
				if cfg.Debug {
					fmt.Fprintf(os.Stderr, "[debug] using indexed dump from %s\n", idxPath)
				}
				return entry.Dump, nil
			}
		}
	}
	return extract(binPath, cfg.Debug)
}

func printShadowChain(dump *scanner.Dump, name string, refs []index.BindingRef) {
	if len(refs) == 0 {
		fmt.Printf("No bindings named %q\n", name)
		return
	}

	fmt.Printf("%q is declared in %d scope(s):\n", name, len(refs))
	for _, ref := range refs {
		label := ref.ScopeName
		if label == "" {
			label = fmt.Sprintf("block #%d", ref.ScopeIndex)
		}
		detail := ""
		if ref.Binding.Location != nil {
			detail = fmt.Sprintf(" @ fbreg(%d)", *ref.Binding.Location)
		}
		if ref.Binding.Type != nil {
			detail += ": " + dump.TypeName(*ref.Binding.Type)
		}
		fmt.Printf("  %s%s%s", indent(ref.Depth-1), label, detail)
		if ref.Shadows != nil {
			hidden := dump.Scopes[*ref.Shadows].Name
			if hidden == "" {
				hidden = fmt.Sprintf("block #%d", *ref.Shadows)
			}
			fmt.Printf("  (shadows %s)", hidden)
		}
		fmt.Println()
	}
}

func indent(depth int) string {
	if depth < 1 {
		return ""
	}
	return strings.Repeat("  ", depth)
}

// parseLineRef splits "file.go:42" into its parts.
func parseLineRef(ref string) (string, int, error) {
	i := strings.LastIndexByte(ref, ':')
	if i <= 0 || i == len(ref)-1 {
		return "", 0, fmt.Errorf("invalid line reference %q (want file:line)", ref)
	}
	lineNo, err := strconv.Atoi(ref[i+1:])
	if err != nil || lineNo <= 0 {
		return "", 0, fmt.Errorf("invalid line number in %q", ref)
	}
	return ref[:i], lineNo, nil
}
