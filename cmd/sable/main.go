package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sable-lang/sable/internal/build"
	"github.com/sable-lang/sable/internal/cache"
	"github.com/sable-lang/sable/internal/diagnostics"
	"github.com/sable-lang/sable/internal/infer"
	"github.com/sable-lang/sable/internal/project"
)

const cacheDirName = "build/cache"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s <command> [options] [dir]

Commands:
  check    type-check the package at dir (default ".")
  clean    remove cached build artefacts
  help     show this message

Options for check:
  --strict-exhaustiveness   treat non-exhaustive matches as errors
  --jobs N                  bound parallel workers (default: all CPUs)
  --cache-db FILE           use a SQLite cache file instead of %s/
  --no-cache                disable the incremental cache
  -v, --verbose             trace per-module build progress
`, os.Args[0], cacheDirName)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "check":
		os.Exit(runCheck(os.Args[2:]))
	case "clean":
		os.Exit(runClean(os.Args[2:]))
	case "help", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

type checkArgs struct {
	dir     string
	strict  bool
	jobs    int
	cacheDB string
	noCache bool
	verbose bool
}

func parseCheckArgs(args []string) (checkArgs, error) {
	parsed := checkArgs{dir: "."}
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "--strict-exhaustiveness":
			parsed.strict = true
		case "--no-cache":
			parsed.noCache = true
		case "-v", "--verbose":
			parsed.verbose = true
		case "--jobs":
			i++
			if i >= len(args) {
				return parsed, fmt.Errorf("--jobs needs a number")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 1 {
				return parsed, fmt.Errorf("--jobs needs a positive number, got %q", args[i])
			}
			parsed.jobs = n
		case "--cache-db":
			i++
			if i >= len(args) {
				return parsed, fmt.Errorf("--cache-db needs a file path")
			}
			parsed.cacheDB = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return parsed, fmt.Errorf("unknown option %q", arg)
			}
			parsed.dir = arg
		}
	}
	return parsed, nil
}

func openStore(parsed checkArgs) (cache.Store, func(), error) {
	if parsed.noCache {
		return cache.Null{}, func() {}, nil
	}
	if parsed.cacheDB != "" {
		store, err := cache.OpenSQLite(parsed.cacheDB)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	}
	store, err := cache.NewDirStore(filepath.Join(parsed.dir, cacheDirName))
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}

func runCheck(args []string) int {
	parsed, err := parseCheckArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 2
	}

	manifest, err := project.LoadManifest(filepath.Join(parsed.dir, project.ManifestFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	modules, err := loadModules(filepath.Join(parsed.dir, "src"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	if len(modules) == 0 {
		fmt.Fprintf(os.Stderr, "no modules found under %s\n", filepath.Join(parsed.dir, "src"))
		return 1
	}

	store, closeStore, err := openStore(parsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	defer closeStore()

	opts := build.Options{Parallelism: parsed.jobs}
	if parsed.strict {
		opts.Exhaustiveness = infer.ExhaustivenessError
	}
	if parsed.verbose {
		opts.Trace = os.Stderr
	}

	c := build.NewContext(store, opts)
	result, err := c.Build(context.Background(), modules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}

	diagnostics.Render(os.Stderr, c.Collector.All(), diagnostics.ColorEnabled(os.Stderr))

	cached := 0
	for _, hit := range result.Cached {
		if hit {
			cached++
		}
	}
	fmt.Printf("%s %s: checked %d modules, %d from cache\n",
		manifest.Name, manifest.Version, len(result.Order), cached)

	if c.Collector.HasErrors() {
		return 1
	}
	return 0
}

func runClean(args []string) int {
	parsed, err := parseCheckArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 2
	}

	store, closeStore, err := openStore(parsed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	defer closeStore()

	if err := store.Clean(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		return 1
	}
	fmt.Println("cache cleaned")
	return 0
}
