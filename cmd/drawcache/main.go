package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	flag "maunium.net/go/mauflag"

	"github.com/beeper/drawboard/pkg/assets"
	"github.com/beeper/drawboard/pkg/cachestore"
	"github.com/beeper/drawboard/pkg/config"
	"github.com/beeper/drawboard/pkg/route"
)

var configPath = flag.MakeFull("c", "config", "The path to the drawboard config file.", "config.yaml").String()
var mediaType = flag.MakeFull("t", "type", "Media type for put. Defaults to one derived from the path.", "").String()
var verbose = flag.MakeFull("v", "verbose", "Log database activity to stderr.", "false").Bool()
var wantHelp, _ = flag.MakeHelpFlag()

const usage = `drawcache [-hv] [-c <path>] <command> [args]

Commands:
  put <request path> <file>   Store file as the cached response for a path
  rm <request path>           Remove a cached response
  ls                          List cached responses
  prune [max age]             Remove entries older than max age (default from config)`

func main() {
	flag.SetHelpTitles("drawcache - Manage the drawboard response cache.", usage)
	err := flag.Parse()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		flag.PrintHelp()
		os.Exit(1)
	} else if *wantHelp || len(flag.Args()) == 0 {
		flag.PrintHelp()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath, false)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(10)
	}
	if cfg.Cache.InMemory() {
		_, _ = fmt.Fprintln(os.Stderr, "No cache database configured")
		os.Exit(10)
	}

	log := zerolog.Nop()
	if *verbose {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	ctx := log.WithContext(context.Background())
	store, err := cachestore.Open(ctx, cfg.Cache.Database, log)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(11)
	}
	defer store.Close()

	cmd := &command{
		store:     store,
		maxAge:    cfg.Cache.MaxAge,
		mediaType: *mediaType,
		out:       os.Stdout,
	}
	if err = cmd.run(ctx, flag.Args()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		_ = store.Close()
		os.Exit(2)
	}
}

type command struct {
	store     *cachestore.SQLStore
	maxAge    time.Duration
	mediaType string
	out       io.Writer
}

func (c *command) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}
	switch args[0] {
	case "put":
		if len(args) != 3 {
			return fmt.Errorf("usage: put <request path> <file>")
		}
		body, err := os.ReadFile(args[2])
		if err != nil {
			return err
		}
		key := route.NormalizePath(args[1])
		typ := c.mediaType
		if typ == "" {
			typ = assets.MediaTypeOrDefault(key)
		}
		entry, err := c.store.Put(ctx, key, body, typ)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(c.out, "Stored %d bytes for %q (%s)\n", len(entry.Body), entry.Key, entry.MediaType)
	case "rm":
		if len(args) != 2 {
			return fmt.Errorf("usage: rm <request path>")
		}
		return c.store.Delete(ctx, route.NormalizePath(args[1]))
	case "ls":
		entries, err := c.store.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "KEY\tTYPE\tUPDATED")
		for _, entry := range entries {
			updated := time.UnixMilli(entry.UpdatedAt).Format(time.DateTime)
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Key, entry.MediaType, updated)
		}
		return tw.Flush()
	case "prune":
		maxAge := c.maxAge
		if len(args) > 1 {
			parsed, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("invalid max age: %w", err)
			}
			maxAge = parsed
		}
		removed, err := c.store.Prune(ctx, maxAge)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(c.out, "Removed %d entries\n", removed)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}
