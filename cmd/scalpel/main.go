package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/scalpel-dev/scalpel/internal/config"
	"github.com/scalpel-dev/scalpel/internal/debug"
	"github.com/scalpel-dev/scalpel/internal/engine"
	"github.com/scalpel-dev/scalpel/internal/grammar"
	"github.com/scalpel-dev/scalpel/internal/lang"
	"github.com/scalpel-dev/scalpel/internal/mcp"
	"github.com/scalpel-dev/scalpel/internal/server"
	"github.com/scalpel-dev/scalpel/internal/types"
	"github.com/scalpel-dev/scalpel/internal/version"
	"github.com/scalpel-dev/scalpel/internal/watch"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Load(dir)
}

func newEngine(c *cli.Context) (*engine.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyTempVars(); err != nil {
		return nil, err
	}
	return engine.New(resolver, cfg.Cache.Trees), nil
}

func sourceFromArgs(c *cli.Context) (types.Source, error) {
	filename := c.Args().First()
	if filename == "" {
		return types.Source{}, fmt.Errorf("missing file argument")
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return types.Source{}, err
	}
	return types.Source{
		Filename: filename,
		Content:  string(content),
		Language: c.String("language"),
		Point: types.Point{
			Line:   uint32(c.Uint("line")),
			Column: uint32(c.Uint("col")),
		},
	}, nil
}

func main() {
	app := &cli.App{
		Name:                   "scalpel",
		Usage:                  "Cursor-driven program slicing and call-site inlining",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .scalpel.kdl or .scalpel.toml in the working directory)",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Language name, overriding filename detection",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "slice",
				Usage:     "Slice a file at a cursor position",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "line", Usage: "Zero-based cursor line", Required: true},
					&cli.UintFlag{Name: "col", Usage: "Zero-based cursor column", Required: true},
					&cli.StringFlag{
						Name:    "direction",
						Aliases: []string{"d"},
						Usage:   "backward or forward",
						Value:   "backward",
					},
					&cli.BoolFlag{
						Name:  "ranges",
						Usage: "Print the ranges to remove as JSON instead of the filtered source",
					},
				},
				Action: runSlice,
			},
			{
				Name:      "inline",
				Usage:     "Inline the function call at a cursor position",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "line", Usage: "Zero-based cursor line of the call", Required: true},
					&cli.UintFlag{Name: "col", Usage: "Zero-based cursor column of the call", Required: true},
					&cli.StringFlag{
						Name:  "target-file",
						Usage: "File containing the function definition (default: FILE)",
					},
					&cli.UintFlag{Name: "target-line", Usage: "Zero-based line of the definition", Required: true},
					&cli.UintFlag{Name: "target-col", Usage: "Zero-based column of the definition"},
				},
				Action: runInline,
			},
			{
				Name:      "watch",
				Usage:     "Keep a filtered view of a file up to date as it changes",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "line", Usage: "Zero-based cursor line", Required: true},
					&cli.UintFlag{Name: "col", Usage: "Zero-based cursor column", Required: true},
					&cli.StringFlag{
						Name:    "direction",
						Aliases: []string{"d"},
						Usage:   "backward or forward",
						Value:   "backward",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the filtered source to this file instead of stdout",
					},
				},
				Action: runWatch,
			},
			{
				Name:   "serve",
				Usage:  "Serve line-oriented JSON requests over stdin/stdout",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the Model Context Protocol over stdio",
				Action: runMCP,
			},
			{
				Name:   "languages",
				Usage:  "List supported languages",
				Action: runLanguages,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "scalpel: %v\n", err)
		os.Exit(1)
	}
}

func runSlice(c *cli.Context) error {
	eng, err := newEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	src, err := sourceFromArgs(c)
	if err != nil {
		return err
	}
	dir, err := types.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}
	req := types.SliceRequest{Source: src, Direction: dir}

	if c.Bool("ranges") {
		resp, err := eng.Slice(req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
	filtered, _, err := eng.SliceText(req)
	if err != nil {
		return err
	}
	fmt.Println(filtered)
	return nil
}

func runInline(c *cli.Context) error {
	eng, err := newEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	src, err := sourceFromArgs(c)
	if err != nil {
		return err
	}
	targetContent := src.Content
	if targetFile := c.String("target-file"); targetFile != "" {
		data, err := os.ReadFile(targetFile)
		if err != nil {
			return err
		}
		targetContent = string(data)
	}

	resp, err := eng.Inline(types.InlineRequest{
		Source:        src,
		TargetContent: targetContent,
		TargetPoint: types.Point{
			Line:   uint32(c.Uint("target-line")),
			Column: uint32(c.Uint("target-col")),
		},
	})
	if err != nil {
		return err
	}
	fmt.Print(resp.Content)
	return nil
}

func runWatch(c *cli.Context) error {
	eng, err := newEngine(c)
	if err != nil {
		return err
	}
	defer eng.Close()

	filename := c.Args().First()
	if filename == "" {
		return fmt.Errorf("missing file argument")
	}
	dir, err := types.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}
	point := types.Point{Line: uint32(c.Uint("line")), Column: uint32(c.Uint("col"))}

	w := watch.New(eng, filename, c.String("language"), point, dir)
	if out := c.String("out"); out != "" {
		w.OnResult = func(filtered string, _ types.Point) {
			if err := os.WriteFile(out, []byte(filtered), 0644); err != nil {
				fmt.Fprintf(os.Stderr, "scalpel: write %s: %v\n", out, err)
			}
		}
	} else {
		w.OnResult = func(filtered string, _ types.Point) {
			fmt.Println(filtered)
		}
	}
	w.OnError = func(err error) {
		fmt.Fprintf(os.Stderr, "scalpel: %s: %v\n", filepath.Base(filename), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runServe(c *cli.Context) error {
	debug.SetStdioMode(true)
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := grammar.WarmUp(ctx); err != nil {
		return err
	}
	return srv.Run(ctx, os.Stdin, os.Stdout)
}

func runMCP(c *cli.Context) error {
	debug.SetStdioMode(true)
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	srv, err := mcp.NewServer(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := grammar.WarmUp(ctx); err != nil {
		return err
	}
	return srv.Run(ctx)
}

func runLanguages(c *cli.Context) error {
	for _, name := range lang.Names() {
		cfg, err := grammar.ForLanguage(lang.Language(name))
		if err != nil {
			continue
		}
		if cfg.SupportsInline() {
			fmt.Printf("%-12s slice, inline\n", name)
		} else {
			fmt.Printf("%-12s slice\n", name)
		}
	}
	return nil
}
