package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lectio/internal"
	"github.com/starford/lectio/internal/notes"
	"github.com/starford/lectio/internal/view"
	pkgconfig "github.com/starford/lectio/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

// withConsole opens the data files for a one-shot command.
func withConsole(fn func(cmd *cli.Command, c *internal.Console) error) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		c, err := internal.OpenConsole(internal.WithConfig(cfg))
		if err != nil {
			return err
		}
		defer c.Close()
		return fn(cmd, c)
	}
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.NArg() < n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", cmd.Name, n, cmd.NArg())
	}
	return nil
}

func chapterNumber(cmd *cli.Command) (int, error) {
	if err := requireArgs(cmd, 1); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(cmd.Args().Get(0))
	if err != nil {
		return 0, fmt.Errorf("invalid chapter number %q", cmd.Args().Get(0))
	}
	return n, nil
}

func main() {
	cmd := &cli.Command{
		Name:    "lectio",
		Usage:   "Track lecture attendance per chapter and keep chapter notes",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("LECTIO_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API with live events and file watching",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: runMCP,
			},
			{
				Name:  "show",
				Usage: "Print the chapter table",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mode", Usage: "chapters or modules", Value: view.ModeModules},
				},
				Action: withConsole(func(cmd *cli.Command, c *internal.Console) error {
					return c.Show(cmd.String("mode"))
				}),
			},
			{
				Name:      "attend",
				Usage:     "Count an attended lecture and save",
				ArgsUsage: "<chapter>",
				Action: withConsole(func(cmd *cli.Command, c *internal.Console) error {
					n, err := chapterNumber(cmd)
					if err != nil {
						return err
					}
					return c.Attend(n)
				}),
			},
			{
				Name:      "miss",
				Usage:     "Count a missed lecture and save",
				ArgsUsage: "<chapter>",
				Action: withConsole(func(cmd *cli.Command, c *internal.Console) error {
					n, err := chapterNumber(cmd)
					if err != nil {
						return err
					}
					return c.Miss(n)
				}),
			},
			{
				Name:      "notes",
				Usage:     "List a chapter's notes",
				ArgsUsage: "<chapter>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "filter on content or tags"},
					&cli.StringFlag{Name: "sort", Usage: "newest, oldest or edited", Value: notes.SortNewest},
				},
				Action: withConsole(func(cmd *cli.Command, c *internal.Console) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					return c.Notes(cmd.Args().Get(0), cmd.String("query"), cmd.String("sort"))
				}),
			},
			{
				Name:  "note",
				Usage: "Add or remove notes",
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add an HTML note to a chapter",
						ArgsUsage: "<chapter> <html>",
						Flags: []cli.Flag{
							&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "tag, repeatable"},
						},
						Action: withConsole(func(cmd *cli.Command, c *internal.Console) error {
							if err := requireArgs(cmd, 2); err != nil {
								return err
							}
							return c.AddNote(cmd.Args().Get(0), cmd.Args().Get(1), cmd.StringSlice("tag"))
						}),
					},
					{
						Name:      "rm",
						Usage:     "Delete a note",
						ArgsUsage: "<chapter> <id>",
						Action: withConsole(func(cmd *cli.Command, c *internal.Console) error {
							if err := requireArgs(cmd, 2); err != nil {
								return err
							}
							id, err := strconv.ParseInt(cmd.Args().Get(1), 10, 64)
							if err != nil {
								return fmt.Errorf("invalid note id %q", cmd.Args().Get(1))
							}
							return c.RemoveNote(cmd.Args().Get(0), id)
						}),
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search all notes",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Usage: "maximum results", Value: 20},
				},
				Action: withConsole(func(cmd *cli.Command, c *internal.Console) error {
					if err := requireArgs(cmd, 1); err != nil {
						return err
					}
					return c.Search(cmd.Args().Get(0), int(cmd.Int("limit")))
				}),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
