package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"casewall/internal/archive"
	"casewall/internal/board"
	"casewall/internal/config"
	"casewall/internal/editor"
	"casewall/internal/logger"
	"casewall/internal/logger/console"
)

var version = "0.3.0"

var debugMode bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "casewall [case-id]",
		Short: "casewall: investigation boards in the terminal",
		Long: brand.Sprint("casewall") + ": pin people, events and evidence to a board and tie them with threads\n" +
			subtle.Sprint("Run without arguments to open the case list"),
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return runTUI(cfg, id)
		},
	}
	root.SetVersionTemplate("casewall {{ .Version }}\n")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	root.AddCommand(
		listCmd(),
		newCaseCmd(),
		importCmd(),
		exportCmd(),
		renderCmd(),
		extractCmd(),
		configCmd(),
	)
	return root
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if debugMode {
		cfg.Log.Debug = true
	}
	return cfg
}

// withEditor runs fn against the configured store, logging to stderr.
func withEditor(cmd *cobra.Command, fn func(ed *editor.Editor) error) error {
	cfg := loadConfig()
	logger.Init(console.New(console.Params{Debug: cfg.Log.Debug, Output: cmd.ErrOrStderr()}))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ed, err := openEditor(ctx, cfg)
	if err != nil {
		return err
	}
	if err := fn(ed); err != nil {
		ed.Close()
		return err
	}
	if err := ed.SaveError(); err != nil {
		ed.Close()
		return fmt.Errorf("save failed: %w", err)
	}
	return ed.Close()
}

func openCase(ed *editor.Editor, id string) (*board.Case, error) {
	if err := ed.OpenCase(id); err != nil {
		return nil, err
	}
	return ed.Active(), nil
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cases, most recently updated first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withEditor(cmd, func(ed *editor.Editor) error {
				cases := ed.Cases()
				if len(cases) == 0 {
					subtle.Fprintln(out, "  No cases yet. Run `casewall new` to start one.")
					return nil
				}
				rows := make([][]string, len(cases))
				for i, c := range cases {
					rows[i] = []string{
						c.ID,
						c.Name,
						strconv.Itoa(len(c.Nodes)),
						strconv.Itoa(len(c.Edges)),
						c.UpdatedAt.Local().Format("2006-01-02 15:04"),
					}
				}
				printTable(out, []string{"ID", "NAME", "RECORDS", "THREADS", "UPDATED"}, rows)
				return nil
			})
		},
	}
}

func newCaseCmd() *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Create an empty case",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withEditor(cmd, func(ed *editor.Editor) error {
				c := ed.NewCase()
				info := board.CaseInfo{Description: description}
				if len(args) == 1 {
					info.Name = strings.TrimSpace(args[0])
				}
				if info != (board.CaseInfo{}) {
					ed.Mutate(func(b *board.Board) bool {
						b.UpdateInfo(info)
						return true
					})
				}
				fmt.Fprintf(out, "  %s %s %s\n", good.Sprint("✓"), ed.Active().Name, subtle.Sprint(c.ID))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Case description")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a " + archive.Ext + " archive as a new case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return withEditor(cmd, func(ed *editor.Editor) error {
				c, err := ed.ImportCase(f)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s imported %s %s\n", good.Sprint("✓"), c.Name, subtle.Sprint(c.ID))
				return nil
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <case-id>",
		Short: "Write a case as a " + archive.Ext + " archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withEditor(cmd, func(ed *editor.Editor) error {
				c, err := openCase(ed, args[0])
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = archive.FileName(*c)
				}
				if path == "-" {
					return ed.ExportCase(out)
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := ed.ExportCase(f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s %s\n", good.Sprint("✓"), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default: derived from the case name)")
	return cmd
}

// renderTargets resolves the files a render writes.
func renderTargets(base, format string) ([]string, error) {
	switch strings.ToLower(format) {
	case "":
		return imagePaths(base), nil
	case "both":
		base = strings.TrimSuffix(base, filepath.Ext(base))
		return []string{base + ".png", base + ".svg"}, nil
	case "png", "svg":
		return []string{strings.TrimSuffix(base, filepath.Ext(base)) + "." + strings.ToLower(format)}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want png, svg or both)", format)
	}
}

func renderCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "render <case-id>",
		Short: "Render a snapshot image of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return withEditor(cmd, func(ed *editor.Editor) error {
				c, err := openCase(ed, args[0])
				if err != nil {
					return err
				}
				base := output
				if base == "" {
					base = strings.TrimSuffix(archive.FileName(*c), archive.Ext)
				}
				paths, err := renderTargets(base, format)
				if err != nil {
					return err
				}
				if err := renderImages(cmd.Context(), c.Clone(), paths); err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(out, "  %s %s\n", good.Sprint("✓"), p)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path; without an extension both png and svg are written")
	cmd.Flags().StringVarP(&format, "format", "f", "", "png, svg or both")
	return cmd
}

func extractCmd() *cobra.Command {
	var text, file string
	cmd := &cobra.Command{
		Use:   "extract <case-id>",
		Short: "Extract records and threads from text into a case",
		Long:  "Send a report to the configured language model and add the records and threads it finds to the case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			input, err := extractInput(cmd.InOrStdin(), text, file)
			if err != nil {
				return err
			}
			return withEditor(cmd, func(ed *editor.Editor) error {
				if _, err := openCase(ed, args[0]); err != nil {
					return err
				}
				ch, err := ed.StartExtractGraph(cmd.Context(), input)
				if err != nil {
					return err
				}
				subtle.Fprintln(out, "  extracting…")
				nodes, edges, err := ed.ApplyGraphDraft(<-ch)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s added %d records and %d threads\n", good.Sprint("✓"), nodes, edges)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to analyse")
	cmd.Flags().StringVarP(&file, "file", "f", "", "File to analyse, - for stdin")
	return cmd
}

func extractInput(stdin io.Reader, text, file string) (string, error) {
	switch {
	case text != "" && file != "":
		return "", errors.New("use either --text or --file")
	case text != "":
		return text, nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", err
		}
		text = string(data)
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		text = string(data)
	default:
		return "", errors.New("nothing to extract: pass --text or --file")
	}
	text = strings.TrimSpace(cleanClipboardText(text))
	if text == "" {
		return "", errors.New("nothing to extract: input is empty")
	}
	return text, nil
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				subtle.Fprintf(out, "# %s\n", config.Path())
				return toml.NewEncoder(out).Encode(loadConfig())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a default config file if none exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				created, err := config.EnsureExists()
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(out, "  %s wrote %s\n", good.Sprint("✓"), config.Path())
				} else {
					subtle.Fprintf(out, "  %s already exists\n", config.Path())
				}
				return nil
			},
		},
	)
	return cmd
}
