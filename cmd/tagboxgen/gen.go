package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/tagbox/gen"
	"github.com/chazu/tagbox/manifest"
)

func init() {
	rootCmd.AddCommand(newGenCmd())
}

type genOptions struct {
	config string
	union  string
	check  bool
}

func newGenCmd() *cobra.Command {
	var opts genOptions
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the unions declared in tagbox.toml",
		Long: `The gen command finds tagbox.toml in the given directory or one of its
parents and writes one file per declared union.

Example:
  tagboxgen gen
  tagboxgen gen --config ./internal/model --union Item
  tagboxgen gen --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(opts)
		},
	}
	cmd.Flags().StringVar(&opts.config, "config", ".", "Directory to start searching for "+manifest.FileName)
	cmd.Flags().StringVar(&opts.union, "union", "", "Generate only the named union")
	cmd.Flags().BoolVar(&opts.check, "check", false, "Fail if a generated file is out of date instead of writing it")
	return cmd
}

func runGen(opts genOptions) error {
	m, err := manifest.FindAndLoad(opts.config)
	if err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	}
	if m == nil {
		return fmt.Errorf("no %s found in %s or its parents", manifest.FileName, opts.config)
	}
	if opts.union != "" {
		if _, ok := m.Union(opts.union); !ok {
			return fmt.Errorf("%s has no union %s", m.Dir, opts.union)
		}
	}

	logger().Debugf("loaded %s: %d unions", m.Dir, len(m.Unions))

	unions, err := gen.FromManifest(m)
	if err != nil {
		return err
	}

	stale := 0
	for i := range unions {
		u := &unions[i]
		if opts.union != "" && u.Name != opts.union {
			continue
		}
		src, err := gen.Generate(u)
		if err != nil {
			return err
		}
		path := m.OutputPath(m.Unions[i])

		if opts.check {
			current, err := os.ReadFile(path)
			if err != nil || string(current) != string(src) {
				printInfo("stale: %s\n", path)
				stale++
			}
			continue
		}
		if err := writeSource(path, src); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		printInfo("Generated %s (%d variants) to %s\n", u.Name, len(u.Variants), path)
	}
	if stale > 0 {
		return fmt.Errorf("%d generated file(s) out of date; run tagboxgen gen", stale)
	}
	return nil
}
