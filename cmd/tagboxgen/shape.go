package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/tagbox/gen"
	"github.com/chazu/tagbox/manifest"
)

func init() {
	rootCmd.AddCommand(newShapeCmd())
}

type shapeOptions struct {
	pattern   string
	typ       string
	name      string
	container string
	derive    []string
	out       string
}

func newShapeCmd() *cobra.Command {
	var opts shapeOptions
	cmd := &cobra.Command{
		Use:   "shape",
		Short: "Generate a union from a shape struct",
		Long: `The shape command loads a Go package and turns the fields of a struct
into the variants of a union, in declaration order. Use it from go:generate:

  //go:generate tagboxgen shape --type itemShape --container Container

An empty struct field is a unit variant. A struct field tagged
tagbox:"tuple" becomes a tuple, one tagged tagbox:"fields" keeps its field
names, and any other field holds a single value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShape(opts)
		},
	}
	cmd.Flags().StringVar(&opts.pattern, "pattern", ".", "Package to load")
	cmd.Flags().StringVar(&opts.typ, "type", "", "Name of the shape struct (required)")
	cmd.Flags().StringVar(&opts.name, "name", "", "Union name (default: the type without a Shape suffix)")
	cmd.Flags().StringVar(&opts.container, "container", "", "Container name (default: <name>Container)")
	cmd.Flags().StringSliceVar(&opts.derive, "derive", nil, "Derived operations: equal, compare")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default: <package dir>/<name>_tagbox.go)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runShape(opts shapeOptions) error {
	derive, err := gen.ParseDerive(opts.derive)
	if err != nil {
		return err
	}
	res, err := gen.IntrospectShape(gen.ShapeOptions{
		Pattern:   opts.pattern,
		Type:      opts.typ,
		Name:      opts.name,
		Container: opts.container,
		Derive:    derive,
	})
	if err != nil {
		return err
	}

	logger().Debugf("%s.%s: %d variants in %s", opts.pattern, opts.typ, len(res.Union.Variants), res.Dir)

	src, err := gen.Generate(&res.Union)
	if err != nil {
		return err
	}

	path := opts.out
	if path == "" {
		path = shapeOutputPath(res)
	}
	if err := writeSource(path, src); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	printInfo("Generated %s (%d variants) to %s\n", res.Union.Name, len(res.Union.Variants), path)
	return nil
}

func shapeOutputPath(res *gen.ShapeResult) string {
	return filepath.Join(res.Dir, manifest.ToSnakeCase(res.Union.Name)+"_tagbox.go")
}
