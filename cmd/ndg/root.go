package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndggen/ndg/internal/buildinfo"
	"github.com/ndggen/ndg/internal/ndg"
	"github.com/ndggen/ndg/internal/ndgconfig"
)

type buildFlags struct {
	configPath string
	overrides  map[string]string

	inputDir        string
	outputDir       string
	moduleOptions   string
	templateDir     string
	templatePath    string
	manpageURLsPath string
	title           string
	footerText      string
	revision        string
	ogImagePath     string
	stylesheetPaths []string
	scriptPaths     []string

	verbose bool
	quiet   bool
}

func newRootCmd() *cobra.Command {
	flags := &buildFlags{}

	root := &cobra.Command{
		Use:           "ndg",
		Short:         "Render a NixOS-flavored Markdown tree into a static documentation site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the documentation site",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), flags)
		},
	}

	buildCmd.Flags().StringVar(&flags.configPath, "config", "ndg.toml", "path to the ndg.toml configuration file")
	buildCmd.Flags().StringToStringVar(&flags.overrides, "set", nil, "dotted-key config override, e.g. --set search.enable=false")
	buildCmd.Flags().StringVar(&flags.inputDir, "input-dir", "", "override input_dir")
	buildCmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "override output_dir")
	buildCmd.Flags().StringVar(&flags.moduleOptions, "module-options", "", "override module_options")
	buildCmd.Flags().StringVar(&flags.templateDir, "template-dir", "", "override template_dir")
	buildCmd.Flags().StringVar(&flags.templatePath, "template", "", "override template_path")
	buildCmd.Flags().StringVar(&flags.manpageURLsPath, "manpage-urls", "", "override manpage_urls_path")
	buildCmd.Flags().StringVar(&flags.title, "title", "", "override title")
	buildCmd.Flags().StringVar(&flags.footerText, "footer-text", "", "override footer_text")
	buildCmd.Flags().StringVar(&flags.revision, "revision", "", "override revision")
	buildCmd.Flags().StringVar(&flags.ogImagePath, "og-image", "", "override og_image_path")
	buildCmd.Flags().StringArrayVar(&flags.stylesheetPaths, "stylesheet", nil, "additional stylesheet to copy into assets/ (repeatable)")
	buildCmd.Flags().StringArrayVar(&flags.scriptPaths, "script", nil, "additional script to copy into assets/ (repeatable)")
	buildCmd.Flags().BoolVar(&flags.verbose, "verbose", false, "enable debug logging")
	buildCmd.Flags().BoolVar(&flags.quiet, "quiet", false, "only log errors")

	root.AddCommand(buildCmd)
	root.AddCommand(newVersionCmd())

	return root
}

func runBuild(ctx context.Context, flags *buildFlags) error {
	ndgconfig.SetupLogging(ndgconfig.ResolveLogLevel(flags.verbose, flags.quiet), ndgconfig.ResolveLogFormat())

	overrides := map[string]string{}
	for k, v := range flags.overrides {
		overrides[k] = v
	}
	setIfNonEmpty(overrides, "input_dir", flags.inputDir)
	setIfNonEmpty(overrides, "output_dir", flags.outputDir)
	setIfNonEmpty(overrides, "module_options", flags.moduleOptions)
	setIfNonEmpty(overrides, "template_dir", flags.templateDir)
	setIfNonEmpty(overrides, "template_path", flags.templatePath)
	setIfNonEmpty(overrides, "manpage_urls_path", flags.manpageURLsPath)
	setIfNonEmpty(overrides, "title", flags.title)
	setIfNonEmpty(overrides, "footer_text", flags.footerText)
	setIfNonEmpty(overrides, "revision", flags.revision)
	setIfNonEmpty(overrides, "og_image_path", flags.ogImagePath)

	cfg, err := ndgconfig.Resolve(ndgconfig.ResolveOptions{
		ConfigPath: flags.configPath,
		Overrides:  overrides,
	})
	if err != nil {
		return err
	}

	// Stylesheet/script paths are additive lists; the dotted-override layer
	// only carries scalars, so CLI-supplied paths are appended directly onto
	// the resolved config rather than routed through Resolve.
	cfg.StylesheetPaths = append(cfg.StylesheetPaths, flags.stylesheetPaths...)
	cfg.ScriptPaths = append(cfg.ScriptPaths, flags.scriptPaths...)

	return ndg.Run(ctx, cfg)
}

func setIfNonEmpty(m map[string]string, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "ndg %s (%s, %s/%s, built %s)\n",
				buildinfo.Version, buildinfo.Commit, buildinfo.OS(), buildinfo.Arch(), buildinfo.Date)
			return nil
		},
	}
}
