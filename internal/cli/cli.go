// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ptashenko/dirtree/internal/commands"
	"github.com/ptashenko/dirtree/internal/config"
	"github.com/ptashenko/dirtree/internal/output"
	"github.com/ptashenko/dirtree/internal/services/clipboard"
	"github.com/ptashenko/dirtree/internal/services/stream"
	"github.com/ptashenko/dirtree/internal/types"
	"github.com/ptashenko/dirtree/internal/utils"
)

const (
	markdownFlagName    = "md"
	dirsOnlyFlagName    = "dirs-only"
	exclusionFlagName   = "e"
	ignorePathFlagName  = "ignore-path"
	noGitignoreFlagName = "no-gitignore"
	noIgnoreFlagName    = "no-ignore"
	clipboardFlagName   = "copy"
	configFlagName      = "config"
	versionFlagName     = "version"
	versionTemplate     = "dirtree version: %s\n"

	defaultPath          = "."
	rootUse              = "dirtree [path] [depth]"
	rootShortDescription = "render a directory tree"
	rootLongDescription  = `dirtree renders a readable diagram of a directory's contents.
It walks the subtree below a root path up to a bounded depth and prints either
a box-drawing text tree or a Markdown document of collapsible sections.
Directories are listed before files and ignored entries are never descended into.`
	// rootUsageExample demonstrates dirtree invocations.
	rootUsageExample = `  # Render the current directory two levels deep
  dirtree

  # Render ./src three levels deep as Markdown
  dirtree src 3 --md

  # Exclude vendor and all compiled artifacts
  dirtree -e vendor -e '**/*.o' .`

	markdownFlagDescription         = "render Markdown collapsible sections instead of text"
	dirsOnlyFlagDescription         = "omit files, render directories only"
	exclusionFlagDescription        = "exclude glob pattern"
	ignorePathFlagDescription       = "exclude literal path relative to the root"
	disableGitignoreFlagDescription = "do not use .gitignore"
	disableIgnoreFlagDescription    = "do not use .ignore"
	clipboardFlagDescription        = "copy the rendered output to the clipboard"
	configFlagDescription           = "configuration file path"
	versionFlagDescription          = "display application version"

	// errorInvalidDepthFormat reports a depth argument that is not a non-negative integer.
	errorInvalidDepthFormat = "invalid depth '%s': must be a non-negative integer"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorClipboardFormat reports a clipboard copy failure.
	errorClipboardFormat = "copying output to clipboard: %w"
	// errorUnknownFormatFormat reports an unrecognized configured output format.
	errorUnknownFormatFormat = "unknown format '%s': expected '%s' or '%s'"
)

// Execute runs the dirtree application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// renderOptions stores the effective configuration for one invocation.
type renderOptions struct {
	markdown          bool
	dirsOnly          bool
	exclusionPatterns []string
	ignorePaths       []string
	disableGitignore  bool
	disableIgnoreFile bool
	copyToClipboard   bool
	configFilePath    string
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool
	var options renderOptions

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		Example:      rootUsageExample,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return runRender(command, arguments, options)
		},
	}

	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.Flags().BoolVar(&options.markdown, markdownFlagName, false, markdownFlagDescription)
	rootCommand.Flags().BoolVar(&options.dirsOnly, dirsOnlyFlagName, false, dirsOnlyFlagDescription)
	rootCommand.Flags().StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	rootCommand.Flags().StringArrayVar(&options.ignorePaths, ignorePathFlagName, nil, ignorePathFlagDescription)
	rootCommand.Flags().BoolVar(&options.disableGitignore, noGitignoreFlagName, false, disableGitignoreFlagDescription)
	rootCommand.Flags().BoolVar(&options.disableIgnoreFile, noIgnoreFlagName, false, disableIgnoreFlagDescription)
	rootCommand.Flags().BoolVar(&options.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	rootCommand.Flags().StringVar(&options.configFilePath, configFlagName, "", configFlagDescription)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// runRender resolves the invocation configuration and renders the tree.
func runRender(command *cobra.Command, arguments []string, options renderOptions) error {
	applicationConfig, configLoadError := config.LoadApplicationConfiguration(config.LoadOptions{
		ExplicitFilePath: options.configFilePath,
	})
	if configLoadError != nil {
		return configLoadError
	}

	rootArgument := defaultPath
	if len(arguments) > 0 {
		rootArgument = arguments[0]
	}

	maxDepth := types.DefaultMaxDepth
	if applicationConfig.MaxDepth != nil {
		maxDepth = *applicationConfig.MaxDepth
	}
	if len(arguments) > 1 {
		parsedDepth, parseError := strconv.Atoi(arguments[1])
		if parseError != nil || parsedDepth < 0 {
			return fmt.Errorf(errorInvalidDepthFormat, arguments[1])
		}
		maxDepth = parsedDepth
	}

	useMarkdown, formatError := resolveMarkdownMode(options.markdown, command.Flags().Changed(markdownFlagName), applicationConfig.Format)
	if formatError != nil {
		return formatError
	}
	dirsOnly := options.dirsOnly
	if !command.Flags().Changed(dirsOnlyFlagName) && applicationConfig.DirsOnly != nil {
		dirsOnly = *applicationConfig.DirsOnly
	}
	copyToClipboard := options.copyToClipboard
	if !command.Flags().Changed(clipboardFlagName) && applicationConfig.Clipboard != nil {
		copyToClipboard = *applicationConfig.Clipboard
	}
	useGitignore := !options.disableGitignore
	if !command.Flags().Changed(noGitignoreFlagName) && applicationConfig.Paths.UseGitignore != nil {
		useGitignore = *applicationConfig.Paths.UseGitignore
	}
	useIgnoreFile := !options.disableIgnoreFile
	if !command.Flags().Changed(noIgnoreFlagName) && applicationConfig.Paths.UseIgnoreFile != nil {
		useIgnoreFile = *applicationConfig.Paths.UseIgnoreFile
	}

	exclusionPatterns := append([]string{}, applicationConfig.Paths.Exclude...)
	exclusionPatterns = append(exclusionPatterns, options.exclusionPatterns...)
	ignorePaths := append([]string{}, applicationConfig.Paths.ExcludePaths...)
	ignorePaths = append(ignorePaths, options.ignorePaths...)

	validatedRoot, rootValidationError := resolveAndValidateRoot(rootArgument)
	if rootValidationError != nil {
		return rootValidationError
	}

	ignoreGlobs, ignoreLoadError := config.LoadCombinedIgnorePatterns(validatedRoot.AbsolutePath, exclusionPatterns, useGitignore, useIgnoreFile)
	if ignoreLoadError != nil {
		return ignoreLoadError
	}

	var renderedOutput bytes.Buffer
	var stdout io.Writer = os.Stdout
	if copyToClipboard {
		stdout = io.MultiWriter(os.Stdout, &renderedOutput)
	}

	var renderer output.StreamRenderer
	if useMarkdown {
		renderer = output.NewMarkdownStreamRenderer(stdout, os.Stderr)
	} else {
		renderer = output.NewTextStreamRenderer(stdout, os.Stderr)
	}

	treeOptions := stream.TreeOptions{
		Root:         validatedRoot.AbsolutePath,
		MaxDepth:     maxDepth,
		IgnoreGlobs:  ignoreGlobs,
		IgnorePaths:  ignorePaths,
		IncludeFiles: !dirsOnly,
	}
	if renderError := renderTree(context.Background(), treeOptions, renderer); renderError != nil {
		return renderError
	}

	if copyToClipboard {
		if copyError := clipboard.NewService().Copy(renderedOutput.String()); copyError != nil {
			return fmt.Errorf(errorClipboardFormat, copyError)
		}
	}
	return nil
}

// renderTree dispatches the traversal producer to the renderer consumer.
func renderTree(ctx context.Context, options stream.TreeOptions, renderer output.StreamRenderer) (err error) {
	defer func() {
		if flushErr := renderer.Flush(); flushErr != nil && err == nil {
			err = flushErr
		}
	}()

	producer := func(streamCtx context.Context, ch chan<- stream.Event) error {
		return stream.StreamTree(streamCtx, options, ch)
	}
	consumer := func(event stream.Event) error {
		return renderer.Handle(event)
	}
	return dispatchStream(ctx, producer, consumer)
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resolveMarkdownMode picks the renderer from the flag and the configured
// format, with an explicit flag taking precedence. A format value other than
// text or markdown is rejected.
func resolveMarkdownMode(flagValue bool, flagChanged bool, configuredFormat string) (bool, error) {
	if flagChanged {
		return flagValue, nil
	}
	switch configuredFormat {
	case "", types.FormatText:
		return flagValue, nil
	case types.FormatMarkdown:
		return true, nil
	default:
		return false, fmt.Errorf(errorUnknownFormatFormat, configuredFormat, types.FormatText, types.FormatMarkdown)
	}
}

// resolveAndValidateRoot converts the input path to absolute form and verifies
// it names an existing directory.
func resolveAndValidateRoot(inputPath string) (types.ValidatedPath, error) {
	absolutePath, absolutePathError := filepath.Abs(inputPath)
	if absolutePathError != nil {
		return types.ValidatedPath{}, fmt.Errorf(errorAbsolutePathFormat, inputPath, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)
	info, fileStatusError := os.Stat(cleanPath)
	if fileStatusError != nil {
		if os.IsNotExist(fileStatusError) {
			return types.ValidatedPath{}, fmt.Errorf("%w: %s", commands.ErrRootNotFound, inputPath)
		}
		return types.ValidatedPath{}, fmt.Errorf(errorStatFormat, inputPath, fileStatusError)
	}
	if !info.IsDir() {
		return types.ValidatedPath{}, fmt.Errorf("%w: %s", commands.ErrRootNotADirectory, inputPath)
	}
	return types.ValidatedPath{AbsolutePath: cleanPath, IsDir: true}, nil
}
