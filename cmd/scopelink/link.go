package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/scopelink/linker/internal/fixture"
	"github.com/scopelink/linker/internal/linker"
	"github.com/scopelink/linker/internal/logger"
	"github.com/scopelink/linker/internal/printer"
	"github.com/scopelink/linker/internal/sourcemap"
)

var (
	linkOutDir string
	linkDev    bool
)

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link <graph.json>",
		Short: "Render every chunk in a module graph fixture",
		Long: `link reads a module graph fixture (see internal/fixture for the JSON
shape) and renders each of its chunks into a single scope-hoisted bundle,
printing the result to stdout or, with --outdir, one file per chunk.`,
		Args: cobra.ExactArgs(1),
		RunE: runLink,
	}
	cmd.Flags().StringVarP(&linkOutDir, "outdir", "o", "", "write one file per chunk to this directory instead of stdout")
	cmd.Flags().BoolVar(&linkDev, "dev", false, "prefix each module's emitted text with a banner comment naming its module id")
	return cmd
}

func runLink(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	parsed, err := fixture.Parse(f)
	if err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	log := logger.New()
	sb := linker.NewSharedBundle(parsed.Graph, printer.Default{}, log, linker.Options{Dev: linkDev})
	fixture.Register(parsed, sb.Manager)
	for _, pot := range parsed.Pots {
		sb.AddResourcePot(pot)
	}
	sb.Link()

	chunkIDs := make([]string, len(parsed.Pots))
	for i, pot := range parsed.Pots {
		chunkIDs[i] = pot.ID
	}
	sort.Strings(chunkIDs)

	for _, id := range chunkIDs {
		bundle, err := sb.Render(id)
		if err != nil {
			printDiagnostics(log)
			return fmt.Errorf("render chunk %q: %w", id, err)
		}
		if err := emit(id, bundle); err != nil {
			return err
		}
	}

	printDiagnostics(log)
	return nil
}

func emit(chunkID string, bundle linker.Bundle) error {
	if linkOutDir == "" {
		fmt.Printf("// chunk %s (%s)\n%s\n", chunkID, bundle.UniqueKey, bundle.Text)
		return nil
	}
	if err := os.MkdirAll(linkOutDir, 0o755); err != nil {
		return fmt.Errorf("create outdir: %w", err)
	}
	path := filepath.Join(linkOutDir, chunkID+".js")
	if err := os.WriteFile(path, []byte(bundle.Text), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if len(bundle.SourceMap.Sources) > 0 {
		mapPath := path + ".map"
		if err := os.WriteFile(mapPath, []byte(sourceMapJSON(bundle)), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", mapPath, err)
		}
	}
	pterm.Success.Printfln("wrote %s (%s)", path, bundle.UniqueKey)
	return nil
}

func sourceMapJSON(bundle linker.Bundle) string {
	sources := make([]string, len(bundle.SourceMap.Sources))
	for i, s := range bundle.SourceMap.Sources {
		sources[i] = strconv.Quote(s)
	}
	return fmt.Sprintf(`{"version":3,"sources":[%s],"mappings":%s}`,
		strings.Join(sources, ","), strconv.Quote(sourcemap.Encode(bundle.SourceMap)))
}

func printDiagnostics(log logger.Log) {
	for _, msg := range log.Msgs() {
		line := msg.Text
		if msg.ModuleID != "" {
			line = fmt.Sprintf("%s: %s", msg.ModuleID, msg.Text)
		}
		switch msg.Kind {
		case logger.MsgError:
			pterm.Error.Println(line)
		case logger.MsgWarning:
			pterm.Warning.Println(line)
		default:
			pterm.Info.Println(line)
		}
	}
}
