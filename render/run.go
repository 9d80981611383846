// Package render drives a full layout pass over a document file and exposes
// it as the program's main subcommand.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime/debug"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"dxv/config"
	"dxv/document"
	"dxv/layout"
	"dxv/state"
	"dxv/watch"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input document has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	env.Watch = cmd.Bool("watch")

	log.Info("Processing starting", zap.String("source", src))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if err := renderPass(ctx, src, log); err != nil {
		if !env.Watch {
			return err
		}
		// in watch mode a broken document is not fatal, the next save may fix it
		log.Error("Unable to render document", zap.Error(err))
	}
	if !env.Watch {
		return nil
	}

	w, err := watch.New(src, log)
	if err != nil {
		return fmt.Errorf("unable to watch source: %w", err)
	}
	defer w.Close()

	log.Info("Watching for changes, interrupt to stop", zap.String("source", src))
	if err := w.Run(ctx, func(ctx context.Context) error {
		return renderPass(ctx, src, log)
	}); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// renderPass loads the document and lays it out once, emitting the requested
// dumps.
func renderPass(ctx context.Context, src string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	defer func(start time.Time) {
		// graphic decoding of arbitrary embedded images may panic, do not take
		// the watch loop down with it
		if r := recover(); r != nil {
			log.Error("Layout ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("layout panic: %v", r)
		} else {
			log.Debug("Layout completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	doc, err := document.Load(ctx, src, log)
	if err != nil {
		return fmt.Errorf("unable to load document (%s): %w", src, err)
	}
	defer doc.Close()

	res, err := layout.ProcessDocument(doc, layout.NewBasicMeasurer(), &layout.NopPainter{}, env.Cfg.Render, log)
	if err != nil {
		return fmt.Errorf("unable to lay out document (%s): %w", src, err)
	}

	log.Info("Document rendered",
		zap.Stringer("document", doc.ID),
		zap.Int("pages", len(res.Surfaces)),
		zap.String("title", doc.Properties.Title))

	if mode := env.Cfg.Dump.Tree; mode != config.TreeDumpModeNone {
		emitDump(env, doc, "tree.txt", dumpTree(res, mode))
	}
	if env.Cfg.Dump.Pages {
		emitDump(env, doc, "pages.txt", dumpPages(res))
	}
	return nil
}

// emitDump stores a dump in the debug report when one is active, otherwise it
// goes to stdout.
func emitDump(env *state.LocalEnv, doc *document.Document, name, text string) {
	if env.Rpt != nil {
		env.Rpt.StoreData(path.Join("documents", doc.ID.String(), name), []byte(text))
		return
	}
	fmt.Fprint(os.Stdout, text)
}
