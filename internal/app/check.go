package app

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/vk/plugdef/internal/compiler"
	"github.com/vk/plugdef/internal/conformance"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/memhost"
)

// BuildResult is the outcome of building one plugin into a fresh host.
type BuildResult struct {
	Plugin string
	Host   *memhost.App
	Err    error
}

// Check builds every compiled plugin into its own memhost.App, after its
// dependencies and with state support installed, then runs the finish phase.
// It returns an error when any plugin fails.
func (a *App) Check(ctx context.Context) ([]BuildResult, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	plugins := a.catalog.Plugins()
	results := make([]BuildResult, 0, len(plugins))
	failed := 0
	for _, p := range plugins {
		logger.Debug("Checking plugin.", "plugin", p.Name(), "program", p.Program())
		h := memhost.New()
		err := buildSafely(h, p)
		results = append(results, BuildResult{Plugin: p.Name(), Host: h, Err: err})

		if err != nil {
			failed++
			fmt.Fprintf(a.outW, "%s %s: %v\n", pterm.Red("✗"), p.Name(), err)
			for _, hint := range errors.GetAllHints(err) {
				fmt.Fprintf(a.outW, "    %s %s\n", pterm.Yellow("hint:"), hint)
			}
			continue
		}
		fmt.Fprintf(a.outW, "%s %s (%d instructions)\n", pterm.Green("✓"), p.Name(), len(p.Program()))
	}

	logger.Info("Check finished.", "plugins", len(plugins), "failed", failed)
	if failed > 0 {
		return results, errors.Newf("%d of %d plugins failed to build", failed, len(plugins))
	}
	return results, nil
}

func buildSafely(h *memhost.App, p *compiler.Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("building %s panicked: %v", p.Name(), r)
		}
	}()
	if err := h.AddStateSupport(); err != nil {
		return err
	}
	if err := conformance.AddWithDependencies(h, p); err != nil {
		return err
	}
	return h.Finish()
}
