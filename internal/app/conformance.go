package app

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/vk/plugdef/internal/conformance"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/memhost"
)

func newMemHost() conformance.Host { return memhost.New() }

// RunTests runs the generated conformance suite of every plugin against
// memhost and reports each check. It returns an error when any check fails.
func (a *App) RunTests(ctx context.Context) ([]conformance.Result, error) {
	ctx = a.withLogger(ctx)
	logger := ctxlog.FromContext(ctx)

	var results []conformance.Result
	suites := 0
	for _, p := range a.catalog.Plugins() {
		suite := p.Conformance()
		if suite.Empty() {
			logger.Debug("Plugin has no generated checks.", "plugin", p.Name())
			continue
		}
		suites++
		results = append(results, suite.RunAll(newMemHost)...)
	}

	failed := 0
	for _, r := range results {
		if r.Passed() {
			fmt.Fprintf(a.outW, "%s %s/%s\n", pterm.Green("PASS"), r.Plugin, r.Check)
			continue
		}
		failed++
		fmt.Fprintf(a.outW, "%s %s/%s\n    %v\n", pterm.Red("FAIL"), r.Plugin, r.Check, r.Err)
	}

	if suites == 0 {
		logger.Warn("No plugin opts into generate_tests; nothing to run.")
	}
	logger.Info("Conformance run finished.", "suites", suites, "checks", len(results), "failed", failed)
	if failed > 0 {
		return results, errors.Newf("%d of %d checks failed", failed, len(results))
	}
	return results, nil
}
