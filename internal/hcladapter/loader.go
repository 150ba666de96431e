package hcladapter

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/plugdef/internal/config"
	"github.com/vk/plugdef/internal/ctxlog"
	"github.com/vk/plugdef/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL definition loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot is the only shape a definition file may have.
type fileRoot struct {
	Plugins []*pluginBlock `hcl:"plugin,block"`
}

type pluginBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// Source is an in-memory definition file.
type Source struct {
	Filename string
	Content  []byte
}

// Load discovers every .hcl file under paths and loads them in lexical order.
// Paths that do not exist are skipped.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(ctx, paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	sources := make([]Source, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read definition file %s", file)
		}
		sources = append(sources, Source{Filename: file, Content: content})
	}
	return l.LoadSources(ctx, sources...)
}

// LoadSource loads a single in-memory file.
func (l *Loader) LoadSource(ctx context.Context, filename string, content []byte) (*config.Model, config.Converter, error) {
	return l.LoadSources(ctx, Source{Filename: filename, Content: content})
}

// LoadSources loads in-memory files in the order given.
func (l *Loader) LoadSources(ctx context.Context, sources ...Source) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()
	model := &config.Model{}

	for _, src := range sources {
		file, diags := parser.ParseHCL(src.Content, src.Filename)
		if diags.HasErrors() {
			return nil, nil, errors.Wrapf(explainRedefinitions(diags), "failed to parse HCL file %s", src.Filename)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(file.Body, nil, &root)
		if diags.HasErrors() {
			return nil, nil, errors.Wrapf(diags, "failed to decode HCL file %s", src.Filename)
		}

		for _, block := range root.Plugins {
			entries, diags := parseBody(ctx, block.Body)
			model.Warnings = append(model.Warnings, warningsOf(diags)...)
			if diags.HasErrors() {
				return nil, nil, errors.Wrapf(diags, "invalid plugin %q in %s", block.Name, src.Filename)
			}

			def := model.Lookup(block.Name)
			if def == nil {
				def = &config.Definition{Name: block.Name, Range: block.Body.MissingItemRange()}
				model.Definitions = append(model.Definitions, def)
			} else {
				logger.Debug("Merging plugin fragment.", "plugin", block.Name, "file", src.Filename)
			}
			def.Entries = append(def.Entries, entries...)
		}
	}

	for _, def := range model.Definitions {
		if diags := checkDefinition(def); diags.HasErrors() {
			return nil, nil, errors.Wrapf(diags, "invalid plugin %q", def.Name)
		}
	}

	for _, w := range model.Warnings {
		logger.Warn("Definition warning.", "summary", w.Summary, "detail", w.Detail, "range", rangeString(w.Subject))
	}
	logger.Debug("HCL loading complete.", "plugins", len(model.Definitions), "warnings", len(model.Warnings))
	return model, NewConverter(), nil
}

// findAllHCLFiles walks all given paths and returns a sorted, de-duplicated
// list of .hcl files.
func (l *Loader) findAllHCLFiles(ctx context.Context, paths []string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	seen := make(map[string]struct{})
	var all []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				logger.Warn("Definition path does not exist, skipping.", "path", path)
				continue
			}
			return nil, errors.Wrapf(err, "error accessing path %s", path)
		}

		var found []string
		if info.IsDir() {
			found, err = fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, errors.Wrapf(err, "error walking %s", path)
			}
		} else if fsutil.HasExtension(path, ".hcl") {
			found = []string{path}
		}

		for _, f := range found {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			all = append(all, f)
		}
	}
	sort.Strings(all)
	return all, nil
}

// redefinedHint is appended to the parser's diagnostic for an option set
// twice in one block.
const redefinedHint = "To declare more entries for the same option, repeat it in another plugin block with the same name; fragments concatenate in load order."

// explainRedefinitions points repeated options at plugin fragments.
func explainRedefinitions(diags hcl.Diagnostics) hcl.Diagnostics {
	for _, d := range diags {
		if d.Summary == "Attribute redefined" {
			d.Detail = strings.TrimSpace(d.Detail + " " + redefinedHint)
		}
	}
	return diags
}
