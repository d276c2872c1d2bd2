package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"condflow/internal/ast"
	"condflow/internal/diag"
	"condflow/internal/observ"
	"condflow/internal/sema"
	"condflow/internal/source"
	"condflow/internal/syntax"
	"condflow/internal/trace"
)

// SourceExt is the extension of the files picked up from directories.
const SourceExt = ".java"

// Result is the outcome of one Compile call.
type Result struct {
	FileSet *source.FileSet
	Files   []*FileResult
}

// FileResult holds the diagnostics and compiled units of one source file.
type FileResult struct {
	Path string
	ID   source.FileID
	// AST is nil when the file could not be loaded.
	AST   *ast.File
	Bag   *diag.Bag
	Units []*Unit

	loaded bool
}

// Unit returns the unit compiled for the method called name, or nil.
func (f *FileResult) Unit(name string) *Unit {
	for _, u := range f.Units {
		if u.Method.Name == name {
			return u
		}
	}
	return nil
}

// HasErrors reports whether any file has an error diagnostic.
func (r *Result) HasErrors() bool {
	for _, f := range r.Files {
		if f.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Aborted returns the number of units abandoned on an internal error.
func (r *Result) Aborted() int {
	n := 0
	for _, f := range r.Files {
		for _, u := range f.Units {
			if u.Aborted {
				n++
			}
		}
	}
	return n
}

// Diagnostics returns the diagnostics of every file in input order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Files {
		out = append(out, f.Bag.Items()...)
	}
	return out
}

type compiler struct {
	opts    Options
	fs      *source.FileSet
	timer   *observ.Timer
	metrics *observ.Metrics
}

type job struct {
	file    *FileResult
	methods sema.MethodTable
	unit    *Unit
}

// Compile loads the files named by paths (directories are searched for
// SourceExt files) and compiles every method. Diagnostics are kept per
// file; the returned error is reserved for failures of the invocation
// itself, such as a missing path or cancellation.
func Compile(ctx context.Context, paths []string, opts Options) (*Result, error) {
	files, err := collectFiles(paths)
	if err != nil {
		return nil, err
	}
	c := newCompiler(opts)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile")
	defer span.End(fmt.Sprintf("files=%d", len(files)))

	idx := c.timer.Begin("load")
	res := &Result{FileSet: c.fs, Files: make([]*FileResult, len(files))}
	for i, path := range files {
		res.Files[i] = c.load(path)
	}
	c.timer.End(idx, "")
	return res, c.run(ctx, res)
}

// CompileSource compiles src held in a virtual file called name.
func CompileSource(ctx context.Context, name string, src []byte, opts Options) (*Result, error) {
	c := newCompiler(opts)
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "compile")
	defer span.End(name)

	id := c.fs.AddVirtual(name, src)
	c.metrics.Files.Inc()
	res := &Result{
		FileSet: c.fs,
		Files:   []*FileResult{{Path: name, ID: id, Bag: c.newBag(), loaded: true}},
	}
	return res, c.run(ctx, res)
}

func newCompiler(opts Options) *compiler {
	c := &compiler{
		opts:    opts,
		fs:      source.NewFileSet(),
		timer:   opts.Timer,
		metrics: opts.Metrics,
	}
	if c.metrics == nil {
		c.metrics = observ.NewMetrics()
	}
	return c
}

func (c *compiler) newBag() *diag.Bag {
	// the limit is applied once all diagnostics are sorted
	return diag.NewBag(0)
}

func (c *compiler) load(path string) *FileResult {
	fr := &FileResult{Path: path, Bag: c.newBag()}
	id, err := c.fs.Load(path)
	if err != nil {
		fr.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load file: "+err.Error()))
		return fr
	}
	c.metrics.Files.Inc()
	fr.ID, fr.loaded = id, true
	return fr
}

func (c *compiler) run(ctx context.Context, res *Result) error {
	if err := c.parse(ctx, res); err != nil {
		return err
	}
	jobs := c.plan(res)
	if err := c.compileUnits(ctx, jobs); err != nil {
		return err
	}
	c.finish(res)
	return nil
}

func (c *compiler) parse(ctx context.Context, res *Result) error {
	if len(res.Files) == 0 {
		return nil
	}
	defer c.timer.Track("parse")()
	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
	defer span.End("")

	// каждая горутина пишет только в свой FileResult
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(c.opts.jobs(), len(res.Files)))
	for _, fr := range res.Files {
		if !fr.loaded {
			continue
		}
		fr := fr
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fr.AST = syntax.ParseFile(c.fs.Get(fr.ID), syntax.Options{Reporter: diag.BagReporter{Bag: fr.Bag}})
			return nil
		})
	}
	return g.Wait()
}

// plan collects the methods of every file without syntax errors into jobs.
func (c *compiler) plan(res *Result) []job {
	var jobs []job
	for _, fr := range res.Files {
		if fr.AST == nil || fr.Bag.HasErrors() {
			continue
		}
		methods := sema.CollectMethods(fr.AST, diag.BagReporter{Bag: fr.Bag})
		for _, m := range fr.AST.Methods {
			if methods[m.Name] != m {
				// duplicate, already reported
				continue
			}
			u := &Unit{Method: m, bag: diag.NewBag(0)}
			fr.Units = append(fr.Units, u)
			jobs = append(jobs, job{file: fr, methods: methods, unit: u})
		}
	}
	return jobs
}

func (c *compiler) compileUnits(ctx context.Context, jobs []job) error {
	if len(jobs) == 0 {
		return nil
	}
	ctx, span := trace.Start(ctx, trace.ScopePass, "units")
	defer span.End("")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(c.opts.jobs(), len(jobs)))
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c.compileUnit(gctx, j)
			return nil
		})
	}
	return g.Wait()
}

// finish merges unit diagnostics into their files, then sorts, dedups and
// limits every file bag.
func (c *compiler) finish(res *Result) {
	for _, fr := range res.Files {
		all := diag.NewBag(0)
		all.Merge(fr.Bag)
		for _, u := range fr.Units {
			all.Merge(u.bag)
		}
		all.Sort()
		all.Dedup()
		if c.opts.WarningsAsErrors {
			all.PromoteWarnings()
		}
		out := diag.NewBag(c.opts.MaxDiagnostics)
		for _, d := range all.Items() {
			out.Add(d)
		}
		fr.Bag = out
	}
}

func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		// Сортируем для детерминированного порядка
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
