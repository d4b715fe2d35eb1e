package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tsmerge/internal/ast"
	"tsmerge/internal/bundle"
	"tsmerge/internal/config"
	"tsmerge/internal/diag"
	"tsmerge/internal/emit"
	"tsmerge/internal/frontend"
	"tsmerge/internal/source"
	"tsmerge/internal/symbols"
)

// ErrCyclic is returned when cycles are configured as errors and the
// units could not be ordered without breaking one.
var ErrCyclic = errors.New("units depend on each other in a cycle")

const defaultMaxDiagnostics = 512

// CompileRequest configures one build.
type CompileRequest struct {
	// Sources are the input files in program order.
	Sources        []string
	BaseDir        string
	Options        config.Options
	MaxDiagnostics int
	// Jobs bounds parallel parsing; 0 means GOMAXPROCS.
	Jobs     int
	Progress ProgressSink
	// Write receives output files; nil writes to disk.
	Write        emit.WriteFileFunc
	Transformers emit.Transformers
	// Cache, when set, stores a record of the build for `tsmerge graph`.
	Cache *DiskCache
}

// CompileResult captures build artefacts and stage timings.
type CompileResult struct {
	BuildID string
	Program *ast.Program
	Bag     *diag.Bag
	Report  *bundle.Report
	Timings Timings
}

// Compile loads, parses and binds the sources, then orders them, applies
// the export mode and writes the bundle. Diagnostics end up in the result
// bag; the returned error covers cancellation, unusable requests and
// ErrCyclic.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing compile request")
	}
	if req.Options.OutputPath == "" {
		return result, fmt.Errorf("missing output path")
	}
	result.BuildID = uuid.NewString()
	log := Logger().With(zap.String("build", result.BuildID))
	files := displayFiles(req.Sources, req.BaseDir)
	emitQueued(req.Progress, files)
	log.Info("build started", zap.Int("sources", len(req.Sources)), zap.String("output", req.Options.OutputPath))

	b := bundle.New(req.Options, log)
	factory := b.HookProgramFactory(func(ctx context.Context) (*ast.Program, *diag.Bag, error) {
		return loadProgram(ctx, req, files, &result.Timings)
	}, req.Transformers)
	build, err := factory(ctx)
	if err != nil {
		return result, err
	}
	result.Program = build.Program
	result.Bag = build.Diagnostics

	emitStage(req.Progress, files, StageBundle, StatusWorking, nil, 0)
	start := time.Now()
	write := req.Write
	if write == nil {
		write = emit.DiskWriter
	}
	pending := &pendingWrites{}
	res, err := emit.Emit(ctx, build.Program, emitOptions(req.Options), build.Transformers, pending.write, nil)
	result.Report = &bundle.Report{
		Result:    res,
		Order:     build.State.Order(),
		Exports:   build.State.Exports(),
		Annotated: build.State.Annotated(),
	}
	if err == nil && req.Options.Cycles == config.CyclesError && len(result.Report.Order.Cycles) > 0 {
		err = ErrCyclic
	}
	if err != nil {
		emitStage(req.Progress, files, StageBundle, StatusError, err, time.Since(start))
		log.Warn("build failed", zap.Error(err))
		return result, err
	}
	pending.flush(emit.NewSink(write, diag.BagReporter{Bag: result.Bag}), res)
	elapsed := time.Since(start)
	result.Timings.Set(StageBundle, elapsed)
	emitStage(req.Progress, files, StageBundle, StatusDone, nil, elapsed)

	if req.Cache != nil {
		if err := req.Cache.Put(CacheKey(req.Options.OutputPath), RecordOf(result, req.Options)); err != nil {
			log.Warn("cannot store build record", zap.Error(err))
		}
	}
	log.Info("build finished",
		zap.Int("units", len(result.Report.Order.Units)),
		zap.Int("edges", len(result.Report.Order.Edges)),
		zap.Int("diagnostics", result.Bag.Len()),
		zap.Duration("elapsed", result.Timings.Sum(Stages...)),
	)
	return result, nil
}

func emitOptions(opts config.Options) emit.Options {
	return emit.Options{
		OutputPath:      opts.OutputPath,
		DeclarationPath: opts.DeclarationPath,
		BOM:             opts.BOM,
	}
}

// loadProgram reads the sources, parses them and binds references. Files
// that cannot be read are reported and left out of the program.
func loadProgram(ctx context.Context, req *CompileRequest, files []string, timings *Timings) (*ast.Program, *diag.Bag, error) {
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiag)
	// одинаковые диагностики разных стадий схлопываются
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	emitStage(req.Progress, files, StageLoad, StatusWorking, nil, 0)
	start := time.Now()
	fileSet := source.NewFileSetWithBase(req.BaseDir)
	ids := make([]source.FileID, 0, len(req.Sources))
	for _, path := range req.Sources {
		id, err := fileSet.Load(path)
		if err != nil {
			diag.ReportError(reporter, diag.IOReadFailed, source.Span{File: source.NoFile},
				fmt.Sprintf("failed to load file: %v", err)).Emit()
			continue
		}
		ids = append(ids, id)
	}
	timings.Set(StageLoad, time.Since(start))
	emitStage(req.Progress, files, StageLoad, StatusDone, nil, time.Since(start))

	emitStage(req.Progress, files, StageParse, StatusWorking, nil, 0)
	start = time.Now()
	prog, err := frontend.ParseFiles(ctx, fileSet, ids, reporter, frontend.Options{Jobs: req.Jobs})
	if err != nil {
		emitStage(req.Progress, files, StageParse, StatusError, err, time.Since(start))
		return nil, bag, err
	}
	timings.Set(StageParse, time.Since(start))
	emitStage(req.Progress, files, StageParse, StatusDone, nil, time.Since(start))

	emitStage(req.Progress, files, StageBind, StatusWorking, nil, 0)
	start = time.Now()
	prog.Resolver = symbols.Bind(prog, reporter)
	timings.Set(StageBind, time.Since(start))
	emitStage(req.Progress, files, StageBind, StatusDone, nil, time.Since(start))
	return prog, bag, nil
}

type pendingFile struct {
	path, text string
	bom        bool
}

// pendingWrites holds output until the build is known to succeed.
type pendingWrites struct {
	files []pendingFile
}

func (p *pendingWrites) write(path, text string, bom bool) error {
	p.files = append(p.files, pendingFile{path: path, text: text, bom: bom})
	return nil
}

func (p *pendingWrites) flush(sink *emit.Sink, res *emit.Result) {
	for i, f := range p.files {
		ok := sink.Write(f.path, f.text, f.bom)
		if res != nil && i < len(res.Outputs) {
			res.Outputs[i].Written = ok
		}
	}
}
