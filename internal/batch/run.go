package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"yamlassist/internal/assist"
	"yamlassist/internal/document"
)

// Request describes a batch run.
type Request struct {
	Files  []string
	Jobs   int
	Engine *assist.Engine
	// Limit caps proposals kept per probe; 0 keeps all.
	Limit int
}

// ProbeResult holds the sorted proposals at one caret.
type ProbeResult struct {
	Offset    int
	Line      int
	Column    int
	Proposals []assist.Proposal
	Err       error
}

// FileResult is the outcome for one file. Err is set when the file could not
// be read; probe failures are reported per probe.
type FileResult struct {
	Path    string
	Text    string
	Probes  []ProbeResult
	Err     error
	Timings Timings
}

// Run processes every file with at most Jobs files in flight. Results keep
// the order of req.Files. Only cancellation aborts the run.
func Run(ctx context.Context, req Request, sink ProgressSink) ([]FileResult, error) {
	if req.Engine == nil {
		return nil, errors.New("batch: missing engine")
	}
	emit := func(ev Event) {
		if sink != nil {
			sink.OnEvent(ev)
		}
	}
	if len(req.Files) == 0 {
		return nil, nil
	}
	for _, path := range req.Files {
		emit(Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}
	emit(Event{Stage: StageComplete, Status: StatusWorking})
	started := time.Now()

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))
	for i, path := range req.Files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fileStart := time.Now()
			results[i] = runFile(gctx, req, path, emit)
			status := StatusDone
			if results[i].Err != nil {
				status = StatusError
			}
			emit(Event{File: path, Stage: StageComplete, Status: status, Err: results[i].Err, Elapsed: time.Since(fileStart)})
			return nil
		})
	}
	err := g.Wait()
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emit(Event{Stage: StageComplete, Status: status, Err: err, Elapsed: time.Since(started)})
	return results, err
}

func runFile(ctx context.Context, req Request, path string, emit func(Event)) FileResult {
	res := FileResult{Path: path}

	emit(Event{File: path, Stage: StageLoad, Status: StatusWorking})
	start := time.Now()
	data, err := os.ReadFile(path)
	res.Timings.Set(StageLoad, time.Since(start))
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}

	emit(Event{File: path, Stage: StageProbe, Status: StatusWorking})
	start = time.Now()
	text, offsets := ParseProbes(string(data))
	res.Text = text
	doc := document.New(path, text)
	res.Timings.Set(StageProbe, time.Since(start))

	emit(Event{File: path, Stage: StageComplete, Status: StatusWorking})
	start = time.Now()
	res.Probes = make([]ProbeResult, 0, len(offsets))
	for _, off := range offsets {
		probe := ProbeResult{
			Offset: off,
			Line:   doc.LineOfOffset(off),
			Column: doc.Column(off),
		}
		ps, err := req.Engine.Complete(ctx, doc, off)
		if err != nil {
			probe.Err = err
		} else {
			assist.Sort(ps)
			ps = assist.Dedupe(ps)
			if req.Limit > 0 && len(ps) > req.Limit {
				ps = ps[:req.Limit]
			}
			probe.Proposals = ps
		}
		res.Probes = append(res.Probes, probe)
	}
	res.Timings.Set(StageComplete, time.Since(start))
	return res
}
