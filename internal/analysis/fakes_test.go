package analysis

import (
	"context"
	"sync/atomic"

	"github.com/spacesedan/nluflow/internal/models"
)

type fakeClassifier struct {
	labels []Label
	calls  atomic.Int32
	inputs [][]string
}

func (f *fakeClassifier) Classify(ctx context.Context, texts []string) ([][]Label, error) {
	f.calls.Add(1)
	f.inputs = append(f.inputs, texts)
	out := make([][]Label, len(texts))
	for i := range texts {
		out[i] = f.labels
	}
	return out, nil
}

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, f.err
}

type fakeRemote struct {
	calls    atomic.Int32
	features []models.Features
	results  *models.AnalysisResults
	err      error
}

func (f *fakeRemote) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.AnalysisResults, error) {
	f.calls.Add(1)
	f.features = append(f.features, req.Features)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}
