package portal

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/growthlab/marshalgo/internal/contract"
	"github.com/growthlab/marshalgo/schema"
)

// MockPortalClient is a testify mock of contract.PortalClient for tests that
// exercise the session and orchestration layers without a live portal.
type MockPortalClient struct {
	mock.Mock
}

// Interface guard
var _ contract.PortalClient = (*MockPortalClient)(nil)

func (m *MockPortalClient) ListPrograms(ctx context.Context) ([]schema.Program, error) {
	args := m.Called(ctx)
	programs, _ := args.Get(0).([]schema.Program)
	return programs, args.Error(1)
}

func (m *MockPortalClient) ListProgramSources(ctx context.Context, programIdx int) ([]schema.Record, error) {
	args := m.Called(ctx, programIdx)
	sources, _ := args.Get(0).([]schema.Record)
	return sources, args.Error(1)
}

func (m *MockPortalClient) QueryCandidates(ctx context.Context, programIdx int, start, end time.Time, showSaved schema.ShowSaved) ([]schema.Record, error) {
	args := m.Called(ctx, programIdx, start, end, showSaved)
	candidates, _ := args.Get(0).([]schema.Record)
	return candidates, args.Error(1)
}

func (m *MockPortalClient) FetchLightcurve(ctx context.Context, name string) (*schema.Lightcurve, error) {
	args := m.Called(ctx, name)
	lc, _ := args.Get(0).(*schema.Lightcurve)
	return lc, args.Error(1)
}

func (m *MockPortalClient) SourceSummary(ctx context.Context, sourceID string) (schema.Record, error) {
	args := m.Called(ctx, sourceID)
	summary, _ := args.Get(0).(schema.Record)
	return summary, args.Error(1)
}

func (m *MockPortalClient) PostComment(ctx context.Context, name string, text string, kind schema.CommentType) error {
	args := m.Called(ctx, name, text, kind)
	return args.Error(0)
}

func (m *MockPortalClient) EditComment(ctx context.Context, name string, commentID int64, text string, kind schema.CommentType) error {
	args := m.Called(ctx, name, commentID, text, kind)
	return args.Error(0)
}

func (m *MockPortalClient) DeleteComment(ctx context.Context, name string, commentID int64) error {
	args := m.Called(ctx, name, commentID)
	return args.Error(0)
}

func (m *MockPortalClient) IngestAvro(ctx context.Context, avroID string, programID int) error {
	args := m.Called(ctx, avroID, programID)
	return args.Error(0)
}

func (m *MockPortalClient) SaveCandidate(ctx context.Context, candID int64, programID int) error {
	args := m.Called(ctx, candID, programID)
	return args.Error(0)
}

func (m *MockPortalClient) CheckSpectra(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockPortalClient) DownloadSpectra(ctx context.Context, name string, w io.Writer) error {
	args := m.Called(ctx, name, w)
	return args.Error(0)
}
