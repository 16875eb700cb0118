package weekly_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ItIsYeBananaduck/git-fit/internal/healthmetrics"
	"github.com/ItIsYeBananaduck/git-fit/internal/intensity"
	"github.com/ItIsYeBananaduck/git-fit/internal/telemetry/metrics"
	"github.com/ItIsYeBananaduck/git-fit/internal/weekly"
)

type windowRecorder struct {
	windows []healthmetrics.Window
}

func (r *windowRecorder) Collect(_ context.Context, window healthmetrics.Window) (*intensity.HealthMetrics, error) {
	r.windows = append(r.windows, window)
	return nil, nil
}

// TestMain will run goleak after all tests have been run in the package
// to assert that no goroutines leaked
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
		// glog starts a background flush daemon in its package init
		goleak.IgnoreTopFunction(
			"github.com/golang/glog.(*fileSink).flushDaemon",
		),
	)
}

var testRunTime = time.Date(2026, 8, 24, 6, 0, 0, 0, time.UTC)

func testProcessorSession(userID, sessionID string) intensity.WorkoutSession {
	return intensity.WorkoutSession{
		ID:                 sessionID,
		UserID:             userID,
		ExerciseID:         "bench-press",
		Date:               testRunTime.Add(-48 * time.Hour),
		Reps:               24,
		Sets:               3,
		Weight:             60,
		WorkoutTimeMinutes: 45,
		EstimatedCalories:  300,
	}
}

func newTestProcessor(t *testing.T) (*weekly.Processor, *MockbatchRepo, *MocksessionBuffer, *MocksummaryCache) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repoMock := NewMockbatchRepo(ctrl)
	bufMock := NewMocksessionBuffer(ctrl)
	cacheMock := NewMocksummaryCache(ctrl)
	p := weekly.NewProcessor(
		repoMock, bufMock, cacheMock,
		nil, // health metrics degrade to zero contribution
		metrics.NewTestManager(),
		time.UTC,
		weekly.WithNowFunc(func() time.Time { return testRunTime }),
	)
	return p, repoMock, bufMock, cacheMock
}

func TestProcessor_Run_NothingBuffered(t *testing.T) {
	p, _, bufMock, _ := newTestProcessor(t)

	bufMock.EXPECT().Sessions("user-1").Return(nil, nil)

	report, err := p.Run(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, weekly.StateIdle, report.State)
	assert.Zero(t, report.Processed)
	assert.Nil(t, report.Summary)
}

func TestProcessor_Run_FullSuccessPurges(t *testing.T) {
	p, repoMock, bufMock, cacheMock := newTestProcessor(t)

	sessions := []intensity.WorkoutSession{
		testProcessorSession("user-1", "s1"),
		testProcessorSession("user-1", "s2"),
	}
	bufMock.EXPECT().Sessions("user-1").Return(sessions, nil)

	repoMock.EXPECT().
		SubmitBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, records []weekly.BatchRecord) (weekly.SubmitResult, error) {
			require.Len(t, records, 2)
			for _, record := range records {
				assert.Equal(t, "user-1", record.UserID)
				assert.Equal(t, "2026-W35", record.WeekOfYear)
				assert.Len(t, record.WorkoutHash, 64)
				// no health metrics and no feedback: base score only
				assert.Equal(t, float64(intensity.BaseScore), record.Score.Total)
				assert.True(t, record.Decision.DefaultProgression)
				assert.Equal(t, intensity.DefaultWeightIncrement, record.Decision.WeightIncrement)
			}
			assert.Equal(t, records[0].WorkoutHash, records[1].WorkoutHash,
				"identical workouts hash identically")
			return weekly.SubmitResult{Stored: 2, Total: 2, Failed: map[string]error{}}, nil
		})

	bufMock.EXPECT().Remove("user-1", []string{"s1", "s2"}).Return(nil)
	bufMock.EXPECT().SetLastProcessed("user-1", testRunTime).Return(nil)
	cacheMock.EXPECT().
		Set(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, summary weekly.DisplaySummary) error {
			assert.Equal(t, "user-1", summary.UserID)
			assert.Equal(t, "2026-W35", summary.WeekOfYear)
			assert.Equal(t, float64(intensity.BaseScore), summary.AvgScore)
			assert.Equal(t, 2*intensity.DefaultWeightIncrement, summary.WeightDelta)
			return nil
		})

	report, err := p.Run(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, weekly.StatePurged, report.State)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 2, report.Stored)
	assert.Zero(t, report.Retained)
	require.NotNil(t, report.Summary)
	assert.Contains(t, report.Summary.Recommendation, "progress by")
}

func TestProcessor_Run_PartialFailureRetainsFailed(t *testing.T) {
	p, repoMock, bufMock, _ := newTestProcessor(t)

	s1 := testProcessorSession("user-1", "s1")
	s2 := testProcessorSession("user-1", "s2")
	s2.Weight = 80 // distinct hash
	bufMock.EXPECT().Sessions("user-1").Return([]intensity.WorkoutSession{s1, s2}, nil)

	repoMock.EXPECT().
		SubmitBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, records []weekly.BatchRecord) (weekly.SubmitResult, error) {
			require.Len(t, records, 2)
			return weekly.SubmitResult{
				Stored: 1,
				Total:  2,
				Failed: map[string]error{
					records[1].WorkoutHash: errors.New("connection reset"),
				},
			}, nil
		})

	// only the stored session is purged, the failed one waits for the next run
	bufMock.EXPECT().Remove("user-1", []string{"s1"}).Return(nil)

	report, err := p.Run(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, weekly.StateRetained, report.State)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Retained)
	assert.Nil(t, report.Summary)
}

func TestProcessor_Run_SubmitErrorRetainsAll(t *testing.T) {
	p, repoMock, bufMock, _ := newTestProcessor(t)

	sessions := []intensity.WorkoutSession{testProcessorSession("user-1", "s1")}
	bufMock.EXPECT().Sessions("user-1").Return(sessions, nil)
	repoMock.EXPECT().
		SubmitBatch(gomock.Any(), gomock.Any()).
		Return(weekly.SubmitResult{}, errors.New("backend unreachable"))

	report, err := p.Run(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, weekly.StateRetained, report.State)
	assert.Equal(t, 1, report.Retained)
	assert.Zero(t, report.Stored)
}

func TestProcessor_Run_PurgeFailureKeepsSessionsRetained(t *testing.T) {
	p, repoMock, bufMock, _ := newTestProcessor(t)

	sessions := []intensity.WorkoutSession{testProcessorSession("user-1", "s1")}
	bufMock.EXPECT().Sessions("user-1").Return(sessions, nil)
	repoMock.EXPECT().
		SubmitBatch(gomock.Any(), gomock.Any()).
		Return(weekly.SubmitResult{Stored: 1, Total: 1, Failed: map[string]error{}}, nil)
	bufMock.EXPECT().Remove("user-1", []string{"s1"}).Return(errors.New("disk error"))

	// the record is stored remotely; resubmitting next run is a no-op, so
	// a purge failure downgrades the run to retained instead of failing it
	report, err := p.Run(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, weekly.StateRetained, report.State)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 1, report.Retained)
}

func TestProcessor_Run_CollectError(t *testing.T) {
	p, _, bufMock, _ := newTestProcessor(t)

	bufMock.EXPECT().Sessions("user-1").Return(nil, errors.New("buffer corrupted"))

	report, err := p.Run(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, weekly.StateCollecting, report.State)
}

func TestProcessor_Run_HealthWindowFollowsConfiguredTimezone(t *testing.T) {
	ctrl := gomock.NewController(t)
	repoMock := NewMockbatchRepo(ctrl)
	bufMock := NewMocksessionBuffer(ctrl)
	cacheMock := NewMocksummaryCache(ctrl)

	belgrade, err := time.LoadLocation("Europe/Belgrade")
	require.NoError(t, err)

	collector := &windowRecorder{}
	p := weekly.NewProcessor(
		repoMock, bufMock, cacheMock,
		collector,
		metrics.NewTestManager(),
		belgrade,
		weekly.WithNowFunc(func() time.Time { return testRunTime }),
	)

	session := testProcessorSession("user-1", "s1")
	// half past local midnight, still the previous day in UTC
	session.Date = time.Date(2026, 8, 23, 22, 30, 0, 0, time.UTC)
	bufMock.EXPECT().Sessions("user-1").Return([]intensity.WorkoutSession{session}, nil)
	repoMock.EXPECT().
		SubmitBatch(gomock.Any(), gomock.Any()).
		Return(weekly.SubmitResult{Stored: 1, Total: 1, Failed: map[string]error{}}, nil)
	bufMock.EXPECT().Remove("user-1", []string{"s1"}).Return(nil)
	bufMock.EXPECT().SetLastProcessed("user-1", testRunTime).Return(nil)
	cacheMock.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

	_, err = p.Run(context.Background(), "user-1")
	require.NoError(t, err)

	require.Len(t, collector.windows, 1)
	localMidnight := time.Date(2026, 8, 24, 0, 0, 0, 0, belgrade)
	assert.True(t, collector.windows[0].From.Equal(localMidnight),
		"window starts at local midnight, got %s", collector.windows[0].From)
	assert.True(t, collector.windows[0].To.Equal(localMidnight.Add(24*time.Hour)))
}

func TestProcessor_Run_MentalStressOverrideZeroesAdjustment(t *testing.T) {
	p, repoMock, bufMock, cacheMock := newTestProcessor(t)

	session := testProcessorSession("user-1", "s1")
	session.Reps = 0 // logged but not performed
	bufMock.EXPECT().Sessions("user-1").Return([]intensity.WorkoutSession{session}, nil)

	repoMock.EXPECT().
		SubmitBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, records []weekly.BatchRecord) (weekly.SubmitResult, error) {
			require.Len(t, records, 1)
			// without health metrics the stress override cannot corroborate,
			// so the default progression still applies
			assert.True(t, records[0].Decision.DefaultProgression)
			return weekly.SubmitResult{Stored: 1, Total: 1, Failed: map[string]error{}}, nil
		})
	bufMock.EXPECT().Remove("user-1", []string{"s1"}).Return(nil)
	bufMock.EXPECT().SetLastProcessed("user-1", testRunTime).Return(nil)
	cacheMock.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

	report, err := p.Run(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, weekly.StatePurged, report.State)
}
