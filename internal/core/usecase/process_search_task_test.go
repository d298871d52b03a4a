package usecase

import (
	"context"
	"errors"
	"testing"

	"flatfox-parser-service/internal/core/domain"

	"github.com/google/uuid"
)

type stubPipeline struct {
	listings []domain.Listing
	calls    int
	lastURL  string
}

func (s *stubPipeline) Execute(ctx context.Context, searchURL string) []domain.Listing {
	s.calls++
	s.lastURL = searchURL
	return s.listings
}

type stubKnownRepo struct {
	fresh      []string
	filterErr  error
	markErr    error
	seenBatches [][]string
}

func (s *stubKnownRepo) FilterNew(ctx context.Context, fingerprints []string) ([]string, error) {
	if s.filterErr != nil {
		return nil, s.filterErr
	}
	if s.fresh != nil {
		return s.fresh, nil
	}
	return fingerprints, nil
}

func (s *stubKnownRepo) MarkSeen(ctx context.Context, fingerprints []string) error {
	s.seenBatches = append(s.seenBatches, fingerprints)
	return s.markErr
}

type stubQueue struct {
	failOn   string
	enqueued []domain.Listing
}

func (s *stubQueue) Enqueue(ctx context.Context, listing domain.Listing, taskID uuid.UUID) error {
	if s.failOn != "" && listing.Fingerprint == s.failOn {
		return errors.New("broker unavailable")
	}
	s.enqueued = append(s.enqueued, listing)
	return nil
}

type stubReporter struct {
	err    error
	taskID uuid.UUID
	stats  *domain.ScanStats
}

func (s *stubReporter) ReportResults(ctx context.Context, taskID uuid.UUID, stats *domain.ScanStats) error {
	s.taskID = taskID
	s.stats = stats
	return s.err
}

func testListing(sourceID int64, title, price string) domain.Listing {
	return domain.Listing{
		SourceID: sourceID,
		Title:    title,
		Price:    price,
		Link:     "https://flatfox.ch/de/flat/x",
	}
}

func newTaskUseCase(
	enabled bool,
	blacklist []string,
	pipeline *stubPipeline,
	known *stubKnownRepo,
	queue *stubQueue,
	reporter *stubReporter,
) *ProcessSearchTaskUseCase {
	source := NewFlatfoxSource(
		domain.SourceSettings{Enabled: enabled, URL: "https://flatfox.ch/de/search/?max_price=2000"},
		domain.NewBlacklist(blacklist),
		pipeline,
	)
	return NewProcessSearchTaskUseCase(source, pipeline, known, queue, reporter)
}

func TestProcessSearchTaskDisabledSource(t *testing.T) {
	pipeline := &stubPipeline{}
	uc := newTaskUseCase(false, nil, pipeline, &stubKnownRepo{}, &stubQueue{}, &stubReporter{})

	if err := uc.Execute(context.Background(), "https://flatfox.ch/de/search/", uuid.New()); err != nil {
		t.Fatalf("disabled source must not fail the task: %v", err)
	}
	if pipeline.calls != 0 {
		t.Fatal("disabled source must not trigger the pipeline")
	}
}

func TestProcessSearchTaskURLResolution(t *testing.T) {
	t.Run("task carries its own url", func(t *testing.T) {
		pipeline := &stubPipeline{}
		uc := newTaskUseCase(true, nil, pipeline, &stubKnownRepo{}, &stubQueue{}, &stubReporter{})

		if err := uc.Execute(context.Background(), "https://flatfox.ch/de/search/?min_rooms=3", uuid.New()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pipeline.lastURL != "https://flatfox.ch/de/search/?min_rooms=3" {
			t.Fatalf("task url not used: %q", pipeline.lastURL)
		}
	})

	t.Run("empty task url falls back to source url", func(t *testing.T) {
		pipeline := &stubPipeline{}
		uc := newTaskUseCase(true, nil, pipeline, &stubKnownRepo{}, &stubQueue{}, &stubReporter{})

		if err := uc.Execute(context.Background(), "", uuid.New()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if pipeline.lastURL != "https://flatfox.ch/de/search/?max_price=2000" {
			t.Fatalf("source url not used: %q", pipeline.lastURL)
		}
	})
}

func TestProcessSearchTaskDeduplicates(t *testing.T) {
	first := testListing(1, "Neue Wohnung", "1’200 CHF")
	second := testListing(2, "Bekannte Wohnung", "1’500 CHF")

	pipeline := &stubPipeline{listings: []domain.Listing{first, second}}
	known := &stubKnownRepo{fresh: []string{domain.ListingFingerprint(1, "1’200 CHF")}}
	queue := &stubQueue{}
	reporter := &stubReporter{}

	uc := newTaskUseCase(true, nil, pipeline, known, queue, reporter)
	taskID := uuid.New()

	if err := uc.Execute(context.Background(), "", taskID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(queue.enqueued) != 1 || queue.enqueued[0].SourceID != 1 {
		t.Fatalf("only the fresh listing must be enqueued, got %+v", queue.enqueued)
	}
	if len(known.seenBatches) != 1 || len(known.seenBatches[0]) != 1 {
		t.Fatalf("only published fingerprints must be marked seen, got %v", known.seenBatches)
	}
	if reporter.stats == nil || reporter.stats.ListingsFetched != 2 || reporter.stats.ListingsNew != 1 {
		t.Fatalf("unexpected stats: %+v", reporter.stats)
	}
	if reporter.taskID != taskID {
		t.Fatal("report must carry the task id")
	}
}

func TestProcessSearchTaskBlacklistRejection(t *testing.T) {
	pipeline := &stubPipeline{listings: []domain.Listing{
		testListing(1, "WG-Zimmer in Zürich", "900 CHF"),
		testListing(2, "Schöne Wohnung", "1’500 CHF"),
	}}
	queue := &stubQueue{}
	reporter := &stubReporter{}

	uc := newTaskUseCase(true, []string{"wg"}, pipeline, &stubKnownRepo{}, queue, reporter)

	if err := uc.Execute(context.Background(), "", uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0].SourceID != 2 {
		t.Fatalf("blacklisted listing must not be enqueued, got %+v", queue.enqueued)
	}
}

func TestProcessSearchTaskEnqueueFailure(t *testing.T) {
	first := testListing(1, "Erste", "1’000 CHF")
	second := testListing(2, "Zweite", "1’100 CHF")
	third := testListing(3, "Dritte", "1’200 CHF")

	pipeline := &stubPipeline{listings: []domain.Listing{first, second, third}}
	known := &stubKnownRepo{}
	queue := &stubQueue{failOn: domain.ListingFingerprint(2, "1’100 CHF")}

	uc := newTaskUseCase(true, nil, pipeline, known, queue, &stubReporter{})

	err := uc.Execute(context.Background(), "", uuid.New())
	if err == nil {
		t.Fatal("enqueue failure must fail the task for a queue-level retry")
	}

	// Опубликовано только первое объявление; именно его идентичность
	// должна быть зафиксирована, чтобы ретрай не продублировал публикацию
	if len(queue.enqueued) != 1 || queue.enqueued[0].SourceID != 1 {
		t.Fatalf("publication must stop at the first failure, got %+v", queue.enqueued)
	}
	if len(known.seenBatches) != 1 || len(known.seenBatches[0]) != 1 {
		t.Fatalf("only published fingerprints must be marked seen, got %v", known.seenBatches)
	}
	if known.seenBatches[0][0] != domain.ListingFingerprint(1, "1’000 CHF") {
		t.Fatalf("wrong fingerprint marked seen: %v", known.seenBatches[0])
	}
}

func TestProcessSearchTaskFilterNewFailure(t *testing.T) {
	pipeline := &stubPipeline{listings: []domain.Listing{testListing(1, "Wohnung", "1’000 CHF")}}
	known := &stubKnownRepo{filterErr: errors.New("db down")}
	queue := &stubQueue{}

	uc := newTaskUseCase(true, nil, pipeline, known, queue, &stubReporter{})

	if err := uc.Execute(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("storage failure must fail the task for a queue-level retry")
	}
	if len(queue.enqueued) != 0 {
		t.Fatal("nothing must be enqueued when dedup storage is unavailable")
	}
}

func TestProcessSearchTaskReportFailureTolerated(t *testing.T) {
	pipeline := &stubPipeline{listings: []domain.Listing{testListing(1, "Wohnung", "1’000 CHF")}}
	reporter := &stubReporter{err: errors.New("reports queue down")}

	uc := newTaskUseCase(true, nil, pipeline, &stubKnownRepo{}, &stubQueue{}, reporter)

	if err := uc.Execute(context.Background(), "", uuid.New()); err != nil {
		t.Fatalf("report failure must not fail the task: %v", err)
	}
}
