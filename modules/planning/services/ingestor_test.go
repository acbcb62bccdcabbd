package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/utilization/modules/planning/domain/format"
	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	"github.com/iota-uz/utilization/modules/planning/domain/upload"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	"github.com/iota-uz/utilization/pkg/blobstore"
	"github.com/iota-uz/utilization/pkg/eventbus"
	"github.com/iota-uz/utilization/pkg/spreadsheet"
)

const testBucket = "uploads-test"

type recordedImport struct {
	format string
	err    error
}

type fakeRecorder struct {
	imports []recordedImport
	rows    [3]int
	ignored int
}

func (r *fakeRecorder) ImportFinished(format string, err error, _ time.Duration) {
	r.imports = append(r.imports, recordedImport{format: format, err: err})
}

func (r *fakeRecorder) Rows(_ string, matched, unmatched, duplicate int) {
	r.rows[0] += matched
	r.rows[1] += unmatched
	r.rows[2] += duplicate
}

func (r *fakeRecorder) EventIgnored() { r.ignored++ }

type ingestFixture struct {
	*planningFixture
	blobs     *blobstore.FS
	recorder  *fakeRecorder
	published []*plan.ImportedEvent
	ingestor  *Ingestor
}

func newIngestFixture(t *testing.T, members ...member.Member) *ingestFixture {
	t.Helper()

	blobs, err := blobstore.NewFS(t.TempDir())
	require.NoError(t, err)
	f := &ingestFixture{
		planningFixture: newPlanningFixture(t, members...),
		blobs:           blobs,
		recorder:        &fakeRecorder{},
	}
	bus := eventbus.NewEventPublisher(quietLogger())
	require.NoError(t, bus.Subscribe(func(e *plan.ImportedEvent) { f.published = append(f.published, e) }))
	f.ingestor = NewIngestor(format.DefaultRegistry(), blobs, f.importer(), bus, f.recorder, quietLogger())
	return f
}

func TestIngestor_ImportsRoutedUpload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newIngestFixture(t, member.New("e1", "mueller|hans", "IT Services", member.Attributes{}))
	blob := buildWorkbook(t, "Auslastung", [][]interface{}{
		{"Name", "CC", "KW 33", "KW 34", "KW 35"},
		{"Müller, Hans", "IT Services", 40, 35, 30},
		{"Doe, Jane", "IT Services", 10, 10, 10},
	})
	const path = "uploads/auslastung/user-7/KW33.xlsx"
	require.NoError(t, f.blobs.Upload(ctx, testBucket, path, blob))

	err := f.ingestor.HandleObjectFinalized(ctx, upload.ObjectFinalized{Bucket: testBucket, Path: path, Size: int64(len(blob))})
	require.NoError(t, err)

	require.Len(t, f.published, 1)
	ev := f.published[0]
	require.Equal(t, "user-7", ev.UserID)
	require.Equal(t, 2, ev.Entries)
	require.Equal(t, path, ev.Plan.SourcePath)

	require.Equal(t, []recordedImport{{format: "auslastung"}}, f.recorder.imports)
	require.Equal(t, [3]int{1, 1, 0}, f.recorder.rows)

	latest, err := f.repo.Latest(ctx, "auslastungen")
	require.NoError(t, err)
	require.Equal(t, ev.Plan.ID, latest.ID)
}

func TestIngestor_IgnoresPathsOutsideUploadLayout(t *testing.T) {
	t.Parallel()

	f := newIngestFixture(t)
	for _, p := range []string{
		"exports/auslastung/u1/file.xlsx",
		"uploads/unknown/u1/file.xlsx",
		"uploads/auslastung/u1/file.csv",
		"uploads/auslastung/file.xlsx",
	} {
		require.NoError(t, f.ingestor.HandleObjectFinalized(context.Background(), upload.ObjectFinalized{Bucket: testBucket, Path: p}))
	}
	require.Equal(t, 4, f.recorder.ignored)
	require.Empty(t, f.recorder.imports)
	require.Empty(t, f.store.Collections())
}

func TestIngestor_RejectsInvalidEvent(t *testing.T) {
	t.Parallel()

	f := newIngestFixture(t)
	err := f.ingestor.HandleObjectFinalized(context.Background(), upload.ObjectFinalized{Path: "uploads/auslastung/u1/a.xlsx"})
	require.ErrorIs(t, err, ErrInvalidEvent)

	err = f.ingestor.HandleObjectFinalized(context.Background(), upload.ObjectFinalized{Bucket: testBucket, Path: "uploads/auslastung/u1/a.xlsx", Size: -1})
	require.ErrorIs(t, err, ErrInvalidEvent)
	require.Empty(t, f.recorder.imports)
}

func TestIngestor_ReturnsFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newIngestFixture(t)

	err := f.ingestor.HandleObjectFinalized(ctx, upload.ObjectFinalized{Bucket: testBucket, Path: "uploads/einsatzplan/u1/missing.xlsx"})
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	const textPath = "uploads/einsatzplan/u1/notes.xlsx"
	require.NoError(t, f.blobs.Upload(ctx, testBucket, textPath, []byte("Name;CC\nDoe, Jane;IT\n")))
	err = f.ingestor.HandleObjectFinalized(ctx, upload.ObjectFinalized{Bucket: testBucket, Path: textPath})
	require.ErrorIs(t, err, spreadsheet.ErrNotWorkbook)

	const wrongSheet = "uploads/einsatzplan/u1/plan.xlsx"
	require.NoError(t, f.blobs.Upload(ctx, testBucket, wrongSheet, buildWorkbook(t, "Auslastung", [][]interface{}{{"Name"}})))
	err = f.ingestor.HandleObjectFinalized(ctx, upload.ObjectFinalized{Bucket: testBucket, Path: wrongSheet})
	require.ErrorIs(t, err, ErrSheetMissing)

	require.Len(t, f.recorder.imports, 3)
	for _, rec := range f.recorder.imports {
		require.Equal(t, "einsatzplan", rec.format)
		require.Error(t, rec.err)
	}
	require.Empty(t, f.published)
	require.Empty(t, f.store.Collections())
}
