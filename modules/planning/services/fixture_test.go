package services

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/utilization/modules/planning/domain/plan"
	planpersistence "github.com/iota-uz/utilization/modules/planning/infrastructure/persistence"
	"github.com/iota-uz/utilization/modules/roster/domain/aggregates/member"
	rosterpersistence "github.com/iota-uz/utilization/modules/roster/infrastructure/persistence"
	rosterservices "github.com/iota-uz/utilization/modules/roster/services"
	"github.com/iota-uz/utilization/pkg/docstore/memory"
)

// importClock is Monday of 2025-W34.
var importClock = func() time.Time { return time.Date(2025, 8, 18, 9, 30, 0, 0, time.UTC) }

type planningFixture struct {
	store   *memory.Store
	repo    plan.Repository
	matcher *rosterservices.Matcher
}

func newPlanningFixture(t *testing.T, members ...member.Member) *planningFixture {
	t.Helper()

	roster := memory.New()
	repo := rosterpersistence.NewMemberRepository(roster)
	for _, m := range members {
		require.NoError(t, repo.Save(context.Background(), m))
	}
	store := memory.New()
	return &planningFixture{
		store:   store,
		repo:    planpersistence.NewPlanRepository(store),
		matcher: rosterservices.NewMatcher(repo, rosterpersistence.NewAliasRepository(roster), quietLogger()),
	}
}

func (f *planningFixture) importer(opts ...ImporterOption) *Importer {
	base := []ImporterOption{
		WithClock(importClock),
		WithSuggestions(f.matcher, 3),
	}
	return NewImporter(f.repo, f.matcher, quietLogger(), append(base, opts...)...)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	require.NoError(t, f.DeleteSheet("Sheet1"))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}
