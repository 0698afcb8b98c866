package calendar

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LautaroLeall/Routine-Calendary/internal/appdata"
	"github.com/LautaroLeall/Routine-Calendary/internal/common"
	"github.com/LautaroLeall/Routine-Calendary/internal/kvstore"
)

func newTestManager(t *testing.T) (*Manager, *appdata.Store) {
	t.Helper()
	data := appdata.NewStore(kvstore.NewMemorySubstrate(), nil, 0, nil)
	return NewManager(data, "u1"), data
}

func TestCreate_WeeklySeedsAllSevenDays(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	cal, err := m.Create(ctx, CreateParams{Type: appdata.CalendarWeekly})
	require.NoError(t, err)

	require.Len(t, cal.Template, 7)
	for day := 0; day < 7; day++ {
		refs, ok := cal.Template[strconv.Itoa(day)]
		require.True(t, ok, "weekday %d slot missing", day)
		require.Empty(t, refs)
	}
	require.Equal(t, DefaultName, cal.Name)
	require.Equal(t, DefaultColor, cal.Color)
	require.Equal(t, cal.CreatedAt, cal.UpdatedAt)

	active, ok := m.Active(ctx)
	require.True(t, ok)
	require.Equal(t, cal.ID, active.ID, "new calendar becomes active")
}

func TestCreate_MonthlyStartsEmpty(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	cal, err := m.Create(ctx, CreateParams{Type: appdata.CalendarMonthly, Name: "Mes"})
	require.NoError(t, err)
	require.Empty(t, cal.Template)
	require.NotNil(t, cal.Template)
}

func TestCreate_ExplicitTemplateWins(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	template := map[string][]appdata.ActivityRef{"1": {{RoutineID: "r1"}}}
	cal, err := m.Create(ctx, CreateParams{Type: appdata.CalendarWeekly, Template: template})
	require.NoError(t, err)
	require.Len(t, cal.Template, 1)

	// Mutating the caller's map afterwards must not leak into storage.
	template["9"] = []appdata.ActivityRef{{RoutineID: "rogue"}}
	require.NotContains(t, m.Calendars(ctx)[cal.ID].Template, "9")
}

func TestCreate_UnknownTypeRejected(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.Create(ctx, CreateParams{Type: "yearly"})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestClone_DeepCopiesAndActivates(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	m.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	original, err := m.Create(ctx, CreateParams{
		Name: "Rutina semanal",
		Type: appdata.CalendarWeekly,
		Template: map[string][]appdata.ActivityRef{
			"1": {{RoutineID: "r1"}},
		},
	})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC) }
	clone, err := m.Clone(ctx, original.ID)
	require.NoError(t, err)

	require.NotEqual(t, original.ID, clone.ID)
	require.Equal(t, "Rutina semanal (copia)", clone.Name)
	require.Equal(t, clone.CreatedAt, clone.UpdatedAt)
	require.True(t, clone.CreatedAt.After(original.CreatedAt), "clone gets fresh timestamps")

	active, ok := m.Active(ctx)
	require.True(t, ok)
	require.Equal(t, clone.ID, active.ID)

	// Mutating the clone's template must never alter the original's.
	newTemplate := map[string][]appdata.ActivityRef{"1": {{RoutineID: "r1"}, {RoutineID: "r2"}}}
	_, err = m.Update(ctx, clone.ID, Patch{Template: &newTemplate})
	require.NoError(t, err)
	require.Len(t, m.Calendars(ctx)[original.ID].Template["1"], 1)
}

func TestClone_MissingID(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	_, err := m.Clone(ctx, "cal_missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_ReassignsActivePointer(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	first, err := m.Create(ctx, CreateParams{Name: "A"})
	require.NoError(t, err)
	second, err := m.Create(ctx, CreateParams{Name: "B"})
	require.NoError(t, err)

	// second is active; deleting it must fall back to the remaining one.
	require.NoError(t, m.Delete(ctx, second.ID))
	active, ok := m.Active(ctx)
	require.True(t, ok)
	require.Equal(t, first.ID, active.ID)

	// Deleting the last calendar clears the pointer.
	require.NoError(t, m.Delete(ctx, first.ID))
	_, ok = m.Active(ctx)
	require.False(t, ok)
	require.Empty(t, m.Calendars(ctx))
}

func TestDelete_NonActiveKeepsPointer(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	first, err := m.Create(ctx, CreateParams{Name: "A"})
	require.NoError(t, err)
	second, err := m.Create(ctx, CreateParams{Name: "B"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, first.ID))
	active, ok := m.Active(ctx)
	require.True(t, ok)
	require.Equal(t, second.ID, active.ID)
}

func TestDelete_MissingID(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	require.ErrorIs(t, m.Delete(ctx, "cal_missing"), common.ErrNotFound)
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	first, err := m.Create(ctx, CreateParams{Name: "A"})
	require.NoError(t, err)
	_, err = m.Create(ctx, CreateParams{Name: "B"})
	require.NoError(t, err)

	cal, err := m.SetActive(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "A", cal.Name)

	active, ok := m.Active(ctx)
	require.True(t, ok)
	require.Equal(t, first.ID, active.ID)

	_, err = m.SetActive(ctx, "cal_missing")
	require.ErrorIs(t, err, common.ErrNotFound)
	active, _ = m.Active(ctx)
	require.Equal(t, first.ID, active.ID, "failed SetActive leaves the pointer alone")
}

func TestUpdate_ShallowMergeRefreshesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	m.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	cal, err := m.Create(ctx, CreateParams{Name: "A"})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }
	name := "Renamed"
	color := "#112233"
	updated, err := m.Update(ctx, cal.ID, Patch{Name: &name, Color: &color})
	require.NoError(t, err)

	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, "#112233", updated.Color)
	require.Equal(t, cal.CreatedAt, updated.CreatedAt, "createdAt immutable")
	require.True(t, updated.UpdatedAt.After(cal.UpdatedAt))
	require.Equal(t, cal.Template, updated.Template, "unpatched fields preserved")

	_, err = m.Update(ctx, "cal_missing", Patch{Name: &name})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestActivePointerInvariant_UnderCreateCloneDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	check := func() {
		t.Helper()
		cals := m.Calendars(ctx)
		active, ok := m.Active(ctx)
		if len(cals) == 0 {
			require.False(t, ok)
			return
		}
		require.True(t, ok)
		require.Contains(t, cals, active.ID)
	}

	a, _ := m.Create(ctx, CreateParams{Name: "A"})
	check()
	b, _ := m.Clone(ctx, a.ID)
	check()
	require.NoError(t, m.Delete(ctx, b.ID))
	check()
	require.NoError(t, m.Delete(ctx, a.ID))
	check()
}

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	created, err := m.SeedDemo(ctx)
	require.NoError(t, err)
	require.True(t, created)

	cals := m.Calendars(ctx)
	require.Len(t, cals, 2)

	active, ok := m.Active(ctx)
	require.True(t, ok)
	require.Equal(t, appdata.CalendarWeekly, active.Type, "weekly demo ends up active")

	// Second run is a no-op.
	created, err = m.SeedDemo(ctx)
	require.NoError(t, err)
	require.False(t, created)
	require.Len(t, m.Calendars(ctx), 2)
}
