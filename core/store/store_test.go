package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"stpaul-crime/core/store"
	"stpaul-crime/core/store/storetest"

	"github.com/stretchr/testify/require"
)

func TestListCodesOrderedAndFiltered(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.Seed(t, db)
	s := store.NewCodesStore(db, store.DialectSQLite)
	ctx := context.Background()

	all, err := s.ListCodes(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, len(storetest.Codes))
	for i := 1; i < len(all); i++ {
		require.Less(t, all[i-1].Code, all[i].Code)
	}

	some, err := s.ListCodes(ctx, []int64{9954, 300, 4242})
	require.NoError(t, err)
	require.Equal(t, []store.Code{{Code: 300, Type: "Robbery"}, {Code: 9954, Type: "Proactive Police Visit"}}, some)
}

func TestListNeighborhoodsOrderedAndFiltered(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.Seed(t, db)
	s := store.NewNeighborhoodsStore(db, store.DialectSQLite)

	items, err := s.ListNeighborhoods(context.Background(), []int64{17, 1})
	require.NoError(t, err)
	require.Equal(t, []store.Neighborhood{{ID: 1, Name: "Conway/Battlecreek/Highwood"}, {ID: 17, Name: "Downtown"}}, items)

	none, err := s.ListNeighborhoods(context.Background(), []int64{999})
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)
}

func TestListIncidentsNewestFirst(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.Seed(t, db)
	s := store.NewIncidentsStore(db, store.DialectSQLite)

	items, err := s.ListIncidents(context.Background(), store.IncidentFilter{Limit: 500})
	require.NoError(t, err)
	require.Len(t, items, len(storetest.Incidents))
	for i := 1; i < len(items); i++ {
		prev := store.JoinDateTime(items[i-1].Date, items[i-1].Time)
		cur := store.JoinDateTime(items[i].Date, items[i].Time)
		require.Greater(t, prev, cur)
	}
	require.Equal(t, "22000106", items[0].CaseNumber)
	require.Equal(t, "2022-05-06", items[0].Date)
	require.Equal(t, "09:05:00", items[0].Time)
}

func TestListIncidentsFiltersAreConjunctive(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.Seed(t, db)
	s := store.NewIncidentsStore(db, store.DialectSQLite)
	ctx := context.Background()

	items, err := s.ListIncidents(ctx, store.IncidentFilter{Neighborhoods: []int64{11}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "22000105", items[0].CaseNumber)
	require.Equal(t, "22000102", items[1].CaseNumber)
	for _, inc := range items {
		require.EqualValues(t, 11, inc.NeighborhoodNumber)
	}

	items, err = s.ListIncidents(ctx, store.IncidentFilter{Neighborhoods: []int64{11}, Codes: []int64{600}, Grids: []int64{87}, Limit: 500})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "22000101", items[0].CaseNumber)

	items, err = s.ListIncidents(ctx, store.IncidentFilter{Codes: []int64{600}, StartDate: "2022-05-01", EndDate: "2022-05-06", Limit: 500})
	require.NoError(t, err)
	got := make([]string, 0, len(items))
	for _, inc := range items {
		got = append(got, inc.CaseNumber)
	}
	require.Equal(t, []string{"22000104", "22000101"}, got)

	items, err = s.ListIncidents(ctx, store.IncidentFilter{StartDate: "2022-05-04T01:30:00", Limit: 500})
	require.NoError(t, err)
	require.Len(t, items, 2, "start date is an exclusive bound")

	items, err = s.ListIncidents(ctx, store.IncidentFilter{Grids: []int64{1}, Limit: 500})
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
}

func TestCreateIncidentRetrievableAndAudited(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.SeedReference(t, db)
	s := store.NewIncidentsStore(db, store.DialectSQLite)
	audits := store.NewAuditStore(db, store.DialectSQLite)
	ctx := context.Background()

	inc := &store.Incident{CaseNumber: "23200821", Date: "2023-11-01", Time: "04:52:00", Code: 9954, Incident: "Proactive Police Visit", PoliceGrid: 49, NeighborhoodNumber: 5, Block: "32"}
	require.NoError(t, s.CreateIncident(ctx, inc))

	require.Equal(t, inc, storetest.GetIncident(t, db, "23200821"))

	entries, err := audits.List(ctx, store.AuditFilter{Limit: 10})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	require.Equal(t, "incident.create", entries[0].Action)
	require.Contains(t, entries[0].Details, "case_number=23200821")
}

func TestCreateIncidentDuplicateLeavesStorageUnchanged(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.Seed(t, db)
	s := store.NewIncidentsStore(db, store.DialectSQLite)
	ctx := context.Background()

	dup := storetest.Incidents[0]
	dup.Incident = "changed"
	err := s.CreateIncident(ctx, &dup)
	require.ErrorIs(t, err, store.ErrDuplicate)

	got := storetest.GetIncident(t, db, dup.CaseNumber)
	require.Equal(t, storetest.Incidents[0].Incident, got.Incident)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM audit_log WHERE action='incident.create'`).Scan(&count))
	require.Zero(t, count)
}

func TestCreateIncidentUnknownReference(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.SeedReference(t, db)
	s := store.NewIncidentsStore(db, store.DialectSQLite)

	inc := &store.Incident{CaseNumber: "1", Date: "2023-01-01", Time: "00:00:00", Code: 4242, PoliceGrid: 1, NeighborhoodNumber: 1}
	require.ErrorIs(t, s.CreateIncident(context.Background(), inc), store.ErrInvalidReference)

	inc.Code = 600
	inc.NeighborhoodNumber = 99
	require.ErrorIs(t, s.CreateIncident(context.Background(), inc), store.ErrInvalidReference)

	require.Nil(t, storetest.GetIncident(t, db, "1"))
}

func TestConcurrentCreateSameCaseNumberPersistsOneRow(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.SeedReference(t, db)
	s := store.NewIncidentsStore(db, store.DialectSQLite)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.CreateIncident(context.Background(), &store.Incident{
				CaseNumber: "24000001", Date: "2024-01-01", Time: "10:00:00", Code: 600,
				Incident: "Theft", PoliceGrid: 87, NeighborhoodNumber: 11, Block: "1XX MAIN ST",
			})
		}(i)
	}
	wg.Wait()

	success := 0
	for _, err := range errs {
		if err == nil {
			success++
			continue
		}
		require.ErrorIs(t, err, store.ErrDuplicate)
	}
	require.Equal(t, 1, success)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM Incidents WHERE case_number='24000001'`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestDeleteIncident(t *testing.T) {
	db := storetest.NewDB(t)
	storetest.Seed(t, db)
	s := store.NewIncidentsStore(db, store.DialectSQLite)
	ctx := context.Background()

	require.NoError(t, s.DeleteIncident(ctx, "22000103"))
	require.Nil(t, storetest.GetIncident(t, db, "22000103"))

	items, err := s.ListIncidents(ctx, store.IncidentFilter{Limit: 500})
	require.NoError(t, err)
	require.Len(t, items, len(storetest.Incidents)-1)

	require.ErrorIs(t, s.DeleteIncident(ctx, "22000103"), store.ErrNotFound)
	require.ErrorIs(t, s.DeleteIncident(ctx, "does-not-exist"), store.ErrNotFound)

	items, err = s.ListIncidents(ctx, store.IncidentFilter{Limit: 500})
	require.NoError(t, err)
	require.Len(t, items, len(storetest.Incidents)-1)
}

func TestMigrationsIdempotentAndReported(t *testing.T) {
	db := storetest.NewDB(t)
	ctx := context.Background()

	require.NoError(t, store.ApplyMigrations(ctx, db, store.DialectSQLite, nil))

	states, err := store.MigrationStatus(ctx, db, store.DialectSQLite)
	require.NoError(t, err)
	require.Len(t, states, 2)
	for _, st := range states {
		require.True(t, st.Applied, "migration %d should be applied", st.Version)
	}

	entries, err := store.NewAuditStore(db, store.DialectSQLite).List(ctx, store.AuditFilter{Limit: 10})
	require.NoError(t, err)
	actions := 0
	for _, e := range entries {
		if e.Action == "migration.applied" {
			actions++
		}
	}
	require.Equal(t, 2, actions, "a repeated run applies nothing")
}

func TestListIncidentsRequiresLimit(t *testing.T) {
	db := storetest.NewDB(t)
	s := store.NewIncidentsStore(db, store.DialectSQLite)
	_, err := s.ListIncidents(context.Background(), store.IncidentFilter{})
	require.Error(t, err)
}

func TestAuditListFiltersInSQL(t *testing.T) {
	db := storetest.NewDB(t)
	audits := store.NewAuditStore(db, store.DialectSQLite)
	ctx := context.Background()

	require.NoError(t, audits.Log(ctx, "incident.create", "case_number=1"))
	storetest.FillAudit(t, db, "maintenance.run", 5001)

	items, err := audits.List(ctx, store.AuditFilter{Action: "Incident.", Limit: 100})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "incident.create", items[0].Action)

	items, err = audits.List(ctx, store.AuditFilter{Action: "maintenance.run", Limit: 3})
	require.NoError(t, err)
	require.Len(t, items, 3)

	items, err = audits.List(ctx, store.AuditFilter{Action: "incident_", Limit: 10})
	require.NoError(t, err)
	require.Empty(t, items, "underscore is matched literally")

	items, err = audits.List(ctx, store.AuditFilter{Since: time.Now().Add(time.Hour), Limit: 10})
	require.NoError(t, err)
	require.Empty(t, items)

	items, err = audits.List(ctx, store.AuditFilter{Action: "incident.", Since: time.Now().Add(-time.Hour), Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = audits.List(ctx, store.AuditFilter{})
	require.Error(t, err)
}
