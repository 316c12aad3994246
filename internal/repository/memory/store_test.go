package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"triage-waitlist/internal/domain/entity"
	domainRepo "triage-waitlist/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

func patientAt(code string, priorityID int, offset time.Duration) *entity.Patient {
	return &entity.Patient{
		Code:        code,
		Name:        "Test Patient",
		InjuryType:  entity.InjuryLeg,
		PainLevel:   5,
		ArrivalTime: base.Add(offset),
		PriorityID:  priorityID,
	}
}

func TestStore_CreateAssignsFreshIDs(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	a := patientAt("AAA", 1, 0)
	b := patientAt("BBB", 1, 0)
	require.NoError(t, store.Patients().Create(ctx, a))
	require.NoError(t, store.Patients().Delete(ctx, a.ID))
	require.NoError(t, store.Patients().Create(ctx, b))

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
}

func TestStore_FindAllSortedOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	for _, p := range []*entity.Patient{
		patientAt("LOW", 4, 0),
		patientAt("LAT", 2, 2*time.Minute),
		patientAt("EAR", 2, time.Minute),
		patientAt("TIE", 2, time.Minute),
		patientAt("TOP", 1, 3*time.Minute),
	} {
		require.NoError(t, store.Patients().Create(ctx, p))
	}

	patients, err := store.Patients().FindAllSorted(ctx)
	require.NoError(t, err)

	codes := make([]string, len(patients))
	for i, p := range patients {
		codes[i] = p.Code
	}
	assert.Equal(t, []string{"TOP", "EAR", "TIE", "LAT", "LOW"}, codes)
}

func TestStore_ReadsReturnCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	p := patientAt("ABC", 3, 0)
	require.NoError(t, store.Patients().Create(ctx, p))
	p.PriorityID = 1

	found, err := store.Patients().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.PriorityID)

	found.PriorityID = 2
	again, err := store.Patients().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.PriorityID)

	missing, err := store.Patients().FindByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_MissingRowMutations(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Patients().UpdatePriority(ctx, 5, 1), domainRepo.ErrRecordMissing)
	assert.ErrorIs(t, store.Patients().UpdatePainLevel(ctx, 5, 8), domainRepo.ErrRecordMissing)
	assert.ErrorIs(t, store.Patients().Delete(ctx, 5), domainRepo.ErrRecordMissing)
}

func TestStore_UpdatePainLevel(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	p := patientAt("ABC", 3, 0)
	require.NoError(t, store.Patients().Create(ctx, p))
	require.NoError(t, store.Patients().UpdatePainLevel(ctx, p.ID, 9))

	found, err := store.Patients().FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, found.PainLevel)
	assert.Equal(t, 3, found.PriorityID)
}

func TestStore_TransactionCommitAndRollback(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := store.Transaction(ctx, func(tx domainRepo.Store) error {
		p := patientAt("ABC", 1, 0)
		require.NoError(t, tx.Patients().Create(ctx, p))

		// Visible inside the transaction only
		inside, err := tx.Patients().FindAllSorted(ctx)
		require.NoError(t, err)
		assert.Len(t, inside, 1)
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	patients, err := store.Patients().FindAllSorted(ctx)
	require.NoError(t, err)
	assert.Empty(t, patients)

	require.NoError(t, store.Transaction(ctx, func(tx domainRepo.Store) error {
		return tx.Patients().Create(ctx, patientAt("XYZ", 2, 0))
	}))

	patients, err = store.Patients().FindAllSorted(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	// The rolled back insert still consumed nothing: ids restart from the committed state
	assert.Equal(t, int64(1), patients[0].ID)
}

func TestStore_NestedTransactionActsAsSavepoint(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Transaction(ctx, func(tx domainRepo.Store) error {
		require.NoError(t, tx.Patients().Create(ctx, patientAt("OUT", 1, 0)))

		err := tx.Transaction(ctx, func(inner domainRepo.Store) error {
			require.NoError(t, inner.Patients().Create(ctx, patientAt("INN", 1, 0)))
			return errors.New("inner failed")
		})
		assert.Error(t, err)
		return nil
	}))

	patients, err := store.Patients().FindAllSorted(ctx)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "OUT", patients[0].Code)
}

func TestStore_ActionLogsNewestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	p := 1

	entries := []*entity.ActionLog{
		{PatientID: 1, ActionType: entity.ActionTypeAddPatient, NewPriorityID: &p, ActionTimestamp: base},
		{PatientID: 2, ActionType: entity.ActionTypeAddPatient, NewPriorityID: &p, ActionTimestamp: base.Add(time.Minute)},
		{PatientID: 1, ActionType: entity.ActionTypeRemovePatient, OldPriorityID: &p, ActionTimestamp: base.Add(time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, store.ActionLogs().Create(ctx, e))
	}

	all, err := store.ActionLogs().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{all[0].ID, all[1].ID, all[2].ID})

	history, err := store.ActionLogs().FindByPatientID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.ActionTypeRemovePatient, history[0].ActionType)

	// Returned entries are detached from the stored ones
	*history[0].OldPriorityID = 4
	again, err := store.ActionLogs().FindByPatientID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, *again[0].OldPriorityID)
}

func TestStore_PrioritiesSeeded(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	priorities, err := store.Priorities().FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPriorities, priorities)

	critical, err := store.Priorities().FindByID(ctx, entity.PriorityCritical)
	require.NoError(t, err)
	assert.Equal(t, "Critical", critical.LevelName)

	missing, err := store.Priorities().FindByID(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_ConcurrentTransactionsSerialize(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Patients().Create(ctx, patientAt("ABC", 4, 0)))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Transaction(ctx, func(tx domainRepo.Store) error {
				p, err := tx.Patients().FindByIDForUpdate(ctx, 1)
				if err != nil || p == nil {
					return err
				}
				return tx.ActionLogs().Create(ctx, &entity.ActionLog{
					PatientID:     p.ID,
					ActionType:    entity.ActionTypeChangePriority,
					OldPriorityID: &p.PriorityID,
					NewPriorityID: &p.PriorityID,
				})
			})
		}()
	}
	wg.Wait()

	logs, err := store.ActionLogs().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, logs, 20)
}

func TestStore_CancelledContext(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Transaction(ctx, func(domainRepo.Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
