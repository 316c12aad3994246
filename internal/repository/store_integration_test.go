package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"triage-waitlist/config"
	"triage-waitlist/internal/domain/entity"
	domainRepo "triage-waitlist/internal/domain/repository"
	"triage-waitlist/internal/infrastructure/database"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	sharedDB     *gorm.DB
	sharedDBOnce sync.Once
	sharedDBErr  error
)

// getTestDB starts one PostgreSQL container per test run and applies the migrations
func getTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedDBOnce.Do(func() {
		sharedDB, sharedDBErr = setupTestDB()
	})
	if sharedDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedDBErr)
	}

	resetTables(t, sharedDB)
	return sharedDB
}

func setupTestDB() (*gorm.DB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "triage_test",
			"POSTGRES_USER":     "triage",
			"POSTGRES_PASSWORD": "test_password",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	db, err := database.NewPostgresConnection(config.DBConfig{
		Host:         host,
		Port:         port.Port(),
		User:         "triage",
		Password:     "test_password",
		Name:         "triage_test",
		SSLMode:      "disable",
		TimeZone:     "UTC",
		MaxIdleConns: 2,
		MaxOpenConns: 10,
	}, true)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	if err := database.RunMigrations(ctx, sqlDB, "../../migrations", log); err != nil {
		return nil, err
	}

	return db, nil
}

// resetTables empties the mutable tables. TRUNCATE bypasses the row-level
// append-only trigger on action_logs.
func resetTables(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Exec("TRUNCATE patients, action_logs RESTART IDENTITY").Error)
}

func newPatient(code string, priorityID int, arrival time.Time) *entity.Patient {
	return &entity.Patient{
		Code:        code,
		Name:        "Test Patient",
		InjuryType:  entity.InjuryArm,
		PainLevel:   5,
		ArrivalTime: arrival,
		PriorityID:  priorityID,
	}
}

func newAddLog(patient *entity.Patient, at time.Time) *entity.ActionLog {
	newPriorityID := patient.PriorityID
	return &entity.ActionLog{
		PatientID:       patient.ID,
		ActionType:      entity.ActionTypeAddPatient,
		NewPriorityID:   &newPriorityID,
		ActionTimestamp: at,
		Notes:           entity.DefaultNotesAddPatient,
		PatientSnapshot: datatypes.NewJSONType(entity.SnapshotOf(patient)),
	}
}

func TestStore_PrioritiesSeeded(t *testing.T) {
	store := NewStore(getTestDB(t))

	priorities, err := store.Priorities().FindAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultPriorities, priorities)

	missing, err := store.Priorities().FindByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_WaitlistOrder(t *testing.T) {
	store := NewStore(getTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.Patients().Create(ctx, newPatient("LOW", 4, base)))
	require.NoError(t, store.Patients().Create(ctx, newPatient("LAT", 2, base.Add(2*time.Minute))))
	require.NoError(t, store.Patients().Create(ctx, newPatient("EAR", 2, base.Add(time.Minute))))
	require.NoError(t, store.Patients().Create(ctx, newPatient("TIE", 2, base.Add(time.Minute))))
	require.NoError(t, store.Patients().Create(ctx, newPatient("TOP", 1, base.Add(3*time.Minute))))

	patients, err := store.Patients().FindAllSorted(ctx)
	require.NoError(t, err)

	codes := make([]string, len(patients))
	for i, p := range patients {
		codes[i] = p.Code
	}
	assert.Equal(t, []string{"TOP", "EAR", "TIE", "LAT", "LOW"}, codes)

	counts, err := store.Patients().CountByPriority(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{1: 1, 2: 3, 4: 1}, counts)
}

func TestStore_UpdateAndDeleteMissingRow(t *testing.T) {
	store := NewStore(getTestDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, store.Patients().UpdatePriority(ctx, 404, 1), domainRepo.ErrRecordMissing)
	assert.ErrorIs(t, store.Patients().UpdatePainLevel(ctx, 404, 7), domainRepo.ErrRecordMissing)
	assert.ErrorIs(t, store.Patients().Delete(ctx, 404), domainRepo.ErrRecordMissing)

	patient, err := store.Patients().FindByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, patient)
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store := NewStore(getTestDB(t))
	ctx := context.Background()
	errBoom := errors.New("boom")

	err := store.Transaction(ctx, func(tx domainRepo.Store) error {
		patient := newPatient("ABC", 1, time.Now().UTC())
		if err := tx.Patients().Create(ctx, patient); err != nil {
			return err
		}
		if err := tx.ActionLogs().Create(ctx, newAddLog(patient, time.Now().UTC())); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	patients, err := store.Patients().FindAllSorted(ctx)
	require.NoError(t, err)
	assert.Empty(t, patients)

	logs, err := store.ActionLogs().FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestStore_ActionLogsNewestFirstAndSurviveRemoval(t *testing.T) {
	store := NewStore(getTestDB(t))
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	patient := newPatient("ABC", 2, at)
	require.NoError(t, store.Transaction(ctx, func(tx domainRepo.Store) error {
		if err := tx.Patients().Create(ctx, patient); err != nil {
			return err
		}
		return tx.ActionLogs().Create(ctx, newAddLog(patient, at))
	}))

	oldPriorityID := patient.PriorityID
	removal := &entity.ActionLog{
		PatientID:       patient.ID,
		ActionType:      entity.ActionTypeRemovePatient,
		OldPriorityID:   &oldPriorityID,
		ActionTimestamp: at,
		Notes:           entity.DefaultNotesRemovePatient,
		PatientSnapshot: datatypes.NewJSONType(entity.SnapshotOf(patient)),
	}
	require.NoError(t, store.Transaction(ctx, func(tx domainRepo.Store) error {
		if err := tx.ActionLogs().Create(ctx, removal); err != nil {
			return err
		}
		return tx.Patients().Delete(ctx, patient.ID)
	}))

	history, err := store.ActionLogs().FindByPatientID(ctx, patient.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, entity.ActionTypeRemovePatient, history[0].ActionType)
	assert.Equal(t, entity.ActionTypeAddPatient, history[1].ActionType)
	assert.Nil(t, history[0].NewPriorityID)
	assert.Equal(t, "ABC", history[0].PatientSnapshot.Data().Code)
	assert.True(t, at.Equal(history[0].PatientSnapshot.Data().ArrivalTime))
}

func TestStore_ActionLogsAppendOnly(t *testing.T) {
	db := getTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	patient := newPatient("ABC", 1, time.Now().UTC())
	require.NoError(t, store.Patients().Create(ctx, patient))
	require.NoError(t, store.ActionLogs().Create(ctx, newAddLog(patient, time.Now().UTC())))

	err := db.Exec("UPDATE action_logs SET notes = 'tampered'").Error
	assert.ErrorContains(t, err, "append-only")

	err = db.Exec("DELETE FROM action_logs").Error
	assert.ErrorContains(t, err, "append-only")

	logs, err := store.ActionLogs().FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.DefaultNotesAddPatient, logs[0].Notes)
}

func TestStore_ConstraintsRejectBadRows(t *testing.T) {
	store := NewStore(getTestDB(t))
	ctx := context.Background()

	err := store.Patients().Create(ctx, newPatient("ABC", 9, time.Now().UTC()))
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23503", pgErr.Code)

	bad := newPatient("ab1", 1, time.Now().UTC())
	err = store.Patients().Create(ctx, bad)
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "23514", pgErr.Code)
	assert.Equal(t, "patients_code_check", pgErr.ConstraintName)
}
