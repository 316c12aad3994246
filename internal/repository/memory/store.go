// Package memory provides an in-memory implementation of the waitlist
// store used by tests and ephemeral deployments. Transactions run on a
// cloned copy of the state under the write lock and replace the live state
// only when the callback succeeds.
package memory

import (
	"context"
	"sort"
	"sync"

	"triage-waitlist/internal/domain/entity"
	domainRepo "triage-waitlist/internal/domain/repository"
)

// Compile-time contract assertions
var (
	_ domainRepo.Store = (*Store)(nil)
	_ domainRepo.Store = (*txStore)(nil)
)

type state struct {
	patients      map[int64]entity.Patient
	actionLogs    []entity.ActionLog
	lastPatientID int64
	lastActionID  int64
}

func newState() state {
	return state{patients: map[int64]entity.Patient{}}
}

func (s state) clone() state {
	c := state{
		patients:      make(map[int64]entity.Patient, len(s.patients)),
		actionLogs:    make([]entity.ActionLog, len(s.actionLogs)),
		lastPatientID: s.lastPatientID,
		lastActionID:  s.lastActionID,
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	for i, l := range s.actionLogs {
		c.actionLogs[i] = cloneActionLog(l)
	}
	return c
}

// accessor runs fn against a state with the appropriate locking
type accessor interface {
	read(fn func(st *state) error) error
	write(fn func(st *state) error) error
}

// Store is a concurrency-safe in-memory domainRepo.Store
type Store struct {
	mu         sync.RWMutex
	state      state
	priorities []entity.Priority
}

// NewStore returns an empty store seeded with the default priority tiers
func NewStore() *Store {
	priorities := make([]entity.Priority, len(entity.DefaultPriorities))
	copy(priorities, entity.DefaultPriorities)
	return &Store{
		state:      newState(),
		priorities: priorities,
	}
}

func (s *Store) read(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

func (s *Store) write(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

func (s *Store) Patients() domainRepo.PatientRepository {
	return &patientRepository{acc: s}
}

func (s *Store) ActionLogs() domainRepo.ActionLogRepository {
	return &actionLogRepository{acc: s}
}

func (s *Store) Priorities() domainRepo.PriorityRepository {
	return &priorityRepository{priorities: s.priorities}
}

// Transaction serializes with every other writer on the store.
func (s *Store) Transaction(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txStore{state: s.state.clone(), priorities: s.priorities}
	if err := fn(tx); err != nil {
		return err
	}

	s.state = tx.state
	return nil
}

// txStore is the view handed to a transaction callback. The parent's write
// lock is already held, so it touches its private state without locking.
type txStore struct {
	state      state
	priorities []entity.Priority
}

func (t *txStore) read(fn func(st *state) error) error {
	return fn(&t.state)
}

func (t *txStore) write(fn func(st *state) error) error {
	return fn(&t.state)
}

func (t *txStore) Patients() domainRepo.PatientRepository {
	return &patientRepository{acc: t}
}

func (t *txStore) ActionLogs() domainRepo.ActionLogRepository {
	return &actionLogRepository{acc: t}
}

func (t *txStore) Priorities() domainRepo.PriorityRepository {
	return &priorityRepository{priorities: t.priorities}
}

// Transaction on a txStore behaves like a savepoint.
func (t *txStore) Transaction(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	nested := &txStore{state: t.state.clone(), priorities: t.priorities}
	if err := fn(nested); err != nil {
		return err
	}

	t.state = nested.state
	return nil
}

type patientRepository struct {
	acc accessor
}

func (r *patientRepository) Create(ctx context.Context, patient *entity.Patient) error {
	return r.acc.write(func(st *state) error {
		st.lastPatientID++
		patient.ID = st.lastPatientID
		st.patients[patient.ID] = *patient
		return nil
	})
}

func (r *patientRepository) FindByID(ctx context.Context, id int64) (*entity.Patient, error) {
	var found *entity.Patient
	err := r.acc.read(func(st *state) error {
		if p, ok := st.patients[id]; ok {
			found = &p
		}
		return nil
	})
	return found, err
}

// FindByIDForUpdate needs no row lock: transactions already hold the store's write lock.
func (r *patientRepository) FindByIDForUpdate(ctx context.Context, id int64) (*entity.Patient, error) {
	return r.FindByID(ctx, id)
}

func (r *patientRepository) FindAllSorted(ctx context.Context) ([]entity.Patient, error) {
	var patients []entity.Patient
	err := r.acc.read(func(st *state) error {
		patients = make([]entity.Patient, 0, len(st.patients))
		for _, p := range st.patients {
			patients = append(patients, p)
		}
		return nil
	})
	sortWaitlist(patients)
	return patients, err
}

func (r *patientRepository) CountByPriority(ctx context.Context) (map[int]int64, error) {
	counts := map[int]int64{}
	err := r.acc.read(func(st *state) error {
		for _, p := range st.patients {
			counts[p.PriorityID]++
		}
		return nil
	})
	return counts, err
}

func (r *patientRepository) UpdatePriority(ctx context.Context, id int64, priorityID int) error {
	return r.acc.write(func(st *state) error {
		p, ok := st.patients[id]
		if !ok {
			return domainRepo.ErrRecordMissing
		}
		p.PriorityID = priorityID
		st.patients[id] = p
		return nil
	})
}

func (r *patientRepository) UpdatePainLevel(ctx context.Context, id int64, painLevel int) error {
	return r.acc.write(func(st *state) error {
		p, ok := st.patients[id]
		if !ok {
			return domainRepo.ErrRecordMissing
		}
		p.PainLevel = painLevel
		st.patients[id] = p
		return nil
	})
}

func (r *patientRepository) Delete(ctx context.Context, id int64) error {
	return r.acc.write(func(st *state) error {
		if _, ok := st.patients[id]; !ok {
			return domainRepo.ErrRecordMissing
		}
		delete(st.patients, id)
		return nil
	})
}

type actionLogRepository struct {
	acc accessor
}

func (r *actionLogRepository) Create(ctx context.Context, log *entity.ActionLog) error {
	return r.acc.write(func(st *state) error {
		st.lastActionID++
		log.ID = st.lastActionID
		st.actionLogs = append(st.actionLogs, cloneActionLog(*log))
		return nil
	})
}

func (r *actionLogRepository) FindAll(ctx context.Context) ([]entity.ActionLog, error) {
	return r.find(func(entity.ActionLog) bool { return true })
}

func (r *actionLogRepository) FindByPatientID(ctx context.Context, patientID int64) ([]entity.ActionLog, error) {
	return r.find(func(l entity.ActionLog) bool { return l.PatientID == patientID })
}

func (r *actionLogRepository) find(match func(entity.ActionLog) bool) ([]entity.ActionLog, error) {
	logs := []entity.ActionLog{}
	err := r.acc.read(func(st *state) error {
		for _, l := range st.actionLogs {
			if match(l) {
				logs = append(logs, cloneActionLog(l))
			}
		}
		return nil
	})

	sort.SliceStable(logs, func(i, j int) bool {
		if !logs[i].ActionTimestamp.Equal(logs[j].ActionTimestamp) {
			return logs[i].ActionTimestamp.After(logs[j].ActionTimestamp)
		}
		return logs[i].ID > logs[j].ID
	})
	return logs, err
}

type priorityRepository struct {
	priorities []entity.Priority
}

func (r *priorityRepository) FindAll(ctx context.Context) ([]entity.Priority, error) {
	priorities := make([]entity.Priority, len(r.priorities))
	copy(priorities, r.priorities)
	return priorities, nil
}

func (r *priorityRepository) FindByID(ctx context.Context, id int) (*entity.Priority, error) {
	for _, p := range r.priorities {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func sortWaitlist(patients []entity.Patient) {
	sort.Slice(patients, func(i, j int) bool {
		return patients[i].WaitsBefore(&patients[j])
	})
}

func cloneActionLog(l entity.ActionLog) entity.ActionLog {
	c := l
	c.OldPriorityID = cloneInt(l.OldPriorityID)
	c.NewPriorityID = cloneInt(l.NewPriorityID)
	if l.PerformedBy != nil {
		actor := *l.PerformedBy
		c.PerformedBy = &actor
	}
	return c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
