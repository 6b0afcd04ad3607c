package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/school"
)

// memStore is an in-memory stand-in for PostgreSQL. Transactions are serialized
// and roll back by restoring a snapshot, which mirrors row locking closely enough
// for service tests.
type memStore struct {
	txMu sync.Mutex

	mu       sync.Mutex
	seq      int
	records  map[string]attendance.Record
	requests map[string]attendance.EarlyDepartureRequest
	configs  map[string]school.AttendanceConfig

	failAttendanceUpdate error
}

func newMemStore() *memStore {
	return &memStore{
		records:  make(map[string]attendance.Record),
		requests: make(map[string]attendance.EarlyDepartureRequest),
		configs:  make(map[string]school.AttendanceConfig),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) seedRecord(rec attendance.Record) attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = s.nextID("att")
	}
	s.records[rec.ID] = rec
	return rec
}

func (s *memStore) record(id string) attendance.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[id]
}

func (s *memStore) request(id string) attendance.EarlyDepartureRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

func (s *memStore) countRecords() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ---- database.Transactor ----

type memTx struct{ s *memStore }

type memTxKey struct{}

func (t memTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	records := make(map[string]attendance.Record, len(t.s.records))
	for k, v := range t.s.records {
		records[k] = v
	}
	requests := make(map[string]attendance.EarlyDepartureRequest, len(t.s.requests))
	for k, v := range t.s.requests {
		requests[k] = v
	}
	t.s.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		t.s.mu.Lock()
		t.s.records = records
		t.s.requests = requests
		t.s.mu.Unlock()
		return err
	}
	return nil
}

// ---- school.ConfigRepository ----

type memConfigRepo struct{ s *memStore }

func (r memConfigRepo) GetAttendanceConfig(_ context.Context, schoolID string) (school.AttendanceConfig, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cfg, ok := r.s.configs[schoolID]
	if !ok {
		return school.AttendanceConfig{}, school.ErrConfigNotFound
	}
	return cfg, nil
}

// ---- attendance.AttendanceRepository ----

type memAttendanceRepo struct{ s *memStore }

func sameDay(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

func (r memAttendanceRepo) UpsertCheckIn(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for id, existing := range r.s.records {
		if existing.TeacherID != rec.TeacherID || !sameDay(existing.Date, rec.Date) {
			continue
		}
		if existing.CheckInTime != nil || existing.SchoolID != rec.SchoolID {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		existing.CheckInTime = rec.CheckInTime
		existing.ExpectedCheckInTime = rec.ExpectedCheckInTime
		existing.ExpectedCheckOutTime = rec.ExpectedCheckOutTime
		existing.Status = rec.Status
		existing.IsLate = rec.IsLate
		existing.LateMinutes = rec.LateMinutes
		if rec.Notes != nil {
			existing.Notes = rec.Notes
		}
		existing.UpdatedAt = now
		r.s.records[id] = existing
		return existing, nil
	}

	rec.ID = r.s.nextID("att")
	rec.CreatedAt = now
	rec.UpdatedAt = now
	r.s.records[rec.ID] = rec
	return rec, nil
}

func (r memAttendanceRepo) GetByID(_ context.Context, id string, schoolID string) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.records[id]
	if !ok || rec.SchoolID != schoolID {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return rec, nil
}

func (r memAttendanceRepo) GetByIDForUpdate(ctx context.Context, id string, schoolID string) (attendance.Record, error) {
	return r.GetByID(ctx, id, schoolID)
}

func (r memAttendanceRepo) GetByTeacherAndDate(_ context.Context, teacherID string, date time.Time, schoolID string) (*attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.records {
		if rec.TeacherID == teacherID && rec.SchoolID == schoolID && sameDay(rec.Date, date) {
			found := rec
			return &found, nil
		}
	}
	return nil, nil
}

func (r memAttendanceRepo) GetByTeacherAndDateForUpdate(ctx context.Context, teacherID string, date time.Time, schoolID string) (*attendance.Record, error) {
	return r.GetByTeacherAndDate(ctx, teacherID, date, schoolID)
}

func (r memAttendanceRepo) Update(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failAttendanceUpdate != nil {
		return attendance.Record{}, r.s.failAttendanceUpdate
	}
	stored, ok := r.s.records[rec.ID]
	if !ok || stored.SchoolID != rec.SchoolID {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	stored.CheckOutTime = rec.CheckOutTime
	stored.Status = rec.Status
	stored.IsEarlyDeparture = rec.IsEarlyDeparture
	stored.EarlyMinutes = rec.EarlyMinutes
	stored.IsManualOverride = rec.IsManualOverride
	stored.ManualReason = rec.ManualReason
	stored.OverrideBy = rec.OverrideBy
	stored.OverrideAt = rec.OverrideAt
	stored.Notes = rec.Notes
	stored.UpdatedAt = time.Now()
	r.s.records[rec.ID] = stored
	return stored, nil
}

func (r memAttendanceRepo) List(_ context.Context, filter attendance.AttendanceFilter, schoolID string) ([]attendance.Record, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []attendance.Record
	for _, rec := range r.s.records {
		if rec.SchoolID != schoolID {
			continue
		}
		if filter.TeacherID != nil && rec.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.Status != nil && string(rec.Status) != *filter.Status {
			continue
		}
		if filter.Date != nil && rec.Date.Format(dateLayout) != *filter.Date {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	total := int64(len(matched))
	start := min((filter.Page-1)*filter.Limit, len(matched))
	end := min(start+filter.Limit, len(matched))
	return matched[start:end], total, nil
}

func (r memAttendanceRepo) ListRange(_ context.Context, schoolID string, teacherID *string, from, to *time.Time) ([]attendance.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []attendance.Record
	for _, rec := range r.s.records {
		if rec.SchoolID != schoolID || (teacherID != nil && rec.TeacherID != *teacherID) {
			continue
		}
		day := rec.Date.Format(dateLayout)
		if from != nil && day < from.Format(dateLayout) {
			continue
		}
		if to != nil && day > to.Format(dateLayout) {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !sameDay(matched[i].Date, matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].TeacherID < matched[j].TeacherID
	})
	return matched, nil
}

// ---- attendance.EarlyDepartureRepository ----

type memEarlyDepartureRepo struct{ s *memStore }

func (r memEarlyDepartureRepo) Create(_ context.Context, req attendance.EarlyDepartureRequest) (attendance.EarlyDepartureRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.requests {
		if existing.AttendanceID == req.AttendanceID && existing.IsPending() {
			return attendance.EarlyDepartureRequest{}, attendance.ErrDuplicatePendingRequest
		}
	}
	now := time.Now()
	req.ID = r.s.nextID("edr")
	req.Status = attendance.EarlyDeparturePending
	req.CreatedAt = now
	req.UpdatedAt = now
	r.s.requests[req.ID] = req
	return req, nil
}

func (r memEarlyDepartureRepo) GetByID(_ context.Context, id string, schoolID string) (attendance.EarlyDepartureRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok || req.SchoolID != schoolID {
		return attendance.EarlyDepartureRequest{}, attendance.ErrRequestNotFound
	}
	return req, nil
}

func (r memEarlyDepartureRepo) GetByIDForUpdate(ctx context.Context, id string, schoolID string) (attendance.EarlyDepartureRequest, error) {
	return r.GetByID(ctx, id, schoolID)
}

func (r memEarlyDepartureRepo) GetPendingByAttendanceID(_ context.Context, attendanceID string, schoolID string) (*attendance.EarlyDepartureRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, req := range r.s.requests {
		if req.AttendanceID == attendanceID && req.SchoolID == schoolID && req.IsPending() {
			found := req
			return &found, nil
		}
	}
	return nil, nil
}

func (r memEarlyDepartureRepo) Update(_ context.Context, req attendance.EarlyDepartureRequest) (attendance.EarlyDepartureRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.requests[req.ID]
	if !ok || stored.SchoolID != req.SchoolID {
		return attendance.EarlyDepartureRequest{}, attendance.ErrRequestNotFound
	}
	stored.Status = req.Status
	stored.ApprovedBy = req.ApprovedBy
	stored.ApprovedAt = req.ApprovedAt
	stored.RejectionReason = req.RejectionReason
	stored.UpdatedAt = time.Now()
	r.s.requests[req.ID] = stored
	return stored, nil
}

func (r memEarlyDepartureRepo) List(_ context.Context, filter attendance.EarlyDepartureFilter, schoolID string) ([]attendance.EarlyDepartureRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []attendance.EarlyDepartureRequest
	for _, req := range r.s.requests {
		if req.SchoolID != schoolID {
			continue
		}
		if filter.TeacherID != nil && req.TeacherID != *filter.TeacherID {
			continue
		}
		if filter.Status != nil && string(req.Status) != *filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
