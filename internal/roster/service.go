package roster

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"classtrack.org/internal/ids"
)

// Service defines roster operations over students and assignments.
type Service interface {
	CreateStudent(ctx context.Context, s Student) (Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	UpdateStudent(ctx context.Context, s Student) (Student, error)
	DeleteStudent(ctx context.Context, id string) error

	CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, studentID string, limit int) ([]Assignment, error)
	UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
}

// InMemory implements Service with in-process concurrency safety.
type InMemory struct {
	mu          sync.RWMutex
	students    map[string]*Student
	assignments map[string]*Assignment
	order       []string // assignment ids in creation order
}

var _ Service = (*InMemory)(nil)

// NewInMemory creates an empty roster.
func NewInMemory() *InMemory {
	return &InMemory{
		students:    make(map[string]*Student),
		assignments: make(map[string]*Assignment),
	}
}

func (s *InMemory) CreateStudent(ctx context.Context, st Student) (Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return Student{}, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	st.ID = ids.New()
	st.CreatedAt = now
	st.UpdatedAt = now
	stored := st
	s.students[st.ID] = &stored
	return st, nil
}

func (s *InMemory) GetStudent(ctx context.Context, id string) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return *st, nil
}

func (s *InMemory) ListStudents(ctx context.Context) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, *st)
	}
	// ULIDs sort by creation time, so order listings by id.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) UpdateStudent(ctx context.Context, st Student) (Student, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.ID == "" || st.Name == "" {
		return Student{}, ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.students[st.ID]
	if !ok {
		return Student{}, ErrNotFound
	}
	stored.Name = st.Name
	stored.Email = st.Email
	stored.UpdatedAt = time.Now().UTC()
	return *stored, nil
}

func (s *InMemory) DeleteStudent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[id]; !ok {
		return ErrNotFound
	}
	delete(s.students, id)

	// Assignments do not outlive their student.
	kept := s.order[:0]
	for _, aid := range s.order {
		if a, ok := s.assignments[aid]; ok && a.StudentID == id {
			delete(s.assignments, aid)
			continue
		}
		kept = append(kept, aid)
	}
	s.order = kept
	return nil
}

func (s *InMemory) CreateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" || strings.TrimSpace(a.StudentID) == "" {
		return Assignment{}, ErrInvalidInput
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[a.StudentID]; !ok {
		return Assignment{}, ErrNotFound
	}
	now := time.Now().UTC()
	a.ID = ids.New()
	a.CreatedAt = now
	a.UpdatedAt = now
	stored := a
	s.assignments[a.ID] = &stored
	s.order = append(s.order, a.ID)
	return a, nil
}

func (s *InMemory) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return *a, nil
}

func (s *InMemory) ListAssignments(ctx context.Context, studentID string, limit int) ([]Assignment, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Assignment
	for _, id := range s.order {
		a, ok := s.assignments[id]
		if !ok {
			continue
		}
		if studentID != "" && a.StudentID != studentID {
			continue
		}
		out = append(out, *a)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *InMemory) UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.ID == "" || a.Title == "" {
		return Assignment{}, ErrInvalidInput
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.assignments[a.ID]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	stored.Title = a.Title
	stored.Description = a.Description
	stored.DueAt = a.DueAt
	stored.Status = a.Status
	stored.UpdatedAt = time.Now().UTC()
	return *stored, nil
}

func (s *InMemory) DeleteAssignment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignments[id]; !ok {
		return ErrNotFound
	}
	delete(s.assignments, id)
	for i, aid := range s.order {
		if aid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
