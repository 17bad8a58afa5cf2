package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// mockRepository is an in-memory Repository used across the service tests.
// WithTransaction snapshots the state and restores it when fn fails, so
// rollback behavior can be asserted.
type mockRepository struct {
	users       map[string]*models.User
	subjects    map[string]*models.Subject
	enrollments map[string]*models.Enrollment
	contacts    map[string]*models.Contact
	carousels   map[string]*models.Carousel
	documents   map[string]*models.Document

	userOrder []string

	// docMu guards documents; the download counter is bumped from a
	// background goroutine.
	docMu sync.Mutex

	// userCreateErr, when set, fails every user create. Used to assert
	// transactional rollback.
	userCreateErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:       make(map[string]*models.User),
		subjects:    make(map[string]*models.Subject),
		enrollments: make(map[string]*models.Enrollment),
		contacts:    make(map[string]*models.Contact),
		carousels:   make(map[string]*models.Carousel),
		documents:   make(map[string]*models.Document),
	}
}

func (m *mockRepository) User() repositories.UserRepository           { return &mockUserRepo{m} }
func (m *mockRepository) Subject() repositories.SubjectRepository     { return &mockSubjectRepo{m} }
func (m *mockRepository) Enrollment() repositories.EnrollmentRepository {
	return &mockEnrollmentRepo{m}
}
func (m *mockRepository) Contact() repositories.ContactRepository   { return &mockContactRepo{m} }
func (m *mockRepository) Carousel() repositories.CarouselRepository { return &mockCarouselRepo{m} }
func (m *mockRepository) Document() repositories.DocumentRepository { return &mockDocumentRepo{m} }
func (m *mockRepository) Dashboard() repositories.DashboardRepository {
	return &mockDashboardRepo{m}
}

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

func (m *mockRepository) snapshot() *mockRepository {
	s := newMockRepository()
	for k, v := range m.users {
		u := *v
		s.users[k] = &u
	}
	for k, v := range m.subjects {
		sub := *v
		s.subjects[k] = &sub
	}
	for k, v := range m.enrollments {
		e := *v
		s.enrollments[k] = &e
	}
	s.userOrder = append([]string(nil), m.userOrder...)
	return s
}

func (m *mockRepository) restore(s *mockRepository) {
	m.users = s.users
	m.subjects = s.subjects
	m.enrollments = s.enrollments
	m.userOrder = s.userOrder
}

// ===== users =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if r.m.userCreateErr != nil {
		return r.m.userCreateErr
	}
	for _, u := range r.m.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()
	copy := *user
	r.m.users[user.ID] = &copy
	r.m.userOrder = append(r.m.userOrder, user.ID)
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *u
	return &copy, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	copy := *user
	r.m.users[user.ID] = &copy
	return nil
}

func (r *mockUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.m.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.users, id)
	for eid, e := range r.m.enrollments {
		if e.UserID == id {
			delete(r.m.enrollments, eid)
		}
	}
	return nil
}

func (r *mockUserRepo) List(ctx context.Context, f repositories.PageFilters) ([]*models.User, int64, error) {
	var all []*models.User
	for _, id := range r.m.userOrder {
		u, ok := r.m.users[id]
		if !ok {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(u.FullName+u.Email), strings.ToLower(f.Search)) {
			continue
		}
		copy := *u
		all = append(all, &copy)
	}
	total := int64(len(all))
	all = page(all, f)
	return all, total, nil
}

func (r *mockUserRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	var all []*models.User
	for _, id := range r.m.userOrder {
		u, ok := r.m.users[id]
		if !ok {
			continue
		}
		copy := *u
		copy.Enrollments = nil
		for _, e := range r.m.enrollments {
			if e.UserID != u.ID {
				continue
			}
			ec := *e
			if sub, ok := r.m.subjects[e.SubjectID]; ok {
				sc := *sub
				ec.Subject = &sc
			}
			copy.Enrollments = append(copy.Enrollments, ec)
		}
		all = append(all, &copy)
	}
	return all, nil
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range r.m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ===== subjects =====

type mockSubjectRepo struct{ m *mockRepository }

func (r *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject) error {
	for _, s := range r.m.subjects {
		if s.Name == subject.Name {
			return repositories.ErrDuplicate
		}
	}
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	copy := *subject
	r.m.subjects[subject.ID] = &copy
	return nil
}

func (r *mockSubjectRepo) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	s, ok := r.m.subjects[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *s
	return &copy, nil
}

func (r *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject) error {
	if _, ok := r.m.subjects[subject.ID]; !ok {
		return repositories.ErrNotFound
	}
	copy := *subject
	r.m.subjects[subject.ID] = &copy
	return nil
}

func (r *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.m.subjects[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.subjects, id)
	return nil
}

func (r *mockSubjectRepo) List(ctx context.Context, f repositories.PageFilters) ([]*models.Subject, int64, error) {
	var all []*models.Subject
	for _, s := range r.m.subjects {
		if f.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Search)) {
			continue
		}
		copy := *s
		all = append(all, &copy)
	}
	total := int64(len(all))
	all = page(all, f)
	return all, total, nil
}

func (r *mockSubjectRepo) ListByUser(ctx context.Context, userID string, f repositories.PageFilters) ([]*models.Subject, int64, error) {
	var all []*models.Subject
	for _, e := range r.m.enrollments {
		if e.UserID != userID {
			continue
		}
		if s, ok := r.m.subjects[e.SubjectID]; ok {
			copy := *s
			all = append(all, &copy)
		}
	}
	total := int64(len(all))
	all = page(all, f)
	return all, total, nil
}

// ===== enrollments =====

type mockEnrollmentRepo struct{ m *mockRepository }

func enrollmentKey(userID, subjectID string) string {
	return userID + "/" + subjectID
}

func (r *mockEnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	key := enrollmentKey(e.UserID, e.SubjectID)
	if _, ok := r.m.enrollments[key]; ok {
		return repositories.ErrDuplicate
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	copy := *e
	r.m.enrollments[key] = &copy
	return nil
}

func (r *mockEnrollmentRepo) Find(ctx context.Context, userID, subjectID string) (*models.Enrollment, error) {
	e, ok := r.m.enrollments[enrollmentKey(userID, subjectID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *e
	return &copy, nil
}

func (r *mockEnrollmentRepo) ListSubjectIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	for _, e := range r.m.enrollments {
		if e.UserID == userID {
			ids = append(ids, e.SubjectID)
		}
	}
	return ids, nil
}

func (r *mockEnrollmentRepo) DeleteByUserAndSubjects(ctx context.Context, userID string, subjectIDs []string) error {
	for _, sid := range subjectIDs {
		delete(r.m.enrollments, enrollmentKey(userID, sid))
	}
	return nil
}

func (r *mockEnrollmentRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.m.enrollments)), nil
}

func (r *mockEnrollmentRepo) ListEnrolledUsers(ctx context.Context, f repositories.PageFilters) ([]repositories.EnrolledUserRow, int64, error) {
	byUser := make(map[string]*repositories.EnrolledUserRow)
	for _, e := range r.m.enrollments {
		row, ok := byUser[e.UserID]
		if !ok {
			row = &repositories.EnrolledUserRow{UserID: e.UserID, EnrolledAt: e.CreatedAt}
			if u, found := r.m.users[e.UserID]; found {
				row.FullName = u.FullName
				row.Email = u.Email
			}
			byUser[e.UserID] = row
		}
		if s, found := r.m.subjects[e.SubjectID]; found {
			row.SubjectNames = append(row.SubjectNames, s.Name)
		}
	}

	var rows []repositories.EnrolledUserRow
	for _, row := range byUser {
		rows = append(rows, *row)
	}
	return rows, int64(len(rows)), nil
}

// ===== contacts =====

type mockContactRepo struct{ m *mockRepository }

func (r *mockContactRepo) Create(ctx context.Context, c *models.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	copy := *c
	r.m.contacts[c.ID] = &copy
	return nil
}

func (r *mockContactRepo) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	c, ok := r.m.contacts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (r *mockContactRepo) Update(ctx context.Context, c *models.Contact) error {
	if _, ok := r.m.contacts[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	copy := *c
	r.m.contacts[c.ID] = &copy
	return nil
}

func (r *mockContactRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.m.contacts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.contacts, id)
	return nil
}

func (r *mockContactRepo) List(ctx context.Context, f repositories.PageFilters) ([]*models.Contact, int64, error) {
	var all []*models.Contact
	for _, c := range r.m.contacts {
		copy := *c
		all = append(all, &copy)
	}
	total := int64(len(all))
	all = page(all, f)
	return all, total, nil
}

// ===== carousels =====

type mockCarouselRepo struct{ m *mockRepository }

func (r *mockCarouselRepo) Create(ctx context.Context, c *models.Carousel) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	copy := *c
	r.m.carousels[c.ID] = &copy
	return nil
}

func (r *mockCarouselRepo) GetByID(ctx context.Context, id string) (*models.Carousel, error) {
	c, ok := r.m.carousels[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (r *mockCarouselRepo) Update(ctx context.Context, c *models.Carousel) error {
	if _, ok := r.m.carousels[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	copy := *c
	r.m.carousels[c.ID] = &copy
	return nil
}

func (r *mockCarouselRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.m.carousels[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.carousels, id)
	return nil
}

func (r *mockCarouselRepo) List(ctx context.Context, f repositories.PageFilters) ([]*models.Carousel, int64, error) {
	var all []*models.Carousel
	for _, c := range r.m.carousels {
		copy := *c
		all = append(all, &copy)
	}
	total := int64(len(all))
	all = page(all, f)
	return all, total, nil
}

// ===== documents =====

type mockDocumentRepo struct{ m *mockRepository }

func (r *mockDocumentRepo) Create(ctx context.Context, d *models.Document) error {
	r.m.docMu.Lock()
	defer r.m.docMu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	copy := *d
	r.m.documents[d.ID] = &copy
	return nil
}

func (r *mockDocumentRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	r.m.docMu.Lock()
	defer r.m.docMu.Unlock()
	d, ok := r.m.documents[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copy := *d
	return &copy, nil
}

func (r *mockDocumentRepo) Delete(ctx context.Context, id string) error {
	r.m.docMu.Lock()
	defer r.m.docMu.Unlock()
	if _, ok := r.m.documents[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.documents, id)
	return nil
}

func (r *mockDocumentRepo) List(ctx context.Context, f repositories.PageFilters) ([]*models.Document, int64, error) {
	r.m.docMu.Lock()
	defer r.m.docMu.Unlock()
	var all []*models.Document
	for _, d := range r.m.documents {
		copy := *d
		all = append(all, &copy)
	}
	total := int64(len(all))
	all = page(all, f)
	return all, total, nil
}

func (r *mockDocumentRepo) ListByUploader(ctx context.Context, uploaderID string, f repositories.PageFilters) ([]*models.Document, int64, error) {
	r.m.docMu.Lock()
	defer r.m.docMu.Unlock()
	var all []*models.Document
	for _, d := range r.m.documents {
		if d.UploadedByID != uploaderID {
			continue
		}
		copy := *d
		all = append(all, &copy)
	}
	total := int64(len(all))
	all = page(all, f)
	return all, total, nil
}

func (r *mockDocumentRepo) IncrementDownloadCount(ctx context.Context, id string) error {
	r.m.docMu.Lock()
	defer r.m.docMu.Unlock()
	d, ok := r.m.documents[id]
	if !ok {
		return repositories.ErrNotFound
	}
	d.DownloadCount++
	return nil
}

// ===== dashboard =====

type mockDashboardRepo struct{ m *mockRepository }

func (r *mockDashboardRepo) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(r.m.users)), nil
}

func (r *mockDashboardRepo) CountSubjects(ctx context.Context) (int64, error) {
	return int64(len(r.m.subjects)), nil
}

func (r *mockDashboardRepo) CountContacts(ctx context.Context) (int64, error) {
	return int64(len(r.m.contacts)), nil
}

func (r *mockDashboardRepo) CountEnrollments(ctx context.Context) (int64, error) {
	return int64(len(r.m.enrollments)), nil
}

func (r *mockDashboardRepo) RecentUsers(ctx context.Context, limit int) ([]*models.User, error) {
	var all []*models.User
	for i := len(r.m.userOrder) - 1; i >= 0 && len(all) < limit; i-- {
		if u, ok := r.m.users[r.m.userOrder[i]]; ok {
			copy := *u
			all = append(all, &copy)
		}
	}
	return all, nil
}

func (r *mockDashboardRepo) UsersByRole(ctx context.Context) ([]repositories.RoleCount, error) {
	counts := make(map[models.UserRole]int64)
	for _, u := range r.m.users {
		counts[u.Role]++
	}
	var out []repositories.RoleCount
	for role, count := range counts {
		out = append(out, repositories.RoleCount{Role: role, Count: count})
	}
	return out, nil
}

func (r *mockDashboardRepo) SignupsSince(ctx context.Context, cutoff time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, u := range r.m.users {
		if !u.CreatedAt.Before(cutoff) {
			out = append(out, u.CreatedAt)
		}
	}
	return out, nil
}

// page applies limit/offset to a slice.
func page[T any](items []T, f repositories.PageFilters) []T {
	if f.Offset > 0 {
		if f.Offset >= len(items) {
			return nil
		}
		items = items[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(items) {
		items = items[:f.Limit]
	}
	return items
}

// seedSubject inserts a subject with a fixed id.
func seedSubject(m *mockRepository, id, name string) {
	m.subjects[id] = &models.Subject{ID: id, Name: name}
}

// seedUser inserts a user and returns its id.
func seedUser(m *mockRepository, email, fullName string, role models.UserRole) string {
	id := uuid.NewString()
	m.users[id] = &models.User{
		ID:        id,
		Email:     email,
		FullName:  fullName,
		Role:      role,
		Password:  "hash-" + email,
		CreatedAt: time.Now(),
	}
	m.userOrder = append(m.userOrder, id)
	return id
}

var _ repositories.Repository = (*mockRepository)(nil)
