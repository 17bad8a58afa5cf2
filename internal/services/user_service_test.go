package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shikshya-edu/institute-service/internal/config"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/storage"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

func newTestUserService(t *testing.T, repo *mockRepository) (UserService, *events.MockEventPublisher) {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewUserService(repo, store, publisher, config.UploadConfig{MaxSize: 1 << 20}, testLogger(), validator.New())
	return svc, publisher
}

func TestNewUserService(t *testing.T) {
	tests := []struct {
		name string
	}{
		{name: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestUserService(t, newMockRepository())
			if svc == nil {
				t.Fatal("expected service instance")
			}
		})
	}
}

func TestComputeEnrollmentDiff(t *testing.T) {
	tests := []struct {
		name       string
		current    []string
		desired    []string
		wantAdd    []string
		wantRemove []string
	}{
		{
			name:       "overlapping sets",
			current:    []string{"a", "b"},
			desired:    []string{"b", "c"},
			wantAdd:    []string{"c"},
			wantRemove: []string{"a"},
		},
		{
			name:    "identical sets",
			current: []string{"a", "b"},
			desired: []string{"b", "a"},
		},
		{
			name:       "clear everything",
			current:    []string{"a", "b"},
			desired:    nil,
			wantRemove: []string{"a", "b"},
		},
		{
			name:    "from empty",
			current: nil,
			desired: []string{"b", "a"},
			wantAdd: []string{"a", "b"},
		},
		{
			name:       "duplicates collapse",
			current:    []string{"a", "a"},
			desired:    []string{"b", "b", "a"},
			wantAdd:    []string{"b"},
			wantRemove: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotAdd, gotRemove := computeEnrollmentDiff(tt.current, tt.desired)
			if !reflect.DeepEqual(gotAdd, tt.wantAdd) {
				t.Errorf("toAdd = %v, want %v", gotAdd, tt.wantAdd)
			}
			if !reflect.DeepEqual(gotRemove, tt.wantRemove) {
				t.Errorf("toRemove = %v, want %v", gotRemove, tt.wantRemove)
			}
		})
	}
}

func TestSyncEnrollments(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)
	seedSubject(repo, "sub-a", "Algebra")
	seedSubject(repo, "sub-b", "Biology")
	seedSubject(repo, "sub-c", "Chemistry")
	repo.enrollments[enrollmentKey(userID, "sub-a")] = &models.Enrollment{ID: "e1", UserID: userID, SubjectID: "sub-a"}
	repo.enrollments[enrollmentKey(userID, "sub-b")] = &models.Enrollment{ID: "e2", UserID: userID, SubjectID: "sub-b"}

	svc, publisher := newTestUserService(t, repo)

	result, err := svc.SyncEnrollments(context.Background(), userID, &EnrollmentUpdateRequest{
		SubjectIDs: []string{"sub-b", "sub-c"},
	})
	if err != nil {
		t.Fatalf("SyncEnrollments() error = %v", err)
	}
	if !reflect.DeepEqual(result.Added, []string{"sub-c"}) {
		t.Errorf("Added = %v, want [sub-c]", result.Added)
	}
	if !reflect.DeepEqual(result.Removed, []string{"sub-a"}) {
		t.Errorf("Removed = %v, want [sub-a]", result.Removed)
	}
	if len(result.Subjects) != 2 {
		t.Errorf("result lists %d subjects, want 2", len(result.Subjects))
	}

	if _, ok := repo.enrollments[enrollmentKey(userID, "sub-a")]; ok {
		t.Error("sub-a enrollment should be removed")
	}
	if _, ok := repo.enrollments[enrollmentKey(userID, "sub-c")]; !ok {
		t.Error("sub-c enrollment should exist")
	}
	if _, ok := repo.enrollments[enrollmentKey(userID, "sub-b")]; !ok {
		t.Error("sub-b enrollment should be untouched")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeEnrollmentChanged {
		t.Fatalf("published events = %v, want one %s event", published, events.TypeEnrollmentChanged)
	}

	// Same request again converges to a no-op and stays quiet.
	publisher.ClearEvents()
	result, err = svc.SyncEnrollments(context.Background(), userID, &EnrollmentUpdateRequest{
		SubjectIDs: []string{"sub-c", "sub-b"},
	})
	if err != nil {
		t.Fatalf("second SyncEnrollments() error = %v", err)
	}
	if len(result.Added) != 0 || len(result.Removed) != 0 {
		t.Errorf("second sync changed %v/%v, want no changes", result.Added, result.Removed)
	}
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("no-op sync must not publish an event")
	}
}

func TestSyncEnrollmentsDeduplicatesInput(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)
	seedSubject(repo, "sub-a", "Algebra")

	svc, _ := newTestUserService(t, repo)

	result, err := svc.SyncEnrollments(context.Background(), userID, &EnrollmentUpdateRequest{
		SubjectIDs: []string{"sub-a", "sub-a", "sub-a"},
	})
	if err != nil {
		t.Fatalf("SyncEnrollments() error = %v", err)
	}
	if !reflect.DeepEqual(result.Added, []string{"sub-a"}) {
		t.Errorf("Added = %v, want [sub-a]", result.Added)
	}
	if len(repo.enrollments) != 1 {
		t.Errorf("repo holds %d enrollments, want 1", len(repo.enrollments))
	}
}

func TestSyncEnrollmentsUnknownSubject(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)
	seedSubject(repo, "sub-a", "Algebra")
	repo.enrollments[enrollmentKey(userID, "sub-a")] = &models.Enrollment{ID: "e1", UserID: userID, SubjectID: "sub-a"}

	svc, publisher := newTestUserService(t, repo)

	_, err := svc.SyncEnrollments(context.Background(), userID, &EnrollmentUpdateRequest{
		SubjectIDs: []string{"sub-a", "sub-missing"},
	})
	if !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("SyncEnrollments() error = %v, want ErrUnknownSubject", err)
	}
	if len(repo.enrollments) != 1 {
		t.Errorf("rejected sync changed the enrollment set")
	}
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("rejected sync must not publish an event")
	}
}

func TestSyncEnrollmentsUserNotFound(t *testing.T) {
	repo := newMockRepository()
	seedSubject(repo, "sub-a", "Algebra")

	svc, _ := newTestUserService(t, repo)

	_, err := svc.SyncEnrollments(context.Background(), "no-such-user", &EnrollmentUpdateRequest{
		SubjectIDs: []string{"sub-a"},
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("SyncEnrollments() error = %v, want ErrUserNotFound", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)

	svc, _ := newTestUserService(t, repo)

	phone := "12345678"
	name := "Jane D. Doe"
	user, err := svc.UpdateProfile(context.Background(), userID, &ProfileUpdateRequest{
		FullName:    &name,
		PhoneNumber: &phone,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.FullName != name {
		t.Errorf("fullName = %q, want %q", user.FullName, name)
	}
	if user.PhoneNumber == nil || *user.PhoneNumber != phone {
		t.Errorf("phoneNumber = %v, want %q", user.PhoneNumber, phone)
	}
	if user.Email != "jane@example.com" {
		t.Errorf("email = %q, unset fields must not change", user.Email)
	}
}

func TestUpdateProfileReconcilesSubjects(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)
	seedSubject(repo, "sub-a", "Algebra")
	seedSubject(repo, "sub-b", "Biology")
	repo.enrollments[enrollmentKey(userID, "sub-a")] = &models.Enrollment{ID: "e1", UserID: userID, SubjectID: "sub-a"}

	svc, publisher := newTestUserService(t, repo)

	name := "Jane D. Doe"
	desired := []string{"sub-b"}
	user, err := svc.UpdateProfile(context.Background(), userID, &ProfileUpdateRequest{
		FullName:   &name,
		SubjectIDs: &desired,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if user.FullName != name {
		t.Errorf("fullName = %q, want %q", user.FullName, name)
	}
	if _, ok := repo.enrollments[enrollmentKey(userID, "sub-a")]; ok {
		t.Error("sub-a enrollment should be removed")
	}
	if _, ok := repo.enrollments[enrollmentKey(userID, "sub-b")]; !ok {
		t.Error("sub-b enrollment should exist")
	}
	if len(publisher.GetPublishedEvents()) != 1 {
		t.Errorf("published %d events, want 1", len(publisher.GetPublishedEvents()))
	}

	// An update without a subject set leaves enrollments alone.
	publisher.ClearEvents()
	if _, err := svc.UpdateProfile(context.Background(), userID, &ProfileUpdateRequest{FullName: &name}); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if _, ok := repo.enrollments[enrollmentKey(userID, "sub-b")]; !ok {
		t.Error("enrollments must not change when subjectIds is omitted")
	}
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("field-only update must not publish an enrollment event")
	}
}

func TestUpdateProfileUnknownSubjectRollsBack(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)
	seedSubject(repo, "sub-a", "Algebra")

	svc, _ := newTestUserService(t, repo)

	name := "Changed Name"
	desired := []string{"sub-a", "sub-missing"}
	_, err := svc.UpdateProfile(context.Background(), userID, &ProfileUpdateRequest{
		FullName:   &name,
		SubjectIDs: &desired,
	})
	if !errors.Is(err, ErrUnknownSubject) {
		t.Fatalf("UpdateProfile() error = %v, want ErrUnknownSubject", err)
	}
	if repo.users[userID].FullName != "Jane Doe" {
		t.Error("rejected update must not change profile fields")
	}
	if len(repo.enrollments) != 0 {
		t.Error("rejected update must not create enrollments")
	}
}

func TestCompleteProfile(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)
	repo.users[userID].IsVerified = false

	svc, _ := newTestUserService(t, repo)

	mother := "Mary Doe"
	user, err := svc.CompleteProfile(context.Background(), userID, &CompleteProfileRequest{
		PhoneNumber: "12345678",
		Address:     "12 Hill Road",
		MotherName:  &mother,
	})
	if err != nil {
		t.Fatalf("CompleteProfile() error = %v", err)
	}
	if user.PhoneNumber == nil || *user.PhoneNumber != "12345678" {
		t.Errorf("phoneNumber = %v, want 12345678", user.PhoneNumber)
	}
	if !user.IsVerified {
		t.Error("completing the profile must mark the account verified")
	}
	if repo.users[userID].Address == nil || *repo.users[userID].Address != "12 Hill Road" {
		t.Error("address not persisted")
	}

	_, err = svc.CompleteProfile(context.Background(), userID, &CompleteProfileRequest{PhoneNumber: "12345678"})
	if err == nil {
		t.Error("missing address must fail validation")
	}
}

func TestUpdateProfilePicture(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)

	svc, _ := newTestUserService(t, repo)

	user, err := svc.UpdateProfilePicture(context.Background(), userID,
		"me.png", "image/png", 4, strings.NewReader("\x89PNG"))
	if err != nil {
		t.Fatalf("UpdateProfilePicture() error = %v", err)
	}
	if user.ProfilePicURL == nil || !strings.HasPrefix(*user.ProfilePicURL, "/uploads/profile-pics/") {
		t.Errorf("profilePicUrl = %v, want /uploads/profile-pics/ prefix", user.ProfilePicURL)
	}
	if !strings.HasSuffix(*user.ProfilePicURL, "/me.png") {
		t.Errorf("profilePicUrl = %q, want me.png suffix", *user.ProfilePicURL)
	}

	_, err = svc.UpdateProfilePicture(context.Background(), userID,
		"notes.pdf", "application/pdf", 4, strings.NewReader("%PDF"))
	if !errors.Is(err, ErrNotImage) {
		t.Fatalf("UpdateProfilePicture() error = %v, want ErrNotImage", err)
	}
}
