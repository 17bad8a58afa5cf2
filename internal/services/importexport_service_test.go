package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

func newTestImportExportService(repo *mockRepository) (ImportExportService, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewImportExportService(repo, publisher, testLogger(), validator.New())
	return svc, publisher
}

func TestNewImportExportService(t *testing.T) {
	tests := []struct {
		name string
	}{
		{name: "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewImportExportService(newMockRepository(), events.NewMockEventPublisher(testLogger()), testLogger(), validator.New())
			if svc == nil {
				t.Fatal("expected service instance")
			}
		})
	}
}

func TestParseCSVLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain fields",
			line: "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quoted field with comma",
			line: `"Doe, Jane",jane@example.com`,
			want: []string{"Doe, Jane", "jane@example.com"},
		},
		{
			name: "escaped quotes",
			line: `"say ""hi""",x`,
			want: []string{`say "hi"`, "x"},
		},
		{
			name: "empty fields",
			line: "a,,c",
			want: []string{"a", "", "c"},
		},
		{
			name: "fully quoted row",
			line: `"a","b","c"`,
			want: []string{"a", "b", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCSVLine(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseCSVLine(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestEncodeCSVRowRoundTrip(t *testing.T) {
	fields := []string{`He said "go"`, "a,b", "", "plain"}

	encoded := encodeCSVRow(fields)
	if want := `"He said ""go""","a,b","","plain"`; encoded != want {
		t.Errorf("encodeCSVRow() = %q, want %q", encoded, want)
	}

	if got := parseCSVLine(encoded); !reflect.DeepEqual(got, fields) {
		t.Errorf("round trip = %#v, want %#v", got, fields)
	}
}

func TestImportUsersCSVCreatesAndUpdates(t *testing.T) {
	repo := newMockRepository()
	existingID := seedUser(repo, "old@example.com", "Old Name", models.RoleAdmin)
	existingHash := repo.users[existingID].Password

	svc, publisher := newTestImportExportService(repo)

	csv := strings.Join([]string{
		"fullName,email,phoneNumber",
		`"New Person","new@example.com","12345678"`,
		`"Renamed","old@example.com",""`,
		"",
	}, "\n")

	result, err := svc.ImportUsersCSV(context.Background(), []byte(csv))
	if err != nil {
		t.Fatalf("ImportUsersCSV() error = %v", err)
	}
	if result.Created != 1 || result.Updated != 1 || result.Total != 2 {
		t.Fatalf("result = %+v, want created=1 updated=1 total=2", result)
	}

	updated := repo.users[existingID]
	if updated.FullName != "Renamed" {
		t.Errorf("existing user fullName = %q, want Renamed", updated.FullName)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("existing user role changed to %q, import must keep it", updated.Role)
	}
	if updated.Password != existingHash {
		t.Error("existing user credential hash changed, import must keep it")
	}

	created, err := repo.User().GetByEmail(context.Background(), "new@example.com")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	if created.Role != models.RoleUser {
		t.Errorf("created user role = %q, want USER", created.Role)
	}
	if !created.IsVerified {
		t.Error("created user should be verified")
	}
	if !created.PasswordResetRequired {
		t.Error("created user should require a password reset")
	}
	if created.Password == "" {
		t.Error("created user should hold a placeholder credential")
	}
	if created.PhoneNumber == nil || *created.PhoneNumber != "12345678" {
		t.Errorf("created user phoneNumber = %v, want 12345678", created.PhoneNumber)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeUserImported {
		t.Errorf("published events = %v, want one %s event", published, events.TypeUserImported)
	}
}

func TestImportUsersCSVStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{
			name: "missing email header",
			csv:  "fullName,phoneNumber\nJane,12345678\n",
		},
		{
			name: "header only",
			csv:  "fullName,email\n",
		},
		{
			name: "empty file",
			csv:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			svc, publisher := newTestImportExportService(repo)

			_, err := svc.ImportUsersCSV(context.Background(), []byte(tt.csv))
			if !errors.Is(err, ErrInvalidCSV) {
				t.Fatalf("ImportUsersCSV() error = %v, want ErrInvalidCSV", err)
			}
			if len(repo.users) != 0 {
				t.Errorf("structural failure wrote %d users, want none", len(repo.users))
			}
			if len(publisher.GetPublishedEvents()) != 0 {
				t.Error("structural failure must not publish events")
			}
		})
	}
}

func TestImportUsersCSVSkipsMalformedRows(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newTestImportExportService(repo)

	csv := strings.Join([]string{
		"fullName,email",
		"Jane,jane@example.com",
		"one,two,three extra field",
		`"No Email",""`,
		"",
	}, "\n")

	result, err := svc.ImportUsersCSV(context.Background(), []byte(csv))
	if err != nil {
		t.Fatalf("ImportUsersCSV() error = %v, malformed rows are recoverable", err)
	}
	if result.Created != 1 || result.Total != 1 {
		t.Errorf("result = %+v, want exactly the valid row imported", result)
	}
}

func TestImportUsersCSVRollsBackOnStorageError(t *testing.T) {
	repo := newMockRepository()
	existingID := seedUser(repo, "old@example.com", "Old Name", models.RoleUser)
	repo.userCreateErr = errors.New("disk full")

	svc, publisher := newTestImportExportService(repo)

	csv := strings.Join([]string{
		"fullName,email",
		`"Renamed","old@example.com"`,
		`"New Person","new@example.com"`,
		"",
	}, "\n")

	_, err := svc.ImportUsersCSV(context.Background(), []byte(csv))
	if err == nil {
		t.Fatal("ImportUsersCSV() should fail when a row cannot be stored")
	}

	if got := repo.users[existingID].FullName; got != "Old Name" {
		t.Errorf("existing user fullName = %q, the earlier update must roll back", got)
	}
	if len(repo.users) != 1 {
		t.Errorf("repo holds %d users, want the single seeded user", len(repo.users))
	}
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("failed import must not publish events")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	repo := newMockRepository()
	adminID := seedUser(repo, "admin@example.com", "Site Admin", models.RoleAdmin)
	userID := seedUser(repo, "jane@example.com", "Jane Doe", models.RoleUser)
	adminHash := repo.users[adminID].Password
	userHash := repo.users[userID].Password

	svc, _ := newTestImportExportService(repo)

	file, err := svc.ExportUsersCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportUsersCSV() error = %v", err)
	}

	result, err := svc.ImportUsersCSV(context.Background(), file.Content)
	if err != nil {
		t.Fatalf("ImportUsersCSV() of export output error = %v", err)
	}
	if result.Created != 0 || result.Updated != 2 {
		t.Fatalf("result = %+v, re-importing an export must update existing users only", result)
	}
	if len(repo.users) != 2 {
		t.Fatalf("repo holds %d users after round trip, want 2", len(repo.users))
	}

	if got := repo.users[adminID]; got.Role != models.RoleAdmin || got.Password != adminHash {
		t.Errorf("admin role/hash = %q/%q, round trip must keep both", got.Role, got.Password)
	}
	if got := repo.users[userID]; got.Role != models.RoleUser || got.Password != userHash {
		t.Errorf("user role/hash = %q/%q, round trip must keep both", got.Role, got.Password)
	}
	if got := repo.users[userID].FullName; got != "Jane Doe" {
		t.Errorf("fullName = %q after round trip, want Jane Doe", got)
	}
}

func TestExportUsersCSV(t *testing.T) {
	repo := newMockRepository()
	userID := seedUser(repo, "jane@example.com", `Jane "JJ" Doe`, models.RoleUser)
	seedSubject(repo, "sub-1", "Mathematics")
	seedSubject(repo, "sub-2", "Physics")
	repo.enrollments[enrollmentKey(userID, "sub-1")] = &models.Enrollment{ID: "e1", UserID: userID, SubjectID: "sub-1"}
	repo.enrollments[enrollmentKey(userID, "sub-2")] = &models.Enrollment{ID: "e2", UserID: userID, SubjectID: "sub-2"}

	svc, _ := newTestImportExportService(repo)

	file, err := svc.ExportUsersCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportUsersCSV() error = %v", err)
	}
	if file.Filename != "users.csv" || file.ContentType != "text/csv" {
		t.Errorf("file metadata = %q/%q, want users.csv/text/csv", file.Filename, file.ContentType)
	}

	lines := strings.Split(strings.TrimRight(string(file.Content), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("export has %d lines, want header plus one row", len(lines))
	}

	header := parseCSVLine(lines[0])
	if !reflect.DeepEqual(header, csvExportHeader) {
		t.Errorf("header = %#v, want %#v", header, csvExportHeader)
	}

	row := parseCSVLine(lines[1])
	if len(row) != len(csvExportHeader) {
		t.Fatalf("row has %d fields, want %d", len(row), len(csvExportHeader))
	}
	if row[1] != `Jane "JJ" Doe` {
		t.Errorf("fullName = %q, quoting must survive a round trip", row[1])
	}
	if row[2] != "jane@example.com" {
		t.Errorf("email = %q", row[2])
	}

	subjects := strings.Split(row[10], "; ")
	if len(subjects) != 2 {
		t.Errorf("subjects column = %q, want two names joined by semicolon", row[10])
	}

	if !strings.Contains(lines[1], `"Jane ""JJ"" Doe"`) {
		t.Errorf("raw row %q should double internal quotes", lines[1])
	}
}
