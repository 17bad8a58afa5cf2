package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shikshya-edu/institute-service/internal/auth"
	"github.com/shikshya-edu/institute-service/internal/events"
	"github.com/shikshya-edu/institute-service/internal/models"
	"github.com/shikshya-edu/institute-service/internal/repositories"
	"github.com/shikshya-edu/institute-service/internal/validator"
)

type importExportService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// importRow is one parsed CSV data row keyed by recognized header names.
type importRow struct {
	lineNo int
	values map[string]string
}

// parseImport validates the CSV structure and parses the data rows. Rows
// whose field count disagrees with the header are skipped with a warning;
// a missing email header is structural and aborts the run.
func (s *importExportService) parseImport(content []byte) ([]importRow, error) {
	lines := splitCSVLines(string(content))

	// Drop trailing blank lines before the structural check.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", ErrInvalidCSV)
	}

	header := parseCSVLine(lines[0])
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	emailIdx := -1
	for i, h := range header {
		if h == "email" {
			emailIdx = i
			break
		}
	}
	if emailIdx == -1 {
		return nil, fmt.Errorf("%w: header row has no email column", ErrInvalidCSV)
	}

	var rows []importRow
	for n, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := parseCSVLine(line)
		if len(fields) != len(header) {
			s.logger.Warn("Skipping csv row with field count mismatch",
				"line", n+2,
				"expected", len(header),
				"got", len(fields),
			)
			continue
		}

		values := make(map[string]string, len(header))
		for i, h := range header {
			values[h] = strings.TrimSpace(fields[i])
		}
		if values["email"] == "" {
			s.logger.Warn("Skipping csv row with empty email", "line", n+2)
			continue
		}

		rows = append(rows, importRow{lineNo: n + 2, values: values})
	}

	return rows, nil
}

// ImportUsersCSV upserts users by email. New users get the USER role, a
// random placeholder credential, and a password-reset-required flag; existing
// users keep their role and credential hash. Structural failures and storage
// errors roll back every write.
func (s *importExportService) ImportUsersCSV(ctx context.Context, content []byte) (*ImportResult, error) {
	rows, err := s.parseImport(content)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for _, row := range rows {
			email := row.values["email"]

			user, err := tx.User().GetByEmail(ctx, email)
			switch {
			case err == nil:
				s.applyImportRow(user, row.values)
				if err := tx.User().Update(ctx, user); err != nil {
					return fmt.Errorf("line %d: failed to update %s: %w", row.lineNo, email, err)
				}
				result.Updated++

			case repositories.IsNotFoundError(err):
				placeholder, err := auth.GeneratePlaceholderPassword()
				if err != nil {
					return fmt.Errorf("failed to generate placeholder credential: %w", err)
				}
				user := &models.User{
					Email:                 email,
					Role:                  models.RoleUser,
					Password:              placeholder,
					IsVerified:            true,
					PasswordResetRequired: true,
				}
				s.applyImportRow(user, row.values)
				if user.FullName == "" {
					user.FullName = email
				}
				if err := tx.User().Create(ctx, user); err != nil {
					return fmt.Errorf("line %d: failed to create %s: %w", row.lineNo, email, err)
				}
				result.Created++

			default:
				return fmt.Errorf("line %d: failed to look up %s: %w", row.lineNo, email, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Total = result.Created + result.Updated

	s.logger.Info("Users imported",
		"created", result.Created,
		"updated", result.Updated,
	)
	if s.publisher != nil {
		event := events.NewEvent(events.TypeUserImported, events.UserImportedEvent{
			Created: result.Created,
			Updated: result.Updated,
			Total:   result.Total,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
		}
	}

	return result, nil
}

// applyImportRow copies the recognized profile columns onto the user. Role
// and credential hash are never touched here.
func (s *importExportService) applyImportRow(user *models.User, values map[string]string) {
	if v, ok := values["fullName"]; ok && v != "" {
		user.FullName = v
	}
	if v, ok := values["phoneNumber"]; ok {
		user.PhoneNumber = emptyToNil(v)
	}
	if v, ok := values["address"]; ok {
		user.Address = emptyToNil(v)
	}
	if v, ok := values["motherName"]; ok {
		user.MotherName = emptyToNil(v)
	}
	if v, ok := values["fatherName"]; ok {
		user.FatherName = emptyToNil(v)
	}
	if v, ok := values["parentContact"]; ok {
		user.ParentContact = emptyToNil(v)
	}
	if v, ok := values["schoolCollegeName"]; ok {
		user.SchoolCollegeName = emptyToNil(v)
	}
}

// exportRow renders one user as the fixed 13-column export record.
func exportRow(user *models.User) []string {
	names := make([]string, 0, len(user.Enrollments))
	for _, e := range user.Enrollments {
		if e.Subject != nil {
			names = append(names, e.Subject.Name)
		}
	}

	return []string{
		user.ID,
		user.FullName,
		user.Email,
		string(user.Role),
		derefOrEmpty(user.PhoneNumber),
		derefOrEmpty(user.Address),
		derefOrEmpty(user.MotherName),
		derefOrEmpty(user.FatherName),
		derefOrEmpty(user.ParentContact),
		derefOrEmpty(user.SchoolCollegeName),
		strings.Join(names, "; "),
		csvTimestamp(user.CreatedAt),
		csvTimestamp(user.UpdatedAt),
	}
}

func (s *importExportService) ExportUsersCSV(ctx context.Context) (*ExportFile, error) {
	users, err := s.repo.User().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	var b strings.Builder
	b.WriteString(encodeCSVRow(csvExportHeader))
	b.WriteString("\n")
	for _, user := range users {
		b.WriteString(encodeCSVRow(exportRow(user)))
		b.WriteString("\n")
	}

	return &ExportFile{
		Filename:    "users.csv",
		ContentType: "text/csv",
		Content:     []byte(b.String()),
	}, nil
}

func (s *importExportService) ExportUsersXLSX(ctx context.Context) (*ExportFile, error) {
	users, err := s.repo.User().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, name := range csvExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, user := range users {
		for col, value := range exportRow(user) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}

	return &ExportFile{
		Filename:    "users.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}
