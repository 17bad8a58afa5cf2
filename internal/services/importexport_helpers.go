package services

import (
	"strings"
	"time"
)

// csvExportHeader is the fixed column order of the user export.
var csvExportHeader = []string{
	"id", "fullName", "email", "role",
	"phoneNumber", "address", "motherName", "fatherName",
	"parentContact", "schoolCollegeName", "subjects",
	"createdAt", "updatedAt",
}

// parseCSVLine tokenizes one CSV line into fields. A quote toggles quoted
// state; a doubled quote inside a quoted field emits a literal quote; a comma
// outside quotes ends the field.
func parseCSVLine(line string) []string {
	var fields []string
	var buf strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				buf.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			fields = append(fields, buf.String())
			buf.Reset()
		default:
			buf.WriteRune(ch)
		}
	}
	fields = append(fields, buf.String())

	return fields
}

// quoteCSVField wraps a value in double quotes, doubling internal quotes.
func quoteCSVField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// encodeCSVRow renders one row with every field quoted.
func encodeCSVRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = quoteCSVField(f)
	}
	return strings.Join(quoted, ",")
}

// splitCSVLines splits raw CSV text into lines, tolerating CRLF endings.
func splitCSVLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.Split(content, "\n")
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func csvTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// emptyToNil converts a trimmed CSV cell into an optional field value.
func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
