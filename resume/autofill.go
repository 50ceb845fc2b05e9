package resume

import (
	"strings"

	"github.com/jrsteele09/go-intern-portal/portalapi"
)

// ApplicationDraft is an internship application prefilled from a parsed résumé.
type ApplicationDraft struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Designation string
	Skills      []string
	Degrees     []string
	Experience  []string
	// ExperienceYears is set when the parser reported a total instead of entries.
	ExperienceYears float64
}

// Autofill copies the parsed fields into a draft. The name is split on its last space; a
// single word becomes the first name.
func Autofill(payload *portalapi.ParsedResume) ApplicationDraft {
	if payload == nil {
		return ApplicationDraft{}
	}
	fields := payload.Data
	first, last := splitName(fields.Name)
	return ApplicationDraft{
		FirstName:       first,
		LastName:        last,
		Email:           strings.TrimSpace(fields.Email),
		Phone:           strings.TrimSpace(fields.Phone),
		Designation:     strings.Join(dedupe(fields.Designation), ", "),
		Skills:          dedupe(fields.Skills),
		Degrees:         dedupe(fields.Degree),
		Experience:      []string(fields.Experience.Entries),
		ExperienceYears: fields.Experience.Years,
	}
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

// dedupe drops case-insensitive repeats, keeping the first spelling.
func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
