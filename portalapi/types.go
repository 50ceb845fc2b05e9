package portalapi

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Identity is the user record returned by /verify-token. Login only knows the identifier the
// user typed, so a login-built Identity carries just Email.
type Identity struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Subject  string `json:"sub,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// Identifier is the first of email, username and sub that is set.
func (i Identity) Identifier() string {
	for _, v := range []string{i.Email, i.Username, i.Subject} {
		if v != "" {
			return v
		}
	}
	return ""
}

// DisplayName prefers the full name, falling back to the identifier.
func (i Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Identifier()
}

type SignupResult struct {
	Message string         `json:"message,omitempty"`
	Raw     map[string]any `json:"-"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ParsedResume is the full /upload-resume payload. Callers pick out the fields they need
// (see resume.Autofill); Raw keeps the untouched body.
//
// Only the top level has to be a JSON object. Every field is read leniently: a field whose
// shape does not match is left empty instead of failing the upload.
type ParsedResume struct {
	Status      string
	Message     string
	CandidateID string
	Data        ResumeFields
	Raw         json.RawMessage
}

func (p *ParsedResume) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	*p = ParsedResume{
		Status:      Text(decodeAny(top["status"])),
		Message:     Text(decodeAny(top["message"])),
		CandidateID: Text(decodeAny(top["candidate_id"])),
		Raw:         append(json.RawMessage(nil), data...),
	}
	if raw, ok := top["data"]; ok {
		if err := p.Data.UnmarshalJSON(raw); err != nil {
			return err
		}
	}
	return nil
}

type ResumeFields struct {
	Name        string
	Email       string
	Phone       string
	Designation StringList
	Skills      StringList
	Degree      StringList
	Experience  Experience
}

// UnmarshalJSON never rejects a field shape. A "data" value that is not an object leaves
// every field empty.
func (f *ResumeFields) UnmarshalJSON(data []byte) error {
	*f = ResumeFields{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	f.Name = Text(decodeAny(fields["name"]))
	f.Email = Text(decodeAny(fields["email"]))
	f.Phone = Text(decodeAny(fields["phone"]))
	f.Designation = toStringList(decodeAny(fields["designation"]))
	f.Skills = toStringList(decodeAny(fields["skills"]))
	f.Degree = toStringList(decodeAny(fields["degree"]))
	f.Experience = toExperience(decodeAny(fields["experience"]))
	return nil
}

// Experience is either a total in years (the parser's total_experience) or a list of
// entries.
type Experience struct {
	Years   float64
	Entries StringList
}

func (e *Experience) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = toExperience(v)
	return nil
}

func toExperience(v any) Experience {
	switch v := v.(type) {
	case float64:
		return Experience{Years: v}
	case string:
		if years, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return Experience{Years: years}
		}
		return Experience{Entries: splitList(v)}
	default:
		return Experience{Entries: toStringList(v)}
	}
}

// StringList accepts a JSON array, a comma separated string or null. Entries that are not
// strings are rendered as text (see Text).
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = toStringList(v)
	return nil
}

func toStringList(v any) StringList {
	switch v := v.(type) {
	case nil:
		return nil
	case string:
		return splitList(v)
	case []any:
		var out StringList
		for _, item := range v {
			if s := Text(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := Text(v); s != "" {
			return StringList{s}
		}
		return nil
	}
}

// Text renders a decoded JSON value for display. Objects become "key: value" pairs in key
// order, arrays are joined with ", ".
func Text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := Text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := Text(v[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// decodeAny returns nil for a missing or undecodable value.
func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func splitList(s string) StringList {
	var out StringList
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
