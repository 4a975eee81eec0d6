package tui

import (
	"strings"

	"github.com/bnema/pot-cli/internal/domain"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formKind int

const (
	formLogin formKind = iota
	formRegister
	formProfile
	formSearch
	formNotes
	formCompose
	formConcierge
)

type field struct {
	label string
	input textinput.Model
}

// form is the single active text entry. While one is open every key goes to it.
type form struct {
	kind   formKind
	title  string
	fields []field
	focus  int
	target domain.PairKey
}

func newField(label, value string, secret bool) field {
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 512
	input.SetValue(value)
	if secret {
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	}
	return field{label: label, input: input}
}

func newForm(kind formKind, title string, fields ...field) *form {
	f := &form{kind: kind, title: title, fields: fields}
	f.focusField(0)
	return f
}

func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	for idx := range f.fields {
		f.fields[idx].input.Blur()
	}
	f.focus = i
	return f.fields[i].input.Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(label string) string {
	return strings.TrimSpace(f.raw(label))
}

// raw is the untrimmed value, for passwords.
func (f *form) raw(label string) string {
	for _, fld := range f.fields {
		if fld.label == label {
			return fld.input.Value()
		}
	}
	return ""
}

func (f *form) last() bool {
	return f.focus == len(f.fields)-1
}

func loginForm() *form {
	return newForm(formLogin, "Sign in",
		newField("Email", "", false),
		newField("Password", "", true),
	)
}

func registerForm() *form {
	return newForm(formRegister, "Create account",
		newField("Full name", "", false),
		newField("Email", "", false),
		newField("Password", "", true),
		newField("Title", "", false),
		newField("Organization", "", false),
		newField("Role", string(domain.RoleAttendee), false),
	)
}

func profileForm(draft domain.ProfileFields) *form {
	return newForm(formProfile, "Edit profile",
		newField("Full name", draft.FullName, false),
		newField("Title", draft.Title, false),
		newField("Organization", draft.Organization, false),
		newField("Role", string(draft.Role), false),
		newField("Website", draft.Website, false),
		newField("LinkedIn", draft.LinkedIn, false),
		newField("Bio", draft.Bio, false),
		newField("Focus", strings.Join(draft.Focus, ", "), false),
		newField("Looking for", strings.Join(draft.LookingFor, ", "), false),
	)
}

func searchForm(current string) *form {
	return newForm(formSearch, "Search attendees", newField("Search", current, false))
}

func notesForm(key domain.PairKey, current string) *form {
	f := newForm(formNotes, "Notes for "+key.String(), newField("Notes", current, false))
	f.target = key
	return f
}

func composeForm(peer string) *form {
	return newForm(formCompose, "Message "+peer, newField("Message", "", false))
}

func conciergeForm() *form {
	return newForm(formConcierge, "Ask the concierge", newField("Ask", "", false))
}

func (f *form) registration() domain.Registration {
	return domain.Registration{
		Email:    f.value("Email"),
		Password: f.raw("Password"),
		Profile: domain.ProfileFields{
			FullName:     f.value("Full name"),
			Title:        f.value("Title"),
			Organization: f.value("Organization"),
			Role:         domain.Role(strings.ToLower(f.value("Role"))),
		},
	}
}

func (f *form) profileUpdate() domain.ProfileUpdate {
	return domain.ProfileUpdate{Profile: domain.ProfileFields{
		FullName:     f.value("Full name"),
		Title:        f.value("Title"),
		Organization: f.value("Organization"),
		Role:         domain.Role(strings.ToLower(f.value("Role"))),
		Website:      f.value("Website"),
		LinkedIn:     f.value("LinkedIn"),
		Bio:          f.value("Bio"),
		Focus:        splitList(f.value("Focus")),
		LookingFor:   splitList(f.value("Looking for")),
	}}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
