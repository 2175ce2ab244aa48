package domain

import "strings"

// QuestionType enumerates the input kinds the server may declare for a question.
type QuestionType string

const (
	QuestionText   QuestionType = "text"
	QuestionNumber QuestionType = "number"
	QuestionChoice QuestionType = "choice"
)

// QuestionDefinition is one server-declared questionnaire question.
// Definitions are immutable for the lifetime of a form session; rendering
// order is ascending by ID.
type QuestionDefinition struct {
	ID       int          `json:"id"`
	Label    string       `json:"label"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"required"`
	Options  []string     `json:"options,omitempty"` // only for choice questions
}

// Profile is the remote user profile plus the raw questionnaire data the
// backend stores alongside it.
type Profile struct {
	NameFirst         string            `json:"name_first"`
	NameLast          string            `json:"name_last"`
	Email             string            `json:"email"`
	QuestionnaireData map[string]string `json:"questionario_data,omitempty"`
}

// Complete reports whether both name parts are filled in.
func (p Profile) Complete() bool {
	return strings.TrimSpace(p.NameFirst) != "" && strings.TrimSpace(p.NameLast) != ""
}

// QuestionnaireDone reports whether any questionnaire answer is recorded
// server-side. The backend marks completion implicitly: at least one key
// present in questionario_data.
func (p Profile) QuestionnaireDone() bool {
	return len(p.QuestionnaireData) > 0
}

// ProfileSnapshot is the locally cached subset of the profile kept in the
// session store between screens.
type ProfileSnapshot struct {
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
}

// Section is one topical protections block on the home screen. Only Content,
// Expanded and Completed mutate at runtime; Completed is one-way within a
// session.
type Section struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Expanded  bool   `json:"expanded"`
	Completed bool   `json:"completed"`
}

// SectionCatalog returns the fixed set of protections sections, in display
// order. Callers receive a fresh copy they may mutate.
func SectionCatalog() []Section {
	return []Section{
		{Key: "salute", Title: "Salute e Assistenza Sanitaria"},
		{Key: "famiglia", Title: "Famiglia e Relazioni"},
		{Key: "lavoro", Title: "Lavoro e Reddito"},
		{Key: "casa", Title: "Casa e Alloggio"},
		{Key: "istruzione", Title: "Istruzione e Formazione"},
		{Key: "diritti_legali", Title: "Diritti Legali e Previdenza"},
		{Key: "servizi_sociali", Title: "Supporti e Servizi Sociali"},
	}
}

// SectionUpdate is the payload returned by the per-column update endpoint.
type SectionUpdate struct {
	Message string `json:"message"`
	Content string `json:"content"`
}

// Credentials is the sign-in result persisted into the session store.
type Credentials struct {
	UserID int    `json:"user_id"`
	Token  string `json:"token"`
}
