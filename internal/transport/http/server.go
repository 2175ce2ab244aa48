// Package http hosts a development stand-in for the remote PHP API: same
// routes, same envelope, backed by a pluggable store. It exists so the client
// workflows can run end-to-end without the production backend.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/unilater/galeaz/internal/domain"
)

// Account is a stored dev-server user.
type Account struct {
	ID           int
	Email        string
	PasswordHash string
	NameFirst    string
	NameLast     string
}

// Backend abstracts dev-server persistence (in-memory, Postgres).
type Backend interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (int, error)
	AccountByEmail(ctx context.Context, email string) (Account, bool, error)
	AccountByID(ctx context.Context, id int) (Account, bool, error)
	UpdateNames(ctx context.Context, id int, first, last string) error

	Questions(ctx context.Context) ([]domain.QuestionDefinition, error)
	Answers(ctx context.Context, userID int) (map[string]string, error)
	SaveAnswers(ctx context.Context, userID int, answers map[string]string) error

	Completions(ctx context.Context, userID int) (map[string]bool, error)
	SetCompletion(ctx context.Context, userID int, column string) error
	Contents(ctx context.Context, userID int) (map[string]string, error)
	SetContent(ctx context.Context, userID int, column, content string) error
}

// Handler serves the PHP-style API surface.
type Handler struct {
	backend Backend
	log     *zap.Logger

	mu     sync.Mutex
	tokens map[string]int // token -> user id
}

func NewHandler(backend Backend, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{backend: backend, log: log, tokens: make(map[string]int)}
}

// Router wires the API routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login.php", h.login)
		r.Post("/signup.php", h.signup)
		r.Get("/profile.php", h.profile)
		r.Post("/profile_update.php", h.updateProfile)
		r.Get("/get_domande.php", h.questions)
		r.Get("/questionario.php", h.answers)
		r.Post("/questionario.php", h.submitAnswers)
		r.Get("/scrivi_tutele.php", h.writeProtections)
		r.Get("/tutele_completate.php", h.completions)
		r.Post("/update_colonna.php", h.updateColumn)
		r.Post("/tutela_completata.php", h.markCompleted)
		r.Get("/openai/get_tutele.php", h.contents)
		r.Get("/openai/inizializza.php", h.aiInitialize)
		r.Get("/openai/tutele.php", h.aiActivate)
	})
	return r
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, "richiesta non valida")
		return
	}
	account, ok, err := h.backend.AccountByEmail(r.Context(), body.Email)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !ok || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(body.Password)) != nil {
		h.fail(w, r, "Credenziali non valide")
		return
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"token":   h.issueToken(account.ID),
		"user":    map[string]any{"id": account.ID, "email": account.Email},
	})
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, "richiesta non valida")
		return
	}
	if body.Email == "" || len(body.Password) < 6 {
		h.fail(w, r, "email o password non validi")
		return
	}
	if _, exists, err := h.backend.AccountByEmail(r.Context(), body.Email); err != nil {
		h.serverError(w, r, err)
		return
	} else if exists {
		h.fail(w, r, "utente già registrato")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	id, err := h.backend.CreateAccount(r.Context(), body.Email, string(hash))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"success": true,
		"token":   h.issueToken(id),
		"user":    map[string]any{"id": id, "email": body.Email},
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	answers, err := h.backend.Answers(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	user := map[string]any{
		"id":         account.ID,
		"name_first": account.NameFirst,
		"name_last":  account.NameLast,
		"email":      account.Email,
	}
	if len(answers) > 0 {
		user["questionario_data"] = answers
	}
	render.JSON(w, r, map[string]any{"success": true, "user": user})
}

type profileUpdateBody struct {
	UserID    int    `json:"user_id"`
	NameFirst string `json:"name_first"`
	NameLast  string `json:"name_last"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body profileUpdateBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, "richiesta non valida")
		return
	}
	if body.NameFirst == "" || body.NameLast == "" {
		h.fail(w, r, "nome e cognome obbligatori")
		return
	}
	if err := h.backend.UpdateNames(r.Context(), body.UserID, body.NameFirst, body.NameLast); err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"success": true})
}

func (h *Handler) questions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.backend.Questions(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"success": true, "data": questions})
}

func (h *Handler) answers(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	answers, err := h.backend.Answers(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(answers) == 0 {
		h.fail(w, r, "nessun dato trovato")
		return
	}
	render.JSON(w, r, map[string]any{"success": true, "data": answers})
}

type submitBody struct {
	UserID  int               `json:"user_id"`
	Answers map[string]string `json:"questionario"`
}

func (h *Handler) submitAnswers(w http.ResponseWriter, r *http.Request) {
	var body submitBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, "richiesta non valida")
		return
	}
	if len(body.Answers) == 0 {
		h.fail(w, r, "questionario vuoto")
		return
	}
	if err := h.backend.SaveAnswers(r.Context(), body.UserID, body.Answers); err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"success": true})
}

func (h *Handler) writeProtections(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	answers, err := h.backend.Answers(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(answers) == 0 {
		render.JSON(w, r, map[string]any{"error": "questionario non compilato"})
		return
	}
	for _, section := range domain.SectionCatalog() {
		content := sectionContent(section.Title, account, len(answers))
		if err := h.backend.SetContent(r.Context(), account.ID, section.Key, content); err != nil {
			h.serverError(w, r, err)
			return
		}
	}
	render.JSON(w, r, map[string]any{"success": true})
}

func (h *Handler) completions(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	completions, err := h.backend.Completions(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"success": true, "data": completions})
}

func (h *Handler) contents(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	contents, err := h.backend.Contents(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"success": true, "data": contents})
}

type columnBody struct {
	UserID int    `json:"user_id"`
	Column string `json:"column"`
}

func (h *Handler) updateColumn(w http.ResponseWriter, r *http.Request) {
	var body columnBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, "richiesta non valida")
		return
	}
	section, ok := sectionByKey(body.Column)
	if !ok {
		h.fail(w, r, "colonna sconosciuta")
		return
	}
	account, found, err := h.backend.AccountByID(r.Context(), body.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if !found {
		h.fail(w, r, "utente non trovato")
		return
	}
	answers, err := h.backend.Answers(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	content := sectionContent(section.Title, account, len(answers))
	if err := h.backend.SetContent(r.Context(), account.ID, body.Column, content); err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"success": true, "message": "ok", "content": content})
}

func (h *Handler) markCompleted(w http.ResponseWriter, r *http.Request) {
	var body columnBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.fail(w, r, "richiesta non valida")
		return
	}
	if _, ok := sectionByKey(body.Column); !ok {
		h.fail(w, r, "colonna sconosciuta")
		return
	}
	if err := h.backend.SetCompletion(r.Context(), body.UserID, body.Column); err != nil {
		h.serverError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{"success": true})
}

func (h *Handler) aiInitialize(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	answers, err := h.backend.Answers(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	data := make(map[string]string)
	for _, section := range domain.SectionCatalog() {
		content := sectionContent(section.Title, account, len(answers))
		if err := h.backend.SetContent(r.Context(), account.ID, section.Key, content); err != nil {
			h.serverError(w, r, err)
			return
		}
		data[section.Key] = content
	}
	render.JSON(w, r, map[string]any{"success": true, "data": data})
}

func (h *Handler) aiActivate(w http.ResponseWriter, r *http.Request) {
	account, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	contents, err := h.backend.Contents(r.Context(), account.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(contents) == 0 {
		h.fail(w, r, "nessuna tutela da attivare")
		return
	}
	for key := range contents {
		if err := h.backend.SetCompletion(r.Context(), account.ID, key); err != nil {
			h.serverError(w, r, err)
			return
		}
	}
	render.JSON(w, r, map[string]any{"success": true, "data": contents})
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (Account, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("user_id"))
	if err != nil || id <= 0 {
		h.fail(w, r, "user_id mancante")
		return Account{}, false
	}
	account, found, err := h.backend.AccountByID(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return Account{}, false
	}
	if !found {
		h.fail(w, r, "utente non trovato")
		return Account{}, false
	}
	return account, true
}

func (h *Handler) issueToken(userID int) string {
	token := uuid.NewString()
	h.mu.Lock()
	h.tokens[token] = userID
	h.mu.Unlock()
	return token
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, message string) {
	render.JSON(w, r, map[string]any{"success": false, "message": message})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("dev server", zap.Error(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, map[string]any{"success": false, "message": "errore interno"})
}

func sectionByKey(key string) (domain.Section, bool) {
	for _, section := range domain.SectionCatalog() {
		if section.Key == key {
			return section, true
		}
	}
	return domain.Section{}, false
}

func sectionContent(title string, account Account, answerCount int) string {
	name := account.NameFirst
	if name == "" {
		name = account.Email
	}
	return fmt.Sprintf("<h3>%s</h3><p>Tutele generate per %s sulla base di %d risposte del questionario.</p>", title, name, answerCount)
}

// DefaultQuestions is the seed catalog for dev backends, mirroring the
// production questionnaire.
func DefaultQuestions() []domain.QuestionDefinition {
	return []domain.QuestionDefinition{
		{ID: 1, Label: "Età", Type: domain.QuestionNumber, Required: true},
		{ID: 2, Label: "Sesso", Type: domain.QuestionChoice, Required: true, Options: []string{"Donna", "Uomo", "Altro"}},
		{ID: 3, Label: "Stato civile", Type: domain.QuestionChoice, Required: true, Options: []string{"Celibe", "Nubile", "Coniugato", "Divorziato", "Vedovo"}},
		{ID: 4, Label: "Figli", Type: domain.QuestionNumber, Required: true},
		{ID: 5, Label: "Patologie", Type: domain.QuestionText},
		{ID: 6, Label: "Lavoro", Type: domain.QuestionChoice, Required: true, Options: []string{"Dipendente", "Autonomo", "Disoccupato", "Pensionato"}},
	}
}
