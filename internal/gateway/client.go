// Package gateway wraps the remote PHP API behind typed request functions.
// Every response is the uniform envelope {success, data|user, message}; every
// read goes out with cache-disabling headers because responses reflect
// per-user mutable state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/unilater/galeaz/internal/domain"
)

// Client issues requests against one API base URL.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	sf      singleflight.Group
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (e envelope) failure(op string) error {
	return &domain.EnvelopeError{Op: op, Message: e.Message}
}

// SignIn exchanges credentials for a token and user id.
func (c *Client) SignIn(ctx context.Context, email, password string) (domain.Credentials, error) {
	var res struct {
		envelope
		Token string `json:"token"`
		User  struct {
			ID int `json:"id"`
		} `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "login.php", body, &res); err != nil {
		return domain.Credentials{}, fmt.Errorf("sign in: %w", err)
	}
	if !res.Success || res.Token == "" {
		return domain.Credentials{}, res.failure("sign in")
	}
	return domain.Credentials{UserID: res.User.ID, Token: res.Token}, nil
}

// SignUp registers a new account and returns sign-in credentials.
func (c *Client) SignUp(ctx context.Context, email, password string) (domain.Credentials, error) {
	var res struct {
		envelope
		Token string `json:"token"`
		User  struct {
			ID int `json:"id"`
		} `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "signup.php", body, &res); err != nil {
		return domain.Credentials{}, fmt.Errorf("sign up: %w", err)
	}
	if !res.Success {
		return domain.Credentials{}, res.failure("sign up")
	}
	return domain.Credentials{UserID: res.User.ID, Token: res.Token}, nil
}

// Profile fetches the remote profile. Concurrent fetches for the same user
// are collapsed into one request; the home and settings screens both refresh
// on entry.
func (c *Client) Profile(ctx context.Context, userID int) (domain.Profile, error) {
	result, err, _ := c.sf.Do("profile:"+strconv.Itoa(userID), func() (interface{}, error) {
		var res struct {
			envelope
			User struct {
				NameFirst         string          `json:"name_first"`
				NameLast          string          `json:"name_last"`
				Email             string          `json:"email"`
				QuestionnaireData json.RawMessage `json:"questionario_data"`
			} `json:"user"`
		}
		if err := c.get(ctx, "profile.php", userQuery(userID), &res); err != nil {
			return domain.Profile{}, fmt.Errorf("fetch profile: %w", err)
		}
		if !res.Success {
			return domain.Profile{}, res.failure("fetch profile")
		}
		return domain.Profile{
			NameFirst:         res.User.NameFirst,
			NameLast:          res.User.NameLast,
			Email:             res.User.Email,
			QuestionnaireData: decodeAnswerMap(res.User.QuestionnaireData),
		}, nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return result.(domain.Profile), nil
}

// UpdateProfile writes first and last name.
func (c *Client) UpdateProfile(ctx context.Context, userID int, first, last string) error {
	var res envelope
	body := map[string]any{"user_id": userID, "name_first": first, "name_last": last}
	if err := c.post(ctx, "profile_update.php", body, &res); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if !res.Success {
		return res.failure("update profile")
	}
	return nil
}

// QuestionCatalog fetches the server-declared question set. Ordering is left
// to the form builder.
func (c *Client) QuestionCatalog(ctx context.Context) ([]domain.QuestionDefinition, error) {
	var res struct {
		envelope
		Data []domain.QuestionDefinition `json:"data"`
	}
	if err := c.get(ctx, "get_domande.php", nil, &res); err != nil {
		return nil, fmt.Errorf("fetch question catalog: %w", err)
	}
	if !res.Success {
		return nil, res.failure("fetch question catalog")
	}
	return res.Data, nil
}

// PriorAnswers fetches previously saved answers keyed by stringified question
// id. A success envelope with no data yields an empty map.
func (c *Client) PriorAnswers(ctx context.Context, userID int) (map[string]string, error) {
	var res struct {
		envelope
		Data json.RawMessage `json:"data"`
	}
	if err := c.get(ctx, "questionario.php", userQuery(userID), &res); err != nil {
		return nil, fmt.Errorf("fetch prior answers: %w", err)
	}
	if !res.Success {
		return nil, res.failure("fetch prior answers")
	}
	return decodeAnswerMap(res.Data), nil
}

// SubmitAnswers records the full answer mapping for the user.
func (c *Client) SubmitAnswers(ctx context.Context, userID int, answers map[string]string) error {
	var res envelope
	body := map[string]any{"user_id": userID, "questionario": answers}
	if err := c.post(ctx, "questionario.php", body, &res); err != nil {
		return fmt.Errorf("submit answers: %w", err)
	}
	if !res.Success {
		return res.failure("submit answers")
	}
	return nil
}

// WriteProtections asks the backend to derive the protections content from
// the freshly submitted answers. The endpoint reports failure through an
// error field rather than the usual success flag.
func (c *Client) WriteProtections(ctx context.Context, userID int) error {
	var res struct {
		envelope
		Error string `json:"error"`
	}
	if err := c.get(ctx, "scrivi_tutele.php", userQuery(userID), &res); err != nil {
		return fmt.Errorf("write protections: %w", err)
	}
	if res.Error != "" {
		return &domain.EnvelopeError{Op: "write protections", Message: res.Error}
	}
	return nil
}

// CompletionMap fetches the per-section completion flags.
func (c *Client) CompletionMap(ctx context.Context, userID int) (map[string]bool, error) {
	var res struct {
		envelope
		Data map[string]bool `json:"data"`
	}
	if err := c.get(ctx, "tutele_completate.php", userQuery(userID), &res); err != nil {
		return nil, fmt.Errorf("fetch section completion map: %w", err)
	}
	if !res.Success {
		return nil, res.failure("fetch section completion map")
	}
	if res.Data == nil {
		res.Data = map[string]bool{}
	}
	return res.Data, nil
}

// SectionContents fetches the stored protections content per section key.
func (c *Client) SectionContents(ctx context.Context, userID int) (map[string]string, error) {
	var res struct {
		envelope
		Data map[string]string `json:"data"`
	}
	if err := c.get(ctx, "openai/get_tutele.php", userQuery(userID), &res); err != nil {
		return nil, fmt.Errorf("fetch section contents: %w", err)
	}
	if !res.Success {
		return nil, res.failure("fetch section contents")
	}
	if res.Data == nil {
		res.Data = map[string]string{}
	}
	return res.Data, nil
}

// UpdateSectionColumn asks the backend to (re)generate one section's content.
func (c *Client) UpdateSectionColumn(ctx context.Context, userID int, column string) (domain.SectionUpdate, error) {
	var res struct {
		envelope
		Content string `json:"content"`
	}
	body := map[string]any{"user_id": userID, "column": column}
	if err := c.post(ctx, "update_colonna.php", body, &res); err != nil {
		return domain.SectionUpdate{}, fmt.Errorf("update section column: %w", err)
	}
	if !res.Success {
		return domain.SectionUpdate{}, res.failure("update section column")
	}
	return domain.SectionUpdate{Message: res.Message, Content: res.Content}, nil
}

// MarkSectionCompleted persists a section's completion flag. Callers treat it
// as best-effort.
func (c *Client) MarkSectionCompleted(ctx context.Context, userID int, column string) error {
	var res envelope
	body := map[string]any{"user_id": userID, "column": column}
	if err := c.post(ctx, "tutela_completata.php", body, &res); err != nil {
		return fmt.Errorf("mark section completed: %w", err)
	}
	if !res.Success {
		return res.failure("mark section completed")
	}
	return nil
}

// InitializeAI triggers the AI-assisted content initialization.
func (c *Client) InitializeAI(ctx context.Context, userID int) (map[string]string, error) {
	return c.aiCall(ctx, "openai/inizializza.php", "ai initialize", userID)
}

// ActivateProtections triggers the AI protections activation.
func (c *Client) ActivateProtections(ctx context.Context, userID int) (map[string]string, error) {
	return c.aiCall(ctx, "openai/tutele.php", "ai activate protections", userID)
}

func (c *Client) aiCall(ctx context.Context, path, op string, userID int) (map[string]string, error) {
	var res struct {
		envelope
		Data map[string]string `json:"data"`
	}
	if err := c.get(ctx, path, userQuery(userID), &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !res.Success {
		return nil, res.failure(op)
	}
	return res.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	req.Header.Set("Pragma", "no-cache")
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.Path),
			zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	c.log.Debug("request done",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Path),
		zap.Duration("took", time.Since(start)))
	return nil
}

func userQuery(userID int) url.Values {
	return url.Values{"user_id": []string{strconv.Itoa(userID)}}
}

// decodeAnswerMap tolerates the two shapes the backend uses for stored
// questionnaire data: a JSON object, or that same object serialized into a
// string. Values may be strings or numbers.
func decodeAnswerMap(raw json.RawMessage) map[string]string {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]string{}
	}
	var nested string
	if err := json.Unmarshal(raw, &nested); err == nil {
		raw = json.RawMessage(nested)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		case nil:
			out[key] = ""
		default:
			if data, err := json.Marshal(v); err == nil {
				out[key] = string(data)
			}
		}
	}
	return out
}
