package identity

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"carrete-admin/internal/apperr"
	"carrete-admin/internal/models"
	"carrete-admin/internal/store"
)

const MinPasswordLength = 6

const (
	msgInvalidCredentials = "Correo o contraseña incorrectos"
	msgInvalidSession     = "Tu sesión expiró. Inicia sesión nuevamente."
	msgIdentityDown       = "No se pudo contactar el servicio de autenticación"
	msgShortPassword      = "La contraseña debe tener al menos 6 caracteres"
	msgInvalidEmail       = "Ingresa un correo electrónico válido"
	msgEmailTaken         = "El correo ya está registrado"
	msgInvalidReset       = "El enlace para restablecer la contraseña no es válido o expiró"
	msgResetNotSent       = "No se pudo enviar el correo de restablecimiento"
)

type Options struct {
	Secret     string
	SessionTTL time.Duration
	ResetTTL   time.Duration
	Mailer     Mailer
	Logger     *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Service implements Provider on top of the document store.
type Service struct {
	store      store.Store
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	mailer     Mailer
	log        *zap.Logger
	now        func() time.Time
	validate   *validator.Validate

	mu        sync.Mutex
	// known maps the sessions this process has seen to their expiry.
	known     map[string]time.Time
	listeners map[int]Listener
	nextID    int
}

var _ Provider = (*Service)(nil)

func NewService(st store.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		store:      st,
		secret:     []byte(opts.Secret),
		sessionTTL: opts.SessionTTL,
		resetTTL:   opts.ResetTTL,
		mailer:     opts.Mailer,
		log:        opts.Logger,
		now:        opts.Now,
		validate:   validator.New(),
		known:      make(map[string]time.Time),
		listeners:  make(map[int]Listener),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", apperr.Validation(msgInvalidEmail)
	}
	if len(password) < MinPasswordLength {
		return "", apperr.Validation(msgShortPassword)
	}

	if _, err := s.findAccount(ctx, email); err == nil {
		return "", apperr.Conflict(msgEmailTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", apperr.Load(msgIdentityDown, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	account := models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Set(ctx, store.CollAccounts, account.ID, account.Fields()); err != nil {
		return "", apperr.Load(msgIdentityDown, err)
	}
	s.log.Info("account created", zap.String("uid", account.ID), zap.String("email", email))
	return account.ID, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Identity{}, apperr.Credential(msgInvalidCredentials, nil)
	}

	account, err := s.findAccount(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, apperr.Credential(msgInvalidCredentials, err)
	}
	if err != nil {
		return Identity{}, apperr.Load(msgIdentityDown, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Identity{}, apperr.Credential(msgInvalidCredentials, err)
	}

	now := s.now().UTC()
	session := models.IdentitySession{
		ID:        uuid.NewString(),
		UID:       account.ID,
		Email:     account.Email,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	token, err := signSession(s.secret, session.UID, session.Email, session.ID, session.ExpiresAt)
	if err != nil {
		return Identity{}, err
	}
	if err := s.store.Set(ctx, store.CollSessions, session.ID, session.Fields()); err != nil {
		return Identity{}, apperr.Load(msgIdentityDown, err)
	}

	id := Identity{
		UID:       session.UID,
		Email:     session.Email,
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}
	s.mu.Lock()
	s.rememberLocked(id)
	s.mu.Unlock()

	s.emit(ctx, Change{Kind: SignedIn, Identity: id})
	return id, nil
}

func (s *Service) Verify(ctx context.Context, token string) (Identity, error) {
	claims, err := parseSession(s.secret, token, s.now)
	if err != nil {
		return Identity{}, apperr.Credential(msgInvalidSession, err)
	}

	rec, err := s.store.Get(ctx, store.CollSessions, claims.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, apperr.Credential(msgInvalidSession, err)
	}
	if err != nil {
		return Identity{}, apperr.Load(msgIdentityDown, err)
	}
	var session models.IdentitySession
	if err := rec.Decode(&session); err != nil {
		return Identity{}, apperr.Load(msgIdentityDown, err)
	}
	if session.Revoked || session.UID != claims.Subject || !s.now().Before(session.ExpiresAt) {
		return Identity{}, apperr.Credential(msgInvalidSession, nil)
	}

	id := Identity{
		UID:       session.UID,
		Email:     session.Email,
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}

	s.mu.Lock()
	_, seen := s.known[id.SessionID]
	if !seen {
		s.rememberLocked(id)
	}
	s.mu.Unlock()

	if !seen {
		s.emit(ctx, Change{Kind: Restored, Identity: id})
	}
	return id, nil
}

func (s *Service) SignOut(ctx context.Context, id Identity) error {
	err := s.store.Update(ctx, store.CollSessions, id.SessionID, map[string]any{"revoked": true})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Load(msgIdentityDown, err)
	}

	s.mu.Lock()
	delete(s.known, id.SessionID)
	s.mu.Unlock()

	s.emit(ctx, Change{Kind: SignedOut, Identity: id})
	return nil
}

func (s *Service) RevokeSessions(ctx context.Context, uid string) error {
	records, err := s.store.Where(ctx, store.CollSessions, "uid", uid)
	if err != nil {
		return apperr.Load(msgIdentityDown, err)
	}
	for _, rec := range records {
		var session models.IdentitySession
		if err := rec.Decode(&session); err != nil {
			s.log.Warn("skipping undecodable session", zap.String("sid", rec.ID), zap.Error(err))
			continue
		}
		if session.Revoked {
			continue
		}
		if err := s.SignOut(ctx, Identity{UID: session.UID, Email: session.Email, SessionID: session.ID, ExpiresAt: session.ExpiresAt}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, id Identity, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation(msgShortPassword)
	}
	return s.setPassword(ctx, id.UID, newPassword)
}

func (s *Service) setPassword(ctx context.Context, uid, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	err = s.store.Update(ctx, store.CollAccounts, uid, map[string]any{
		"passwordHash": string(hash),
		"updatedAt":    s.now().UTC(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Cuenta no encontrada", err)
	}
	if err != nil {
		return apperr.Load(msgIdentityDown, err)
	}
	return nil
}

// SendPasswordReset mails a single-use reset token. Unknown addresses succeed
// without sending anything so callers cannot enumerate accounts.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return apperr.Validation(msgInvalidEmail)
	}

	account, err := s.findAccount(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Debug("password reset for unknown email", zap.String("email", email))
		return nil
	}
	if err != nil {
		return apperr.Load(msgIdentityDown, err)
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	reset := models.PasswordReset{
		UID:       account.ID,
		Email:     account.Email,
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.store.Set(ctx, store.CollResets, hashToken(token), reset.Fields()); err != nil {
		return apperr.Load(msgIdentityDown, err)
	}

	msg := ResetMessage{Email: account.Email, Token: token, ExpiresAt: reset.ExpiresAt}
	if err := s.mailer.SendReset(ctx, msg); err != nil {
		s.log.Error("reset mail failed", zap.String("uid", account.ID), zap.Error(err))
		return apperr.Load(msgResetNotSent, err)
	}
	s.log.Info("password reset issued", zap.String("uid", account.ID))
	return nil
}

// ConfirmPasswordReset consumes a reset token, sets the new password and
// signs the account out everywhere.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation(msgShortPassword)
	}
	if token == "" {
		return apperr.Validation(msgInvalidReset)
	}

	key := hashToken(token)
	rec, err := s.store.Get(ctx, store.CollResets, key)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Validation(msgInvalidReset)
	}
	if err != nil {
		return apperr.Load(msgIdentityDown, err)
	}
	var reset models.PasswordReset
	if err := rec.Decode(&reset); err != nil {
		return apperr.Load(msgIdentityDown, err)
	}
	if reset.Used || !s.now().Before(reset.ExpiresAt) {
		return apperr.Validation(msgInvalidReset)
	}

	if err := s.store.Update(ctx, store.CollResets, key, map[string]any{"used": true}); err != nil {
		return apperr.Load(msgIdentityDown, err)
	}
	if err := s.setPassword(ctx, reset.UID, newPassword); err != nil {
		return err
	}
	return s.RevokeSessions(ctx, reset.UID)
}

// rememberLocked records id and forgets sessions that already expired.
// Callers hold s.mu.
func (s *Service) rememberLocked(id Identity) {
	now := s.now()
	for sid, expiresAt := range s.known {
		if !now.Before(expiresAt) {
			delete(s.known, sid)
		}
	}
	s.known[id.SessionID] = id.ExpiresAt
}

func (s *Service) OnIdentityChanged(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) emit(ctx context.Context, change Change) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Ints(ids)
	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.listeners[id]
		s.mu.Unlock()
		// Skip listeners that unsubscribed during this emission.
		if ok {
			fn(ctx, change)
		}
	}
}

func (s *Service) findAccount(ctx context.Context, email string) (models.Account, error) {
	records, err := s.store.Where(ctx, store.CollAccounts, "email", email)
	if err != nil {
		return models.Account{}, err
	}
	if len(records) == 0 {
		return models.Account{}, store.ErrNotFound
	}
	var account models.Account
	if err := records[0].Decode(&account); err != nil {
		return models.Account{}, err
	}
	return account, nil
}
