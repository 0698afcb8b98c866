package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/LautaroLeall/Routine-Calendary/internal/common"
	"github.com/LautaroLeall/Routine-Calendary/internal/kvstore"
	"github.com/LautaroLeall/Routine-Calendary/internal/logging"
)

// Storage keys, kept byte-compatible with the original client layout.
const (
	UsersKey   = "routine_calendary_users"
	SessionKey = "routine_calendary_current_user_id"
)

// HashCost is the fixed bcrypt cost factor for stored password hashes.
const HashCost = 10

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// dummyHash is compared against when a login identifier matches no record,
// so unknown identifiers and wrong passwords take comparable time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Config carries the service's tunables.
type Config struct {
	// Debounce delays physical writes of the user table. The session
	// pointer always writes synchronously.
	Debounce time.Duration

	// HashCost overrides the bcrypt cost; zero means HashCost.
	HashCost int

	Logger logging.Logger
}

// Service owns the UserRecord table and the session pointer. The session
// state machine is Anonymous → Authenticated → Anonymous; Register and
// Login either fully succeed and authenticate, or fail and leave both
// table and session untouched.
type Service struct {
	users   *kvstore.Store[[]UserRecord]
	session *kvstore.Store[string]
	cost    int
	log     logging.Logger

	// test seams
	now   func() time.Time
	newID func() string
}

// NewService wires the credential store over the shared substrate.
func NewService(substrate kvstore.Substrate, bus *kvstore.Bus, cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNop()
	}
	cost := cfg.HashCost
	if cost == 0 {
		cost = HashCost
	}
	return &Service{
		users: kvstore.New(substrate, bus, UsersKey, kvstore.Options[[]UserRecord]{
			Default:  func() []UserRecord { return []UserRecord{} },
			Debounce: cfg.Debounce,
			Logger:   log,
		}),
		session: kvstore.New(substrate, bus, SessionKey, kvstore.Options[string]{
			Logger: log,
		}),
		cost:  cost,
		log:   log.With("component", "auth"),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// RegisterParams are the inputs for account creation.
type RegisterParams struct {
	Email    string
	Username string
	Password string
	Purpose  []string
}

// Register creates a new user, transitions the session to it, and returns
// the new id. Email is normalized (trim + lowercase) and username trimmed
// before the uniqueness check; a collision on either fails with
// common.ErrDuplicateIdentifier and leaves the table unchanged.
func (s *Service) Register(ctx context.Context, p RegisterParams) (string, error) {
	email := normalizeEmail(p.Email)
	username := strings.TrimSpace(p.Username)

	switch {
	case email == "":
		return "", fmt.Errorf("email is required: %w", common.ErrInvalidInput)
	case !emailRegex.MatchString(email):
		return "", fmt.Errorf("email %q is not valid: %w", email, common.ErrInvalidInput)
	case username == "":
		return "", fmt.Errorf("username is required: %w", common.ErrInvalidInput)
	case p.Password == "":
		return "", fmt.Errorf("password is required: %w", common.ErrInvalidInput)
	}

	records := s.users.Get(ctx)
	if findByIdentifier(records, email) != nil || findByIdentifier(records, username) != nil {
		return "", fmt.Errorf("register: %w", common.ErrDuplicateIdentifier)
	}

	hash, err := s.hashPassword(ctx, p.Password)
	if err != nil {
		return "", err
	}

	now := s.now()
	record := UserRecord{
		ID:           s.newID(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Purpose:      append([]string(nil), p.Purpose...),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.users.Update(ctx, func(all []UserRecord) []UserRecord {
		return append(append([]UserRecord(nil), all...), record)
	})
	s.session.Set(ctx, record.ID)

	s.log.Info(ctx, "user registered", "id", record.ID)
	return record.ID, nil
}

// LoginParams are the inputs for authentication. Identifier matches either
// a normalized email or a username.
type LoginParams struct {
	Identifier string
	Password   string
}

// Login verifies the identifier/password pair and authenticates the
// session. An unknown identifier and a wrong password both fail with
// common.ErrInvalidCredentials so callers cannot probe which identifiers
// are registered.
func (s *Service) Login(ctx context.Context, p LoginParams) (string, error) {
	identifier := strings.TrimSpace(p.Identifier)
	if identifier == "" || p.Password == "" {
		return "", fmt.Errorf("identifier and password are required: %w", common.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	record := findByIdentifier(s.users.Get(ctx), identifier)
	if record == nil {
		// Burn a comparison so the miss costs as much as a mismatch.
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(p.Password))
		return "", fmt.Errorf("login: %w", common.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(p.Password)); err != nil {
		return "", fmt.Errorf("login: %w", common.ErrInvalidCredentials)
	}

	s.session.Set(ctx, record.ID)
	return record.ID, nil
}

// Logout clears the session pointer unconditionally.
func (s *Service) Logout(ctx context.Context) {
	s.session.Set(ctx, "")
}

// CurrentUser returns the public projection of the authenticated user, or
// nil when the session is anonymous or dangling.
func (s *Service) CurrentUser(ctx context.Context) *PublicUser {
	id := s.session.Get(ctx)
	if id == "" {
		return nil
	}
	return s.UserByID(ctx, id)
}

// UserByID returns the public projection for id, or nil if no such record.
func (s *Service) UserByID(ctx context.Context, id string) *PublicUser {
	if record := findByID(s.users.Get(ctx), id); record != nil {
		pub := record.Public()
		return &pub
	}
	return nil
}

// UserPatch carries optional profile mutations; nil fields stay untouched.
// A non-nil Password is hashed before storage and never kept in plaintext.
type UserPatch struct {
	Email    *string
	Username *string
	Password *string
	Purpose  *[]string
	Avatar   *string
}

// UpdateUser merges patch into the authenticated user's record. Email and
// username uniqueness is re-validated against all other records on the
// pre-mutation snapshot; a collision fails with
// common.ErrDuplicateIdentifier and changes nothing.
func (s *Service) UpdateUser(ctx context.Context, patch UserPatch) (*PublicUser, error) {
	id := s.session.Get(ctx)
	if id == "" {
		return nil, fmt.Errorf("no authenticated user: %w", common.ErrNotFound)
	}

	snapshot := s.users.Get(ctx)
	current := findByID(snapshot, id)
	if current == nil {
		return nil, fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}

	next := *current
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if !emailRegex.MatchString(email) {
			return nil, fmt.Errorf("email %q is not valid: %w", email, common.ErrInvalidInput)
		}
		next.Email = email
	}
	if patch.Username != nil {
		username := strings.TrimSpace(*patch.Username)
		if username == "" {
			return nil, fmt.Errorf("username is required: %w", common.ErrInvalidInput)
		}
		next.Username = username
	}
	if patch.Purpose != nil {
		next.Purpose = append([]string(nil), (*patch.Purpose)...)
	}
	if patch.Avatar != nil {
		next.Avatar = *patch.Avatar
	}
	if patch.Password != nil {
		if *patch.Password == "" {
			return nil, fmt.Errorf("password is required: %w", common.ErrInvalidInput)
		}
		hash, err := s.hashPassword(ctx, *patch.Password)
		if err != nil {
			return nil, err
		}
		next.PasswordHash = hash
	}

	for _, other := range snapshot {
		if other.ID == id {
			continue
		}
		if other.Email == next.Email || other.Username == next.Username {
			return nil, fmt.Errorf("update user: %w", common.ErrDuplicateIdentifier)
		}
	}

	next.UpdatedAt = s.now()
	s.replace(ctx, next)

	pub := next.Public()
	return &pub, nil
}

// ChangePasswordParams are the inputs for a password change. UserID is
// optional and defaults to the authenticated session's user.
type ChangePasswordParams struct {
	UserID          string
	CurrentPassword string
	NewPassword     string
}

// ChangePassword verifies the current password and replaces the stored
// hash. A wrong current password fails with common.ErrInvalidCredentials.
func (s *Service) ChangePassword(ctx context.Context, p ChangePasswordParams) error {
	if p.NewPassword == "" {
		return fmt.Errorf("new password is required: %w", common.ErrInvalidInput)
	}

	id := p.UserID
	if id == "" {
		id = s.session.Get(ctx)
	}
	record := findByID(s.users.Get(ctx), id)
	if record == nil {
		return fmt.Errorf("change password: %w", common.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(p.CurrentPassword)); err != nil {
		return fmt.Errorf("change password: %w", common.ErrInvalidCredentials)
	}

	hash, err := s.hashPassword(ctx, p.NewPassword)
	if err != nil {
		return err
	}

	next := *record
	next.PasswordHash = hash
	next.UpdatedAt = s.now()
	s.replace(ctx, next)
	return nil
}

// DeleteAccount removes the record for id and, when it was the
// authenticated user, clears the session. Purging the user's data
// document is the collaborator's responsibility (appdata.Store.Delete).
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	if findByID(s.users.Get(ctx), id) == nil {
		return fmt.Errorf("user %s: %w", id, common.ErrNotFound)
	}

	s.users.Update(ctx, func(all []UserRecord) []UserRecord {
		next := make([]UserRecord, 0, len(all))
		for _, r := range all {
			if r.ID != id {
				next = append(next, r)
			}
		}
		return next
	})
	if s.session.Get(ctx) == id {
		s.session.Set(ctx, "")
	}

	s.log.Info(ctx, "account deleted", "id", id)
	return nil
}

// Flush forces out pending debounced writes of the user table.
func (s *Service) Flush(ctx context.Context) {
	s.users.Flush(ctx)
	s.session.Flush(ctx)
}

// Close flushes and detaches both underlying stores.
func (s *Service) Close(ctx context.Context) {
	s.users.Close(ctx)
	s.session.Close(ctx)
}

func (s *Service) hashPassword(ctx context.Context, password string) (string, error) {
	// Hashing is the one CPU-heavy step; bail out early if the caller
	// already gave up.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) replace(ctx context.Context, record UserRecord) {
	s.users.Update(ctx, func(all []UserRecord) []UserRecord {
		next := append([]UserRecord(nil), all...)
		for i := range next {
			if next[i].ID == record.ID {
				next[i] = record
			}
		}
		return next
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// findByIdentifier matches identifier against normalized emails and exact
// usernames.
func findByIdentifier(records []UserRecord, identifier string) *UserRecord {
	lowered := strings.ToLower(identifier)
	for i := range records {
		if records[i].Email == lowered || records[i].Username == identifier {
			return &records[i]
		}
	}
	return nil
}

func findByID(records []UserRecord, id string) *UserRecord {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}
