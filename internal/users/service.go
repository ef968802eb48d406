package users

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/so-keyldzn/simple-cms-sub001/internal/rbac"
	"github.com/so-keyldzn/simple-cms-sub001/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, email, name, passwordHash, role string) (User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository is the transactional subset used by role changes.
type TxRepository interface {
	GetUserForUpdate(ctx context.Context, id int64) (User, error)
	LockSuperAdmins(ctx context.Context) (int, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}

// Notifier delivers account notifications, typically by enqueueing a job.
type Notifier interface {
	NotifyUserCreated(ctx context.Context, user User) error
	NotifyRoleChanged(ctx context.Context, change RoleChange) error
}

// CacheRefresher reloads derived state after privileged assignments change.
type CacheRefresher interface {
	Refresh(ctx context.Context) error
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	audit    shared.AuditRecorder
	notifier Notifier
	cache    CacheRefresher
	logger   *slog.Logger
	cost     int
}

// Option customises Service.
type Option func(*Service)

// WithAudit records user administration events.
func WithAudit(audit shared.AuditRecorder) Option {
	return func(s *Service) { s.audit = audit }
}

// WithNotifier sends welcome and role change notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithCacheRefresher refreshes the privileged-ID cache after role changes.
func WithCacheRefresher(c CacheRefresher) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, opts ...Option) *Service {
	s := &Service{repo: repo, logger: slog.Default(), cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// CreateUser stores a new account holding the default role.
func (s *Service) CreateUser(ctx context.Context, actor Actor, in CreateUserInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, email, strings.TrimSpace(in.Name), string(hash), rbac.DefaultRole.String())
	if err != nil {
		return User{}, err
	}
	s.record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   shared.AuditUserCreated,
		Entity:   "user",
		EntityID: strconv.FormatInt(user.ID, 10),
		Meta:     map[string]any{"email": user.Email, "role": user.Role},
	})
	if s.notifier != nil {
		if err := s.notifier.NotifyUserCreated(ctx, user); err != nil {
			s.logger.Warn("enqueue welcome mail", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
	}
	return user, nil
}

// ChangeRole replaces a user's role assignment with the canonical form of
// raw. Granting or revoking super-admin requires a super-admin actor, and the
// last active super-admin cannot lose the role.
func (s *Service) ChangeRole(ctx context.Context, actor Actor, userID int64, raw string) (User, error) {
	next, err := rbac.ParseAssignment(raw)
	if err != nil {
		return User{}, err
	}
	canonical := next.String()

	var before User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		before = current

		wasSuper := holdsSuperAdmin(current.Role)
		willSuper := next.Has(rbac.RoleSuperAdmin)
		if wasSuper != willSuper && !rbac.HasRole(actor.Assignment, rbac.RoleSuperAdmin) {
			return ErrSuperAdminRequired
		}
		if wasSuper && !willSuper && current.IsActive {
			remaining, err := tx.LockSuperAdmins(ctx)
			if err != nil {
				return err
			}
			if remaining <= 1 {
				return ErrLastSuperAdmin
			}
		}
		if current.Role == canonical {
			return nil
		}
		return tx.UpdateRole(ctx, userID, canonical)
	})
	if err != nil {
		return User{}, err
	}

	after := before
	after.Role = canonical
	if before.Role == canonical {
		return after, nil
	}

	s.record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   shared.AuditUserRoleChanged,
		Entity:   "user",
		EntityID: strconv.FormatInt(userID, 10),
		Meta:     map[string]any{"from": before.Role, "to": canonical},
	})
	if s.cache != nil {
		if err := s.cache.Refresh(ctx); err != nil {
			s.logger.Warn("refresh privileged cache", slog.Any("error", err))
		}
	}
	if s.notifier != nil {
		change := RoleChange{
			UserID:   userID,
			Email:    before.Email,
			Name:     before.Name,
			Previous: before.Role,
			Current:  canonical,
			ActorID:  actor.ID,
		}
		if err := s.notifier.NotifyRoleChanged(ctx, change); err != nil {
			s.logger.Warn("enqueue role change notification", slog.Int64("user_id", userID), slog.Any("error", err))
		}
	}
	s.logger.Info("user role changed",
		slog.Int64("user_id", userID),
		slog.Int64("actor_id", actor.ID),
		slog.String("from", before.Role),
		slog.String("to", canonical))
	return after, nil
}

// Normalize reports stored assignments whose text differs from their
// canonical form. With apply set, parsable ones are rewritten in place.
func (s *Service) Normalize(ctx context.Context, apply bool) ([]NormalizeResult, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	var results []NormalizeResult
	for _, user := range users {
		if rbac.Canonical(user.Role) {
			continue
		}
		result := NormalizeResult{UserID: user.ID, Email: user.Email, Stored: user.Role}
		parsed, err := rbac.ParseAssignment(user.Role)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.Canonical = parsed.String()
		if apply {
			if err := s.repo.UpdateRole(ctx, user.ID, result.Canonical); err != nil {
				return results, fmt.Errorf("users: normalize %d: %w", user.ID, err)
			}
			result.Applied = true
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Service) record(ctx context.Context, entry shared.AuditLog) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", entry.Action), slog.Any("error", err))
	}
}

// holdsSuperAdmin is lenient towards non-canonical stored text.
func holdsSuperAdmin(stored string) bool {
	if a, err := rbac.ParseAssignment(stored); err == nil {
		return a.Has(rbac.RoleSuperAdmin)
	}
	for _, segment := range strings.Split(stored, rbac.AssignmentSeparator) {
		if rbac.Role(strings.TrimSpace(segment)) == rbac.RoleSuperAdmin {
			return true
		}
	}
	return false
}
