package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const verificationSubject = "ModaVibe verification code"

var validate = validator.New()

type AccountService struct {
	Repo          *repo.GormRepo
	Notifier      notify.Notifier
	Events        events.Publisher
	JWTSecret     []byte
	TokenTTL      time.Duration
	AllowedDomain string

	// NewCode returns a fresh six digit code; tests replace it.
	NewCode func() (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
}

type LoginResult struct {
	User        models.UserSummary
	AccessToken string
	AccessExp   time.Time
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func verificationBody(name, code string) string {
	return fmt.Sprintf("Hello %s,\n\nYour ModaVibe verification code is: %s\n", name, code)
}

func (s *AccountService) newCode() (string, error) {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return GenerateCode()
}

func (s *AccountService) checkRegistration(in RegisterInput, email string) error {
	if strings.TrimSpace(in.Name) == "" || email == "" || in.Password == "" {
		return fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}
	if err := validate.Var(email, "email"); err != nil {
		return fmt.Errorf("malformed email %q: %w", email, ErrValidation)
	}
	if s.AllowedDomain != "" && !strings.HasSuffix(email, "@"+s.AllowedDomain) {
		return fmt.Errorf("only @%s addresses are accepted: %w", s.AllowedDomain, ErrValidation)
	}
	return nil
}

// Register creates an unverified account and mails it a verification code.
// If the code cannot be delivered the account is removed again.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) error {
	email := normalizeEmail(in.Email)
	l := logging.FromContext(ctx).With("svc", "account.register", "email", email)

	if err := s.checkRegistration(in, email); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	existing, err := s.Repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		l.Warn("register_error", "status", 409, "reason", "email already registered")
		return fmt.Errorf("email already registered: %w", ErrConflict)
	case err == nil:
		if err := s.Repo.PurgeUser(ctx, existing.ID); err != nil {
			l.Error("register_error", "status", 500, "reason", "cannot purge unverified account", "error", err)
			return err
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		l.Error("register_error", "status", 500, "error", err)
		return err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return err
	}
	code, err := s.newCode()
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot generate code", "error", err)
		return err
	}

	user := models.User{
		Name:             strings.TrimSpace(in.Name),
		Email:            email,
		Phone:            strings.TrimSpace(in.Phone),
		Address:          strings.TrimSpace(in.Address),
		PasswordHash:     pwHash,
		Role:             models.RoleUser,
		VerificationCode: &code,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Warn("register_error", "status", 409, "reason", "concurrent registration")
			return fmt.Errorf("email already registered: %w", ErrConflict)
		}
		l.Error("register_error", "status", 500, "error", err)
		return err
	}

	if err := s.Notifier.Send(ctx, email, verificationSubject, verificationBody(user.Name, code)); err != nil {
		// the request may already be canceled; the row must still go
		if derr := s.Repo.DeleteUser(context.WithoutCancel(ctx), user.ID); derr != nil {
			l.Error("register_rollback_failed", "user_id", user.ID, "error", derr)
		}
		l.Error("register_error", "status", 502, "reason", "cannot send verification code", "error", err)
		return fmt.Errorf("send verification code: %w: %w", ErrDependency, err)
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID, "user_registered", map[string]any{
		"userID": user.ID,
		"email":  email,
	})
	l.Info("register_successful", "user_id", user.ID)
	return nil
}

// Verify activates the unverified account holding exactly this code.
func (s *AccountService) Verify(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	l := logging.FromContext(ctx).With("svc", "account.verify", "email", email)

	if email == "" || code == "" {
		return fmt.Errorf("email and code are required: %w", ErrValidation)
	}

	n, err := s.Repo.ConsumeVerificationCode(ctx, email, code)
	if err != nil {
		l.Error("verify_error", "status", 500, "error", err)
		return err
	}
	if n == 0 {
		l.Warn("verify_error", "status", 400, "reason", "code does not match")
		return ErrInvalidCode
	}

	l.Info("verify_successful")
	return nil
}

// Login checks the password before the verification state, so an unverified
// account only learns it is unverified after proving the password.
func (s *AccountService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "account.login", "email", email)

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 404, "reason", "user not found")
			return nil, ErrUserNotFound
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, ErrBadCredential
	}
	if !user.IsVerified {
		l.Warn("login_failed", "status", 403, "reason", "account not verified")
		return nil, ErrNotVerified
	}

	exp := time.Now().Add(s.TokenTTL)
	token, err := tokens.CreateAccessToken(s.JWTSecret, user.ID, user.Role, exp)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{
		User:        user.Summary(),
		AccessToken: token,
		AccessExp:   exp,
	}, nil
}

// ResendCode rotates and re-sends the code of an unverified account. Unknown
// and already verified emails are a silent no-op.
func (s *AccountService) ResendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "account.resend", "email", email)

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		l.Error("resend_error", "status", 500, "error", err)
		return err
	}
	if user.IsVerified {
		return nil
	}

	code, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.Repo.SetVerificationCode(ctx, user.ID, code); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		l.Error("resend_error", "status", 500, "error", err)
		return err
	}

	if err := s.Notifier.Send(ctx, email, verificationSubject, verificationBody(user.Name, code)); err != nil {
		l.Error("resend_error", "status", 502, "error", err)
		return fmt.Errorf("send verification code: %w: %w", ErrDependency, err)
	}

	l.Info("resend_successful", "user_id", user.ID)
	return nil
}

// EnsureAdmin seeds the bootstrap admin account when the email is unused.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	l := logging.FromContext(ctx).With("svc", "account.ensure_admin", "email", email)

	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required: %w", ErrValidation)
	}

	_, err := s.Repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleAdmin,
		IsVerified:   true,
	}
	if err := s.Repo.CreateUser(ctx, &admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}

	l.Info("admin_created", "user_id", admin.ID)
	return nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID uint) (models.UserSummary, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.UserSummary{}, ErrUserNotFound
		}
		return models.UserSummary{}, err
	}
	return user.Summary(), nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, name, phone, address string) (models.UserSummary, error) {
	l := logging.FromContext(ctx).With("svc", "account.update_profile", "user_id", userID)

	name = strings.TrimSpace(name)
	if name == "" {
		return models.UserSummary{}, fmt.Errorf("name is required: %w", ErrValidation)
	}

	if err := s.Repo.UpdateProfile(ctx, userID, name, strings.TrimSpace(phone), strings.TrimSpace(address)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("update_profile_error", "status", 404)
			return models.UserSummary{}, ErrUserNotFound
		}
		l.Error("update_profile_error", "status", 500, "error", err)
		return models.UserSummary{}, err
	}

	l.Info("profile_updated")
	return s.GetProfile(ctx, userID)
}

// DeleteAccount removes the user. Cart lines go first; a failure there is
// logged and does not stop the deletion. Orders are kept.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	l := logging.FromContext(ctx).With("svc", "account.delete", "user_id", userID)

	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		l.Warn("delete_account_cart_error", "error", err)
	}

	if err := s.Repo.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("delete_account_error", "status", 404)
			return ErrUserNotFound
		}
		l.Error("delete_account_error", "status", 500, "error", err)
		return err
	}

	publish(ctx, s.Events, events.TopicUsers, userID, "user_deleted", map[string]any{"userID": userID})
	l.Info("account_deleted")
	return nil
}
