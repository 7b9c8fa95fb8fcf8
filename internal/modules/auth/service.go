package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"reservehub/internal/config"
	"reservehub/internal/database"
	"reservehub/internal/domain"
	"reservehub/internal/events"
	"reservehub/internal/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service contains all business logic for authentication and the account
// lifecycle.
type Service struct {
	users     UserRepositoryInterface
	tokens    TokenRepositoryInterface
	jwt       jwtService
	mailer    Mailer
	publisher events.Publisher
	cfg       config.AuthConfig
	now       func() time.Time
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(
	users UserRepositoryInterface,
	tokens TokenRepositoryInterface,
	jwt jwtService,
	mailer Mailer,
	publisher events.Publisher,
	cfg config.AuthConfig,
) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		jwt:       jwt,
		mailer:    mailer,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Register creates an inactive account and mails its activation token.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if req.Password != req.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validateEmailUnique(ctx, req.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Balance:      s.cfg.InitialBalance,
		IsActive:     false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	if err := s.sendActivation(ctx, user); err != nil {
		// the account exists; the user can ask for another link
		logger.WarnContext(ctx, "activation mail failed", "user_id", user.ID, "error", err)
	}

	events.Emit(ctx, s.publisher, events.UserRegistered, events.UserRegisteredEvent{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: user.DateJoined,
	})

	user.PasswordHash = ""
	return user, nil
}

// ResendActivation mails a fresh activation token. Unknown or already active
// addresses are accepted silently.
func (s *Service) ResendActivation(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if user.IsActive {
		return nil
	}
	return s.sendActivation(ctx, user)
}

func (s *Service) Activate(ctx context.Context, rawToken string) error {
	token, err := s.consumeToken(ctx, domain.TokenActivation, rawToken)
	if err != nil {
		return err
	}
	return s.users.UpdateFields(ctx, token.UserID, map[string]any{"is_active": true})
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.IsLocked(now) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		failedAttempts := user.FailedLoginAttempts + 1
		updates := map[string]any{"failed_login_attempts": failedAttempts}
		locked := s.cfg.MaxFailedLogins > 0 && failedAttempts >= s.cfg.MaxFailedLogins
		if locked {
			updates["locked_until"] = now.Add(s.cfg.LockoutDuration)
			updates["failed_login_attempts"] = 0
		}
		if updateErr := s.users.UpdateFields(ctx, user.ID, updates); updateErr != nil {
			return nil, updateErr
		}
		if locked {
			logger.WarnContext(ctx, "account locked after failed logins", "user_id", user.ID)
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if user.FailedLoginAttempts > 0 || user.LockedUntil != nil {
		if err := s.users.UpdateFields(ctx, user.ID, map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
		}); err != nil {
			return nil, err
		}
		user.FailedLoginAttempts, user.LockedUntil = 0, nil
	}

	accessToken, err := s.jwt.GenerateToken(user.ID, string(user.Role()))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: accessToken}, nil
}

// RequestPasswordReset never reveals whether the address is registered.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.InfoContext(ctx, "password reset: email not found (masked)")
			return nil
		}
		return err
	}

	if err := s.tokens.InvalidateForUser(ctx, user.ID, domain.TokenPasswordReset); err != nil {
		return err
	}
	raw, err := s.issueToken(ctx, user.ID, domain.TokenPasswordReset, s.cfg.PasswordResetTTL, "")
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, raw)
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, req ConfirmPasswordResetRequest) error {
	if req.NewPassword != req.NewPasswordConfirm {
		return ErrPasswordMismatch
	}

	token, err := s.tokens.GetActive(ctx, domain.TokenPasswordReset, s.hashToken(req.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.NewPassword)) == nil {
		return ErrSamePassword
	}

	if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return s.setPassword(ctx, user.ID, req.NewPassword)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	if req.NewPassword != req.NewPasswordConfirm {
		return ErrPasswordMismatch
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
		return ErrWrongPassword
	}
	if req.NewPassword == req.OldPassword {
		return ErrSamePassword
	}
	return s.setPassword(ctx, user.ID, req.NewPassword)
}

// RequestEmailChange mails a confirmation token to the new address. The
// account keeps its current email until the token is confirmed.
func (s *Service) RequestEmailChange(ctx context.Context, userID int64, newEmail string) error {
	newEmail = domain.NormalizeEmail(newEmail)
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Email == newEmail {
		return ErrSameEmail
	}
	if err := s.validateEmailUnique(ctx, newEmail); err != nil {
		return err
	}

	if err := s.tokens.InvalidateForUser(ctx, user.ID, domain.TokenEmailChange); err != nil {
		return err
	}
	raw, err := s.issueToken(ctx, user.ID, domain.TokenEmailChange, s.cfg.EmailChangeTTL, newEmail)
	if err != nil {
		return err
	}
	return s.mailer.SendEmailChange(ctx, newEmail, raw)
}

func (s *Service) ConfirmEmailChange(ctx context.Context, rawToken string) (*domain.User, error) {
	token, err := s.tokens.GetActive(ctx, domain.TokenEmailChange, s.hashToken(rawToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	// the address may have been taken since the request
	if err := s.validateEmailUnique(ctx, token.NewEmail); err != nil {
		return nil, err
	}
	if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if err := s.users.UpdateFields(ctx, token.UserID, map[string]any{"email": token.NewEmail}); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}
	return s.GetCurrentUser(ctx, token.UserID)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	fields := map[string]any{}
	if req.FirstName != nil {
		fields["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		fields["last_name"] = *req.LastName
	}
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetCurrentUser(ctx, userID)
}

func (s *Service) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// CleanupTokens removes expired and consumed tokens.
func (s *Service) CleanupTokens(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx)
}

func (s *Service) getUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) setPassword(ctx context.Context, userID int64, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.users.UpdateFields(ctx, userID, map[string]any{
		"password_hash":         hash,
		"failed_login_attempts": 0,
		"locked_until":          nil,
	})
}

func (s *Service) sendActivation(ctx context.Context, user *domain.User) error {
	if err := s.tokens.InvalidateForUser(ctx, user.ID, domain.TokenActivation); err != nil {
		return err
	}
	raw, err := s.issueToken(ctx, user.ID, domain.TokenActivation, s.cfg.ActivationTTL, "")
	if err != nil {
		return err
	}
	return s.mailer.SendActivation(ctx, user.Email, raw)
}

func (s *Service) issueToken(ctx context.Context, userID int64, purpose domain.TokenPurpose, ttl time.Duration, newEmail string) (string, error) {
	raw, err := generateOpaqueToken()
	if err != nil {
		return "", err
	}
	t := &domain.UserToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: s.hashToken(raw),
		NewEmail:  newEmail,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", err
	}
	return raw, nil
}

func (s *Service) consumeToken(ctx context.Context, purpose domain.TokenPurpose, raw string) (*domain.UserToken, error) {
	token, err := s.tokens.GetActive(ctx, purpose, s.hashToken(raw))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if err := s.tokens.MarkUsed(ctx, token.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return token, nil
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailAlreadyExists
	}
	return nil
}

func (s *Service) hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw + s.cfg.TokenPepper))
	return hex.EncodeToString(sum[:])
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
