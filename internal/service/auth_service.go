package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/askthebridge/bridge/internal/model"
	appErr "github.com/askthebridge/bridge/internal/pkg/errors"
	"github.com/askthebridge/bridge/internal/pkg/jwt"
	"github.com/askthebridge/bridge/internal/pkg/password"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
)

const verificationCodeTTL = 5 * time.Minute

type AuthService struct {
	users     *repo.UserRepo
	codes     *repo.VerificationCodeRepo
	mailer    EmailSender
	effects   *Effects
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(users *repo.UserRepo, codes *repo.VerificationCodeRepo,
	mailer EmailSender, effects *Effects, secret []byte, ttl time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		codes:     codes,
		mailer:    mailer,
		effects:   effects,
		jwtSecret: secret,
		jwtTTL:    ttl,
	}
}

// signupPayload carries the pending account data until the code is verified.
// The password is hashed before it ever touches the store.
type signupPayload struct {
	Name         string `json:"name"`
	PasswordHash string `json:"password_hash"`
}

func (s *AuthService) Signup(ctx context.Context, email, name, plainPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plainPassword == "" {
		return appErr.ErrInvalid
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return appErr.ErrConflict
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(signupPayload{Name: name, PasswordHash: hash})
	if err != nil {
		return err
	}
	code := newCode()
	if err := s.createCode(ctx, email, model.CodePurposeSignup, code, string(payload)); err != nil {
		return err
	}
	body := fmt.Sprintf(verificationMailBody, displayName(name, email), code)
	return s.mailer.Send(ctx, email, name, verificationMailSubject, body)
}

// Verify redeems a signup code and activates the account. The welcome mail
// goes out off the request path.
func (s *AuthService) Verify(ctx context.Context, email, code string) (*model.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	record, err := s.checkCode(ctx, email, model.CodePurposeSignup, code)
	if err != nil {
		return nil, err
	}
	if err := s.codes.MarkUsed(ctx, record.ID); err != nil {
		return nil, err
	}
	var payload signupPayload
	if err := json.Unmarshal([]byte(record.Payload), &payload); err != nil {
		return nil, appErr.ErrInvalid
	}
	now := timeutil.NowUnix()
	user := &model.UserProfile{
		ID:           newID(),
		Email:        email,
		Name:         payload.Name,
		PasswordHash: payload.PasswordHash,
		Verified:     1,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !appErr.IsConflict(err) {
			return nil, err
		}
		// Re-verifying an existing account keeps its password.
		user, err = s.users.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
	}
	name := user.Name
	s.effects.Go("welcome-mail", func(ctx context.Context) error {
		body := fmt.Sprintf(welcomeMailBody, displayName(name, email))
		return s.mailer.Send(ctx, email, name, welcomeMailSubject, body)
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.UserProfile, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return nil, "", appErr.ErrUnauthorized
	}
	token, err := jwt.GenerateToken(user.ID, user.Email, s.jwtSecret, s.jwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	code := newCode()
	if err := s.createCode(ctx, email, model.CodePurposePasswordReset, code, ""); err != nil {
		return err
	}
	body := fmt.Sprintf(passwordResetMailBody, displayName(user.Name, email), code)
	return s.mailer.Send(ctx, email, user.Name, passwordResetMailSubject, body)
}

// VerifyPasswordReset checks a reset code without consuming it, so the
// client can gate the new-password form before the confirm call.
func (s *AuthService) VerifyPasswordReset(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := s.checkCode(ctx, email, model.CodePurposePasswordReset, code)
	return err
}

func (s *AuthService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if newPassword == "" {
		return appErr.ErrInvalid
	}
	record, err := s.checkCode(ctx, email, model.CodePurposePasswordReset, code)
	if err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, email, hash, timeutil.NowUnix()); err != nil {
		return err
	}
	if err := s.codes.MarkUsed(ctx, record.ID); err != nil {
		logutil.GetLogger(ctx).Warn("mark reset code used failed", zap.Error(err))
	}
	return nil
}

func (s *AuthService) createCode(ctx context.Context, email, purpose, code, payload string) error {
	hash, err := password.Hash(code)
	if err != nil {
		return err
	}
	now := timeutil.NowUnix()
	return s.codes.Create(ctx, &model.VerificationCode{
		ID:        newID(),
		Email:     email,
		Purpose:   purpose,
		CodeHash:  hash,
		Payload:   payload,
		Ctime:     now,
		ExpiresAt: now + int64(verificationCodeTTL.Seconds()),
	})
}

func (s *AuthService) checkCode(ctx context.Context, email, purpose, code string) (*model.VerificationCode, error) {
	record, err := s.codes.LatestByEmail(ctx, email, purpose)
	if err != nil {
		return nil, err
	}
	if record.ExpiresAt < timeutil.NowUnix() {
		return nil, appErr.ErrInvalid
	}
	if err := password.Compare(record.CodeHash, strings.TrimSpace(code)); err != nil {
		return nil, appErr.ErrInvalid
	}
	return record, nil
}

// displayName falls back to the mailbox part of the address.
func displayName(name, email string) string {
	if name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return email
	}
	return strings.ToUpper(local[:1]) + local[1:]
}
