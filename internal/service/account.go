package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/repository"
)

// AccountService handles registration, email verification, login, capability
// activation and account deletion.
type AccountService struct {
	store         repository.Store
	mailer        Mailer
	notifier      *NotificationService
	tokenTTL      time.Duration
	verifyBaseURL string
	now           func() time.Time
}

// NewAccountService creates a new AccountService. verifyBaseURL is the public
// URL the verification token gets appended to.
func NewAccountService(store repository.Store, mailer Mailer, notifier *NotificationService, tokenTTL time.Duration, verifyBaseURL string) *AccountService {
	return &AccountService{
		store:         store,
		mailer:        mailer,
		notifier:      notifier,
		tokenTTL:      tokenTTL,
		verifyBaseURL: verifyBaseURL,
		now:           time.Now,
	}
}

// RegisterRequest contains the parameters for creating an account.
type RegisterRequest struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	// Role is the capability the user signs up for: renter, provider or both.
	Role string
}

// RegisterResult reports the created user and whether the verification mail
// went out. MailSent false is not an error: the account exists either way.
type RegisterResult struct {
	User     *domain.User
	MailSent bool
}

// Register creates an unverified account and dispatches the verification
// email. Username, email and phone must each be globally unique.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if req.Username == "" {
		return nil, ErrInvalidUsername
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, ErrInvalidEmail
	}
	if req.Password == "" {
		return nil, ErrInvalidPassword
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	canOffer, canFind, err := parseRole(req.Role)
	if err != nil {
		return nil, err
	}

	// Pre-checks give deterministic rejections; the unique constraints
	// behind Create settle any race.
	if _, err := s.store.Users().GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.Users().GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	token, err := newVerifyToken()
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:             uuid.New().String(),
		Username:       req.Username,
		Email:          req.Email,
		Phone:          req.Phone,
		PasswordHash:   string(hash),
		CanOfferRides:  canOffer,
		CanFindRides:   canFind,
		Verified:       false,
		VerifyToken:    token,
		TokenExpiresAt: s.now().Add(s.tokenTTL),
		CreatedAt:      s.now(),
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicatePhone):
			return nil, ErrPhoneTaken
		}
		return nil, err
	}

	mailSent := s.sendVerificationMail(ctx, user)
	return &RegisterResult{User: user, MailSent: mailSent}, nil
}

// Verify consumes a verification token. AlreadyVerified true means the
// account was verified before this call; the response stays success-flavored.
func (s *AccountService) Verify(ctx context.Context, token string) (alreadyVerified bool, err error) {
	if token == "" {
		return false, ErrInvalidToken
	}

	user, err := s.store.Users().GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Generic failure: does not reveal whether the token ever existed.
			return false, ErrInvalidToken
		}
		return false, err
	}

	if user.Verified {
		return true, nil
	}

	if user.TokenExpired(s.now()) {
		// Burn the token so it cannot be replayed after expiry.
		if err := s.store.Users().SetVerification(ctx, user.ID, false, "", time.Time{}); err != nil {
			return false, err
		}
		return false, ErrTokenExpired
	}

	if err := s.store.Users().SetVerification(ctx, user.ID, true, "", time.Time{}); err != nil {
		return false, err
	}

	s.notifier.notifyBestEffort(ctx, NotifyRequest{
		RecipientID: user.ID,
		Message:     "Your email address has been verified. Welcome to TripBuddy!",
		Type:        domain.NotificationAccountVerified,
	})

	return false, nil
}

// ResendVerification issues a fresh token for an unverified account and
// resends the mail. The response is identical whether or not the email is
// registered, for enumeration resistance.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return ErrInvalidEmail
	}

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	if user.Verified {
		return nil
	}

	token, err := newVerifyToken()
	if err != nil {
		return err
	}

	if err := s.store.Users().SetVerification(ctx, user.ID, false, token, s.now().Add(s.tokenTTL)); err != nil {
		return err
	}

	user.VerifyToken = token
	s.sendVerificationMail(ctx, user)
	return nil
}

// Login checks credentials and verified status, records the login time and
// emits a login_success notification.
func (s *AccountService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Verified {
		return nil, ErrNotVerified
	}

	now := s.now()
	if err := s.store.Users().RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = now

	s.notifier.notifyBestEffort(ctx, NotifyRequest{
		RecipientID: user.ID,
		Message:     fmt.Sprintf("Welcome back, %s!", user.Username),
		Type:        domain.NotificationLoginSuccess,
	})

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AccountService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

// ActivateOffering enables posting rides for the user. One-way.
func (s *AccountService) ActivateOffering(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.CanOfferRides {
		return nil, ErrOfferingAlreadyActive
	}

	if err := s.store.Users().SetCapabilities(ctx, userID, true, user.CanFindRides); err != nil {
		return nil, err
	}
	user.CanOfferRides = true
	return user, nil
}

// ActivateFinding enables searching and booking rides for the user. One-way.
func (s *AccountService) ActivateFinding(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.CanFindRides {
		return nil, ErrFindingAlreadyActive
	}

	if err := s.store.Users().SetCapabilities(ctx, userID, user.CanOfferRides, true); err != nil {
		return nil, err
	}
	user.CanFindRides = true
	return user, nil
}

// DeleteAccount irreversibly removes the user together with their rides,
// bookings touching those rides, and notifications, as one transaction.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = tx.Bookings().DeleteByRideCreator(ctx, userID); err != nil {
		return err
	}
	if err = tx.Bookings().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err = tx.Notifications().DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err = tx.Rides().DeleteByCreator(ctx, userID); err != nil {
		return err
	}
	if err = tx.Users().Delete(ctx, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// sendVerificationMail dispatches the verification link. Failure is logged
// and reported to the caller via the return value, never as an error: the
// account stands regardless.
func (s *AccountService) sendVerificationMail(ctx context.Context, user *domain.User) bool {
	link := fmt.Sprintf("%s?token=%s", s.verifyBaseURL, user.VerifyToken)
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease verify your TripBuddy account by opening the link below within %d minutes:\n\n%s\n\nIf you did not register, you can ignore this message.\n",
		user.Username, int(s.tokenTTL.Minutes()), link,
	)

	if err := s.mailer.Send(ctx, user.Email, "Verify your TripBuddy account", body); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("verification mail delivery failed")
		return false
	}
	return true
}

func parseRole(role string) (canOffer, canFind bool, err error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "renter":
		return false, true, nil
	case "provider":
		return true, false, nil
	case "both":
		return true, true, nil
	default:
		return false, false, ErrInvalidRole
	}
}

// newVerifyToken returns a 64-character hex token from a CSPRNG.
func newVerifyToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
