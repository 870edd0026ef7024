package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/service"
)

const testTokenTTL = 5 * time.Minute

func newAccountService(store *MockStore, mailer *MockMailer, push *MockPublisher) *service.AccountService {
	notifier := service.NewNotificationService(store, push)
	return service.NewAccountService(store, mailer, notifier, testTokenTTL, "http://localhost:8080/v1/auth/verify")
}

func validRegisterRequest() service.RegisterRequest {
	return service.RegisterRequest{
		Username:        "carla",
		Email:           "carla@example.com",
		Phone:           "+4915112345678",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
		Role:            "renter",
	}
}

// ──────────────────────────────────────────────
// REGISTRATION
// ──────────────────────────────────────────────

func TestRegister_ValidInput_CreatesUnverifiedAccount(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	mailer := NewMockMailer()
	accountService := newAccountService(store, mailer, NewMockPublisher())

	result, err := accountService.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	user := result.User
	if user.Verified {
		t.Error("expected account to start unverified")
	}
	if user.VerifyToken == "" {
		t.Error("expected a verification token to be issued")
	}
	if len(user.VerifyToken) != 64 {
		t.Errorf("expected a 64-character hex token, got %d characters", len(user.VerifyToken))
	}
	if !user.CanFindRides || user.CanOfferRides {
		t.Errorf("expected renter capabilities, got offer=%v find=%v", user.CanOfferRides, user.CanFindRides)
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Error("password must not be stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}

	if !result.MailSent {
		t.Error("expected the verification mail to be sent")
	}
	mail := mailer.LastMail()
	if mail == nil {
		t.Fatal("expected a mail to be recorded")
	}
	if mail.To != "carla@example.com" {
		t.Errorf("expected mail to carla@example.com, got %s", mail.To)
	}
	if !strings.Contains(mail.Body, user.VerifyToken) {
		t.Error("expected the mail body to carry the verification token")
	}
}

func TestRegister_RoleMapsToCapabilities(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		role      string
		wantOffer bool
		wantFind  bool
		wantLabel string
	}{
		{"renter", false, true, "Renter"},
		{"provider", true, false, "Provider"},
		{"both", true, true, "Renter, Provider"},
		{"Provider", true, false, "Provider"}, // case-insensitive
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.role, func(t *testing.T) {
			t.Parallel()

			store := NewMockStore()
			accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

			req := validRegisterRequest()
			req.Role = tc.role
			result, err := accountService.Register(context.Background(), req)
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if result.User.CanOfferRides != tc.wantOffer || result.User.CanFindRides != tc.wantFind {
				t.Errorf("role %q: got offer=%v find=%v", tc.role, result.User.CanOfferRides, result.User.CanFindRides)
			}
			if got := result.User.RoleLabel(); got != tc.wantLabel {
				t.Errorf("role %q: expected label %q, got %q", tc.role, tc.wantLabel, got)
			}
		})
	}
}

func TestRegister_InvalidInput_Rejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		mutate  func(*service.RegisterRequest)
		wantErr error
	}{
		{"missing username", func(r *service.RegisterRequest) { r.Username = "" }, service.ErrInvalidUsername},
		{"missing email", func(r *service.RegisterRequest) { r.Email = "" }, service.ErrInvalidEmail},
		{"malformed email", func(r *service.RegisterRequest) { r.Email = "not-an-email" }, service.ErrInvalidEmail},
		{"missing password", func(r *service.RegisterRequest) { r.Password = ""; r.ConfirmPassword = "" }, service.ErrInvalidPassword},
		{"password mismatch", func(r *service.RegisterRequest) { r.ConfirmPassword = "different" }, service.ErrPasswordMismatch},
		{"unknown role", func(r *service.RegisterRequest) { r.Role = "admin" }, service.ErrInvalidRole},
		{"missing role", func(r *service.RegisterRequest) { r.Role = "" }, service.ErrInvalidRole},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := NewMockStore()
			accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

			req := validRegisterRequest()
			tc.mutate(&req)
			_, err := accountService.Register(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}
			if got := store.UserRepo.CountUsers(); got != 0 {
				t.Errorf("expected no account created, got %d", got)
			}
		})
	}
}

func TestRegister_DuplicateIdentity_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	if _, err := accountService.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}

	testCases := []struct {
		name    string
		mutate  func(*service.RegisterRequest)
		wantErr error
	}{
		{"same username", func(r *service.RegisterRequest) { r.Email = "other@example.com"; r.Phone = "+10000000001" }, service.ErrUsernameTaken},
		{"same email", func(r *service.RegisterRequest) { r.Username = "carla2"; r.Phone = "+10000000002" }, service.ErrEmailTaken},
		{"same phone", func(r *service.RegisterRequest) { r.Username = "carla3"; r.Email = "carla3@example.com" }, service.ErrPhoneTaken},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := validRegisterRequest()
			tc.mutate(&req)
			_, err := accountService.Register(context.Background(), req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got: %v", tc.wantErr, err)
			}
		})
	}

	if got := store.UserRepo.CountUsers(); got != 1 {
		t.Errorf("expected 1 account, got %d", got)
	}
}

func TestRegister_MailFailure_AccountStillCreated(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	mailer := NewMockMailer()
	mailer.SendError = ErrMockMailDown
	accountService := newAccountService(store, mailer, NewMockPublisher())

	result, err := accountService.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.MailSent {
		t.Error("expected MailSent false")
	}
	if got := store.UserRepo.CountUsers(); got != 1 {
		t.Errorf("expected the account to exist, got %d users", got)
	}
}

// ──────────────────────────────────────────────
// EMAIL VERIFICATION
// ──────────────────────────────────────────────

func TestVerify_ValidToken_ActivatesAccount(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	push := NewMockPublisher()
	accountService := newAccountService(store, NewMockMailer(), push)

	result, err := accountService.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}
	token := result.User.VerifyToken

	already, err := accountService.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if already {
		t.Error("expected alreadyVerified false on first use")
	}

	stored := store.UserRepo.GetUser(result.User.ID)
	if !stored.Verified {
		t.Error("expected account to be verified")
	}
	if stored.VerifyToken != "" {
		t.Error("expected token to be cleared after use")
	}
	if got := store.NotificationRepo.CountForUser(result.User.ID); got != 1 {
		t.Errorf("expected an account_verified notification, got %d", got)
	}
}

func TestVerify_TokenIsSingleUse(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	result, err := accountService.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}
	token := result.User.VerifyToken

	if _, err := accountService.Verify(context.Background(), token); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}

	// The consumed token no longer matches anything.
	_, err = accountService.Verify(context.Background(), token)
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on reuse, got: %v", err)
	}
}

func TestVerify_UnknownOrEmptyToken_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	for _, token := range []string{"", "deadbeef"} {
		_, err := accountService.Verify(context.Background(), token)
		if !errors.Is(err, service.ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got: %v", token, err)
		}
	}
}

func TestVerify_ExpiredToken_BurnedAndRejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	user := &domain.User{
		ID:             "user-1",
		Username:       "dora",
		Email:          "dora@example.com",
		VerifyToken:    "expired-token",
		TokenExpiresAt: time.Now().Add(-time.Minute),
	}
	store.UserRepo.AddUser(user)

	_, err := accountService.Verify(context.Background(), "expired-token")
	if !errors.Is(err, service.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got: %v", err)
	}

	stored := store.UserRepo.GetUser(user.ID)
	if stored.Verified {
		t.Error("expected account to stay unverified")
	}
	if stored.VerifyToken != "" {
		t.Error("expected the expired token to be burned")
	}

	// A second attempt with the burned token is just an unknown token.
	_, err = accountService.Verify(context.Background(), "expired-token")
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after burn, got: %v", err)
	}
}

func TestVerify_AlreadyVerified_ReportsSuccess(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	user := &domain.User{
		ID:          "user-1",
		Username:    "erik",
		Email:       "erik@example.com",
		Verified:    true,
		VerifyToken: "stale-token",
	}
	store.UserRepo.AddUser(user)

	already, err := accountService.Verify(context.Background(), "stale-token")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !already {
		t.Error("expected alreadyVerified true")
	}
}

func TestResendVerification_IssuesFreshToken(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	mailer := NewMockMailer()
	accountService := newAccountService(store, mailer, NewMockPublisher())

	result, err := accountService.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}
	oldToken := result.User.VerifyToken

	if err := accountService.ResendVerification(context.Background(), "carla@example.com"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	stored := store.UserRepo.GetUser(result.User.ID)
	if stored.VerifyToken == oldToken {
		t.Error("expected a fresh token to replace the old one")
	}
	if mailer.CountSent() != 2 {
		t.Errorf("expected 2 mails, got %d", mailer.CountSent())
	}

	// The superseded token must be dead.
	_, err = accountService.Verify(context.Background(), oldToken)
	if !errors.Is(err, service.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for the superseded token, got: %v", err)
	}
	// The fresh one works.
	if _, err := accountService.Verify(context.Background(), stored.VerifyToken); err != nil {
		t.Fatalf("fresh token failed to verify: %v", err)
	}
}

func TestResendVerification_UnknownOrVerifiedEmail_SilentNoOp(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	mailer := NewMockMailer()
	accountService := newAccountService(store, mailer, NewMockPublisher())

	store.UserRepo.AddUser(&domain.User{
		ID: "user-1", Username: "fred", Email: "fred@example.com", Verified: true,
	})

	// Unknown address and already-verified address both return success
	// without sending anything.
	if err := accountService.ResendVerification(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected no error for unknown email, got: %v", err)
	}
	if err := accountService.ResendVerification(context.Background(), "fred@example.com"); err != nil {
		t.Fatalf("expected no error for verified email, got: %v", err)
	}
	if mailer.CountSent() != 0 {
		t.Errorf("expected no mails, got %d", mailer.CountSent())
	}
}

// ──────────────────────────────────────────────
// LOGIN
// ──────────────────────────────────────────────

func TestLogin_VerifiedAccount_Succeeds(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	push := NewMockPublisher()
	accountService := newAccountService(store, NewMockMailer(), push)

	result, err := accountService.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}
	if _, err := accountService.Verify(context.Background(), result.User.VerifyToken); err != nil {
		t.Fatalf("setup verify failed: %v", err)
	}

	user, err := accountService.Login(context.Background(), "carla", "s3cret-pass")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if user.LastLoginAt.IsZero() {
		t.Error("expected last login to be recorded")
	}

	msgs := push.MessagesFor(user.ID)
	var loginPushes int
	for _, msg := range msgs {
		if msg.Payload["type"] == string(domain.NotificationLoginSuccess) {
			loginPushes++
		}
	}
	if loginPushes != 1 {
		t.Errorf("expected 1 login_success push, got %d", loginPushes)
	}
}

func TestLogin_UnverifiedAccount_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	if _, err := accountService.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}

	_, err := accountService.Login(context.Background(), "carla", "s3cret-pass")
	if !errors.Is(err, service.ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got: %v", err)
	}
}

func TestLogin_BadCredentials_OneGenericError(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	result, err := accountService.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("setup registration failed: %v", err)
	}
	if _, err := accountService.Verify(context.Background(), result.User.VerifyToken); err != nil {
		t.Fatalf("setup verify failed: %v", err)
	}

	// Unknown user and wrong password yield the same error, so a caller
	// cannot probe which usernames exist.
	_, errUnknown := accountService.Login(context.Background(), "nobody", "whatever")
	_, errWrongPass := accountService.Login(context.Background(), "carla", "wrong-pass")

	if !errors.Is(errUnknown, service.ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got: %v", errUnknown)
	}
	if !errors.Is(errWrongPass, service.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got: %v", errWrongPass)
	}
}

// ──────────────────────────────────────────────
// CAPABILITY ACTIVATION
// ──────────────────────────────────────────────

func TestActivate_AddsSecondCapability(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	store.UserRepo.AddUser(&domain.User{
		ID: "user-1", Username: "gina", Email: "gina@example.com",
		Verified: true, CanFindRides: true,
	})

	user, err := accountService.ActivateOffering(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !user.CanOfferRides || !user.CanFindRides {
		t.Errorf("expected both capabilities, got offer=%v find=%v", user.CanOfferRides, user.CanFindRides)
	}
	if got := user.RoleLabel(); got != "Renter, Provider" {
		t.Errorf("expected label 'Renter, Provider', got %q", got)
	}

	// Activation is one-way and not repeatable.
	_, err = accountService.ActivateOffering(context.Background(), "user-1")
	if !errors.Is(err, service.ErrOfferingAlreadyActive) {
		t.Fatalf("expected ErrOfferingAlreadyActive, got: %v", err)
	}
}

func TestActivateFinding_AlreadyActive_Rejected(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	store.UserRepo.AddUser(&domain.User{
		ID: "user-1", Username: "hugo", Email: "hugo@example.com",
		Verified: true, CanFindRides: true,
	})

	_, err := accountService.ActivateFinding(context.Background(), "user-1")
	if !errors.Is(err, service.ErrFindingAlreadyActive) {
		t.Fatalf("expected ErrFindingAlreadyActive, got: %v", err)
	}
}

// ──────────────────────────────────────────────
// ACCOUNT DELETION
// ──────────────────────────────────────────────

func TestDeleteAccount_CascadesAsOneUnit(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	// Victim offers a ride that someone else booked, booked a stranger's
	// ride themselves, and has notifications in both directions.
	victim := &domain.User{ID: "victim", Username: "ines", Email: "ines@example.com", Verified: true, CanOfferRides: true, CanFindRides: true}
	other := &domain.User{ID: "other", Username: "jan", Email: "jan@example.com", Verified: true, CanOfferRides: true, CanFindRides: true}
	store.UserRepo.AddUser(victim)
	store.UserRepo.AddUser(other)

	store.RideRepo.AddRide(&domain.Ride{ID: "victim-ride", CreatorID: "victim", Status: domain.RideStatusActive, Seats: 2})
	store.RideRepo.AddRide(&domain.Ride{ID: "other-ride", CreatorID: "other", Status: domain.RideStatusActive, Seats: 2})

	store.BookingRepo.Create(context.Background(), &domain.Booking{ID: "b1", UserID: "other", RideID: "victim-ride", SeatsBooked: 1})
	store.BookingRepo.Create(context.Background(), &domain.Booking{ID: "b2", UserID: "victim", RideID: "other-ride", SeatsBooked: 1})

	store.NotificationRepo.AddNotification(&domain.Notification{ID: "n1", UserID: "victim", Message: "for victim"})
	store.NotificationRepo.AddNotification(&domain.Notification{ID: "n2", UserID: "other", SenderID: "victim", Message: "from victim"})
	store.NotificationRepo.AddNotification(&domain.Notification{ID: "n3", UserID: "other", Message: "unrelated"})

	if err := accountService.DeleteAccount(context.Background(), "victim"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if store.UserRepo.GetUser("victim") != nil {
		t.Error("expected the user row to be gone")
	}
	if store.RideRepo.GetRide("victim-ride") != nil {
		t.Error("expected the victim's ride to be gone")
	}
	if store.RideRepo.GetRide("other-ride") == nil {
		t.Error("expected the stranger's ride to survive")
	}
	if got := store.BookingRepo.CountBookings(); got != 0 {
		t.Errorf("expected bookings on and by the victim to be gone, got %d", got)
	}
	if got := store.NotificationRepo.CountNotifications(); got != 1 {
		t.Errorf("expected only the unrelated notification to survive, got %d", got)
	}
	if store.NotificationRepo.GetNotification("n3") == nil {
		t.Error("expected the unrelated notification to survive")
	}
}

func TestDeleteAccount_MidwayFailure_LeavesEverythingInPlace(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	victim := &domain.User{ID: "victim", Username: "kai", Email: "kai@example.com", Verified: true}
	store.UserRepo.AddUser(victim)
	store.RideRepo.AddRide(&domain.Ride{ID: "r1", CreatorID: "victim", Status: domain.RideStatusActive, Seats: 1})
	store.NotificationRepo.AddNotification(&domain.Notification{ID: "n1", UserID: "victim"})

	store.CommitError = ErrMockDBFailure

	err := accountService.DeleteAccount(context.Background(), "victim")
	if !errors.Is(err, ErrMockDBFailure) {
		t.Fatalf("expected the commit failure, got: %v", err)
	}

	// Nothing partial may remain applied.
	if store.UserRepo.GetUser("victim") == nil {
		t.Error("expected the user to still exist")
	}
	if store.RideRepo.GetRide("r1") == nil {
		t.Error("expected the ride to still exist")
	}
	if got := store.NotificationRepo.CountNotifications(); got != 1 {
		t.Errorf("expected the notification to still exist, got %d", got)
	}
}

func TestDeleteAccount_UnknownUser_NotFound(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	accountService := newAccountService(store, NewMockMailer(), NewMockPublisher())

	err := accountService.DeleteAccount(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected an error for an unknown user")
	}
	if int(store.BeginTxCallCount) != 0 {
		t.Errorf("expected no transaction for an unknown user, got %d", store.BeginTxCallCount)
	}
}
