package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"

	"github.com/carhire/apiserver/internal/auth"
	"github.com/carhire/apiserver/internal/logging"
	"github.com/carhire/apiserver/internal/notify"
	"github.com/carhire/apiserver/internal/ratelimit"
	"github.com/carhire/apiserver/internal/store"
	"github.com/carhire/apiserver/types"
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultRegion   = "US"
	maxPasswordLen  = 72
	dummyPassword   = "carhire-timing-equalizer"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id int) (types.Customer, error)
	GetByEmail(ctx context.Context, email string) (types.Customer, error)
	Create(ctx context.Context, customer types.Customer) (types.Customer, error)
	UpdateProfile(ctx context.Context, customer types.Customer) (types.Customer, error)
	MarkVerified(ctx context.Context, email, code string) (int, error)
	ReplaceVerificationCode(ctx context.Context, email, code string) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type CodeGenerator interface {
	Generate() (string, error)
}

type TokenIssuer interface {
	Issue(claims auth.Claims, ttl time.Duration) (string, error)
}

// AccountDeps collects the collaborators of AccountService.
type AccountDeps struct {
	Repo     AccountRepository
	Hasher   PasswordHasher
	Codes    CodeGenerator
	Tokens   TokenIssuer
	Notifier notify.Dispatcher
	// Attempts bounds verification and resend attempts per email. Nil allows all.
	Attempts ratelimit.Limiter

	TokenTTL      time.Duration
	LoginTokenTTL time.Duration
	// PhoneRegion is the ISO country assumed for numbers without a
	// country code.
	PhoneRegion string
}

// AccountService runs registration, login, verification and admin creation.
type AccountService struct {
	repo     AccountRepository
	hasher   PasswordHasher
	codes    CodeGenerator
	tokens   TokenIssuer
	notifier notify.Dispatcher
	attempts ratelimit.Limiter

	tokenTTL      time.Duration
	loginTokenTTL time.Duration
	phoneRegion   string

	// dummyHash is compared against when the email is unknown so that a
	// missing account costs the same as a wrong password.
	dummyHash string
}

func NewAccountService(deps AccountDeps) (*AccountService, error) {
	if deps.Repo == nil || deps.Hasher == nil || deps.Codes == nil || deps.Tokens == nil || deps.Notifier == nil {
		return nil, errors.New("account service: missing dependency")
	}
	dummy, err := deps.Hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	s := &AccountService{
		repo:          deps.Repo,
		hasher:        deps.Hasher,
		codes:         deps.Codes,
		tokens:        deps.Tokens,
		notifier:      deps.Notifier,
		attempts:      deps.Attempts,
		tokenTTL:      deps.TokenTTL,
		loginTokenTTL: deps.LoginTokenTTL,
		phoneRegion:   strings.ToUpper(strings.TrimSpace(deps.PhoneRegion)),
		dummyHash:     dummy,
	}
	if s.attempts == nil {
		s.attempts = ratelimit.Unlimited{}
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = defaultTokenTTL
	}
	if s.loginTokenTTL <= 0 {
		s.loginTokenTTL = defaultTokenTTL
	}
	if s.phoneRegion == "" {
		s.phoneRegion = defaultRegion
	}
	return s, nil
}

// AccountResult is an account together with a freshly issued token.
type AccountResult struct {
	Account types.Customer
	Token   string
}

type RegisterInput struct {
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Password    string  `json:"password"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&in.FirstName, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.LastName, validation.Required, validation.Length(1, 255)),
		validation.Field(&in.Password, validation.Required, validation.By(passwordFits)),
		validation.Field(&in.PhoneNumber, validation.Length(0, 50)),
	)
}

type CreateAdminInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	// Role must be present in the request but is always stored as admin.
	Role string `json:"role"`
}

// Complete reports whether every required admin field is present.
func (in CreateAdminInput) Complete() bool {
	for _, v := range []string{in.FirstName, in.LastName, in.Email, in.Password, in.Role} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// ProfileInput carries a self-service profile update. Nil fields are left unchanged.
type ProfileInput struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
	Password    *string `json:"password"`
}

func (in ProfileInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FirstName, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&in.LastName, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&in.PhoneNumber, validation.Length(0, 50)),
		validation.Field(&in.Password, validation.NilOrNotEmpty, validation.By(passwordFits)),
	)
}

func passwordFits(value interface{}) error {
	v, _ := validation.Indirect(value)
	s, _ := v.(string)
	if len(s) > maxPasswordLen {
		return errors.New("must be at most 72 bytes")
	}
	return nil
}

// normalizePhone formats a phone number as E.164. A blank number becomes nil.
func (s *AccountService) normalizePhone(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	num, err := phonenumbers.Parse(*raw, s.phoneRegion)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return nil, invalidRequest(errors.New("phoneNumber: must be a valid phone number"))
	}
	formatted := phonenumbers.Format(num, phonenumbers.E164)
	return &formatted, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified user account, emails its verification code
// and returns the account with a token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (AccountResult, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := in.Validate(); err != nil {
		return AccountResult{}, invalidRequest(err)
	}
	phone, err := s.normalizePhone(in.PhoneNumber)
	if err != nil {
		return AccountResult{}, err
	}

	return s.create(ctx, types.Customer{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: phone,
		Address:     in.Address,
		Role:        types.RoleUser,
	}, in.Password)
}

// CreateAdmin is Register for administrators. The stored role is always admin.
func (s *AccountService) CreateAdmin(ctx context.Context, in CreateAdminInput) (AccountResult, error) {
	if !in.Complete() {
		return AccountResult{}, ErrMissingAdminFields
	}
	reg := RegisterInput{
		Email:     normalizeEmail(in.Email),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Password:  in.Password,
	}
	if err := reg.Validate(); err != nil {
		return AccountResult{}, invalidRequest(err)
	}

	return s.create(ctx, types.Customer{
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Email:     reg.Email,
		Role:      types.RoleAdmin,
	}, reg.Password)
}

func (s *AccountService) create(ctx context.Context, customer types.Customer, password string) (AccountResult, error) {
	code, err := s.codes.Generate()
	if err != nil {
		return AccountResult{}, fmt.Errorf("generate verification code: %w", err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AccountResult{}, fmt.Errorf("hash password: %w", err)
	}

	customer.PasswordHash = hash
	customer.VerificationCode = &code
	customer.Verified = false

	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return AccountResult{}, ErrDuplicateAccount
		}
		return AccountResult{}, fmt.Errorf("create account: %w", err)
	}

	s.notifyCreated(ctx, created, code)

	token, err := s.issue(created, s.tokenTTL)
	if err != nil {
		return AccountResult{}, err
	}
	return AccountResult{Account: created, Token: token}, nil
}

// notifyCreated sends the verification and welcome emails. Failures are
// logged and do not undo the registration.
func (s *AccountService) notifyCreated(ctx context.Context, customer types.Customer, code string) {
	logger := logging.FromContext(ctx)
	if err := s.notifier.SendVerification(ctx, customer.Email, customer.FirstName, code); err != nil {
		logger.WarnContext(ctx, "verification email not dispatched", "customer_id", customer.ID, "err", err)
	}
	if err := s.notifier.SendWelcome(ctx, customer.Email, customer.FirstName); err != nil {
		logger.WarnContext(ctx, "welcome email not dispatched", "customer_id", customer.ID, "err", err)
	}
}

// Login checks the password for email and returns the account with a token.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (AccountResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AccountResult{}, ErrMissingCredentials
	}

	customer, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return AccountResult{}, ErrInvalidCredentials
		}
		return AccountResult{}, fmt.Errorf("load account: %w", err)
	}
	if !s.hasher.Verify(password, customer.PasswordHash) {
		return AccountResult{}, ErrInvalidCredentials
	}

	token, err := s.issue(customer, s.loginTokenTTL)
	if err != nil {
		return AccountResult{}, err
	}
	return AccountResult{Account: customer, Token: token}, nil
}

// VerifyCode marks the account verified when code matches the code stored
// for email. A code can be used once.
func (s *AccountService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return invalidRequest(errors.New("email and code are required"))
	}

	if err := s.allow(ctx, "verify:"+email); err != nil {
		return err
	}

	id, err := s.repo.MarkVerified(ctx, email, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidVerificationCode
		}
		return fmt.Errorf("verify account: %w", err)
	}
	logging.FromContext(ctx).InfoContext(ctx, "account verified", "customer_id", id)
	return nil
}

// ResendCode replaces the code of an unverified account and emails it again.
// Unknown and already verified emails succeed without doing anything.
func (s *AccountService) ResendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return invalidRequest(fmt.Errorf("email: %v", err))
	}

	if err := s.allow(ctx, "resend:"+email); err != nil {
		return err
	}

	customer, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load account: %w", err)
	}
	if customer.Verified {
		return nil
	}

	code, err := s.codes.Generate()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}
	if err := s.repo.ReplaceVerificationCode(ctx, email, code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("store verification code: %w", err)
	}

	if err := s.notifier.SendVerification(ctx, customer.Email, customer.FirstName, code); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "verification email not dispatched", "customer_id", customer.ID, "err", err)
	}
	return nil
}

// Me returns the account with the given id.
func (s *AccountService) Me(ctx context.Context, id int) (types.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies a self-service update. Role, email and verification
// state cannot be changed here.
func (s *AccountService) UpdateProfile(ctx context.Context, id int, in ProfileInput) (types.Customer, error) {
	if err := in.Validate(); err != nil {
		return types.Customer{}, invalidRequest(err)
	}

	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.Customer{}, err
	}

	if in.FirstName != nil {
		customer.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		customer.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.PhoneNumber != nil {
		phone, err := s.normalizePhone(in.PhoneNumber)
		if err != nil {
			return types.Customer{}, err
		}
		customer.PhoneNumber = phone
	}
	if in.Address != nil {
		customer.Address = in.Address
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return types.Customer{}, fmt.Errorf("hash password: %w", err)
		}
		customer.PasswordHash = hash
	}

	return s.repo.UpdateProfile(ctx, customer)
}

func (s *AccountService) allow(ctx context.Context, key string) error {
	ok, err := s.attempts.Allow(ctx, key)
	if err != nil {
		return fmt.Errorf("attempt policy: %w", err)
	}
	if !ok {
		return ErrTooManyAttempts
	}
	return nil
}

func (s *AccountService) issue(customer types.Customer, ttl time.Duration) (string, error) {
	token, err := s.tokens.Issue(auth.Claims{
		AccountID: customer.ID,
		Role:      customer.Role,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
	}, ttl)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
