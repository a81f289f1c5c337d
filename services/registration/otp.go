package registration

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// OTPTTL is the lifetime of one email verification code.
const OTPTTL = 180 * time.Second

const (
	otpKeyPrefix     = "otp:"
	otpSendKeyPrefix = "otpSend:"
	otpSendGuardTTL  = 10 * time.Second
)

var otpCodePattern = regexp.MustCompile(`^\d{6}$`)

// OTP error taxonomy. All of them surface through the same inline error slot
// as validation failures.
var (
	ErrOTPNotFound     = errors.New("no verification code outstanding; please request a new one")
	ErrOTPExpired      = errors.New("verification code expired; please request a new one")
	ErrOTPMalformed    = errors.New("verification code must be 6 digits")
	ErrOTPMismatch     = errors.New("verification code does not match")
	ErrOTPSendInFlight = errors.New("a verification code is already being sent")
)

// OTPChallenge is the stored form of one outstanding code. At most one
// challenge exists per email; issuing a new one replaces it wholesale.
type OTPChallenge struct {
	Code       string    `json:"code"`
	Email      string    `json:"email"`
	IssuedAt   time.Time `json:"issuedAt"`
	TTLSeconds int       `json:"ttlSeconds"`
}

// KVStore is the minimal key-value contract the OTP manager needs. The
// production implementation is Redis; tests substitute an in-memory map.
type KVStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// ErrKeyNotFound is returned by KVStore.Get for absent keys.
var ErrKeyNotFound = errors.New("key not found")

// RedisKVStore adapts a redis client to the KVStore contract.
type RedisKVStore struct {
	client *redis.Client
}

// NewRedisKVStore wraps the given Redis client.
func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return &RedisKVStore{client: client}
}

func (s *RedisKVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisKVStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return val, err
}

func (s *RedisKVStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// OTPNotifier delivers a verification code to the registrant.
type OTPNotifier interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

// OTPManager owns the email-verification sub-flow: issuing codes, enforcing
// the TTL, and verifying submissions.
type OTPManager struct {
	store    KVStore
	notifier OTPNotifier
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewOTPManager creates an OTP manager with the standard 180-second TTL.
func NewOTPManager(store KVStore, notifier OTPNotifier, logger *zap.Logger) *OTPManager {
	return &OTPManager{
		store:    store,
		notifier: notifier,
		logger:   logger,
		ttl:      OTPTTL,
		now:      time.Now,
	}
}

// generateNumericCode produces a cryptographically random code of the given
// number of decimal digits, zero-padded.
func generateNumericCode(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// Request issues a fresh 6-digit code for the email and hands it to the
// notifier. Any previously outstanding code is invalidated and the TTL
// restarts. A short-lived guard key collapses concurrent sends for the same
// email so a double-tap cannot fire two codes.
func (m *OTPManager) Request(ctx context.Context, email string) error {
	acquired, err := m.store.SetNX(ctx, otpSendKeyPrefix+email, "1", otpSendGuardTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire OTP send guard: %w", err)
	}
	if !acquired {
		return ErrOTPSendInFlight
	}
	defer func() {
		if err := m.store.Del(ctx, otpSendKeyPrefix+email); err != nil {
			m.logger.Warn("Failed to release OTP send guard", zap.Error(err))
		}
	}()

	code, err := generateNumericCode(6)
	if err != nil {
		return err
	}

	challenge := OTPChallenge{
		Code:       code,
		Email:      email,
		IssuedAt:   m.now(),
		TTLSeconds: int(m.ttl.Seconds()),
	}
	data, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP challenge: %w", err)
	}
	if err := m.store.Set(ctx, otpKeyPrefix+email, string(data), m.ttl); err != nil {
		return fmt.Errorf("failed to store OTP challenge: %w", err)
	}

	if err := m.notifier.SendOTP(ctx, email, code, m.ttl); err != nil {
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	return nil
}

// Verify checks a submitted code against the outstanding challenge. The code
// is consumed on success. Expiry is checked against the challenge's issue
// time even if the store has not evicted the key yet.
func (m *OTPManager) Verify(ctx context.Context, email, code string) error {
	if !otpCodePattern.MatchString(code) {
		return ErrOTPMalformed
	}

	data, err := m.store.Get(ctx, otpKeyPrefix+email)
	if errors.Is(err, ErrKeyNotFound) {
		return ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve OTP challenge: %w", err)
	}

	var challenge OTPChallenge
	if err := json.Unmarshal([]byte(data), &challenge); err != nil {
		return fmt.Errorf("failed to unmarshal OTP challenge: %w", err)
	}

	if m.now().After(challenge.IssuedAt.Add(time.Duration(challenge.TTLSeconds) * time.Second)) {
		if err := m.store.Del(ctx, otpKeyPrefix+email); err != nil {
			m.logger.Warn("Failed to delete expired OTP", zap.Error(err))
		}
		return ErrOTPExpired
	}
	if challenge.Code != code {
		return ErrOTPMismatch
	}

	if err := m.store.Del(ctx, otpKeyPrefix+email); err != nil {
		m.logger.Warn("Failed to delete OTP after verification", zap.Error(err))
	}
	return nil
}

// Clear drops any outstanding challenge for the email. Used when the
// registrant dismisses the verification dialog; the draft itself survives.
func (m *OTPManager) Clear(ctx context.Context, email string) error {
	return m.store.Del(ctx, otpKeyPrefix+email)
}
