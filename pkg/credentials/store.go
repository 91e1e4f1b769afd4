// Package credentials caches a subject's credentials in Redis so they can be
// dropped in one call when the account is locked or disabled.
//
// Keys are laid out as errkit:credentials:<subject>:<name>. Clear removes
// every key of the subject with SCAN and DEL, so it never blocks Redis the
// way KEYS would.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "errkit:credentials:"

var (
	// ErrNoSubject indicates the store was created without a subject.
	ErrNoSubject = errors.New("credential store requires a subject")

	// ErrNotFound indicates the requested credential is not cached.
	ErrNotFound = errors.New("credential not found")

	credentialClearsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errkit_credential_clears_total",
		Help: "Total number of credential clears by result (success, error)",
	}, []string{"result"})
)

// Credential is one cached credential.
type Credential struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the credential has passed its expiry.
func (c *Credential) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// RedisStore holds the credentials of one subject.
type RedisStore struct {
	redis   *redis.Client
	subject string
	logger  zerolog.Logger
}

// NewRedisStore creates a store for subject.
func NewRedisStore(redisClient *redis.Client, subject string, logger zerolog.Logger) (*RedisStore, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client cannot be nil")
	}
	if subject == "" {
		return nil, ErrNoSubject
	}
	return &RedisStore{
		redis:   redisClient,
		subject: subject,
		logger:  logger,
	}, nil
}

func (s *RedisStore) key(name string) string {
	return keyPrefix + s.subject + ":" + name
}

// Put caches cred under name. A zero ttl keeps it until cleared.
func (s *RedisStore) Put(ctx context.Context, name string, cred Credential, ttl time.Duration) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(name), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// PutToken caches a JWT access token under name. The expiry is read from
// the token's exp claim and becomes the key's TTL. The signature is not
// verified; the store only needs to know when to forget the token.
func (s *RedisStore) PutToken(ctx context.Context, name, token, refreshToken string) error {
	cred := Credential{Token: token, RefreshToken: refreshToken}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("read exp claim: %w", err)
	}

	var ttl time.Duration
	if exp != nil {
		cred.ExpiresAt = exp.Time
		ttl = time.Until(exp.Time)
		if ttl <= 0 {
			return fmt.Errorf("token expired at %s", exp.Time.Format(time.RFC3339))
		}
	}
	return s.Put(ctx, name, cred, ttl)
}

// Get returns the credential cached under name.
func (s *RedisStore) Get(ctx context.Context, name string) (*Credential, error) {
	data, err := s.redis.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}
	return &cred, nil
}

// Clear removes every credential of the subject.
func (s *RedisStore) Clear(ctx context.Context) error {
	removed, err := s.clear(ctx)
	if err != nil {
		credentialClearsTotal.WithLabelValues("error").Inc()
		return err
	}
	credentialClearsTotal.WithLabelValues("success").Inc()

	s.logger.Info().
		Str("subject", s.subject).
		Int("removed", removed).
		Msg("Cleared cached credentials")
	return nil
}

func (s *RedisStore) clear(ctx context.Context) (int, error) {
	removed := 0
	iter := s.redis.Scan(ctx, 0, keyPrefix+s.subject+":*", 100).Iterator()

	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.redis.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		removed += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	if err := flush(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Subject returns the subject the store is scoped to.
func (s *RedisStore) Subject() string {
	return s.subject
}
