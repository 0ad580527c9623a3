package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// FSStore implements ObjectStore on the local filesystem. Each bucket is a
// directory under Root; signed URLs carry an HS256 token naming the object.
type FSStore struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewFSStore creates a store rooted at root. baseURL prefixes signed URLs.
func NewFSStore(root, baseURL, secret string) (*FSStore, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("storage: signing secret is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &FSStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		now:     time.Now,
	}, nil
}

// WithClock replaces the time source used for signing and verification.
func (s *FSStore) WithClock(now func() time.Time) *FSStore {
	s.now = now
	return s
}

func (s *FSStore) Put(ctx context.Context, bucket, key string, body io.Reader, contentType string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dst, err := s.objectPath(bucket, key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("creating object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp object: %w", err)
	}
	n, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("writing object %s/%s: %w", bucket, key, errors.Join(copyErr, closeErr))
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("storing object %s/%s: %w", bucket, key, err)
	}
	return n, nil
}

func (s *FSStore) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting object %s/%s: %w", bucket, key, err)
	}
	return nil
}

type signedClaims struct {
	Bucket string `json:"bkt"`
	Key    string `json:"key"`
	jwt.RegisteredClaims
}

func (s *FSStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := s.objectPath(bucket, key); err != nil {
		return "", err
	}
	if ttl <= 0 {
		return "", fmt.Errorf("signed url ttl must be positive, got %s", ttl)
	}
	now := s.now()
	claims := signedClaims{
		Bucket: bucket,
		Key:    key,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}
	return s.baseURL + "/" + path.Join(bucket, key) + "?token=" + url.QueryEscape(token), nil
}

// Resolve verifies a signed URL token and returns the file it grants.
func (s *FSStore) Resolve(token string) (string, error) {
	var claims signedClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	p, err := s.objectPath(claims.Bucket, claims.Key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("stat object: %w", err)
	}
	return p, nil
}

// TokenFromURL extracts the token query parameter of a signed URL.
func TokenFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	token := u.Query().Get("token")
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

// objectPath maps bucket/key to a path under root, rejecting anything that
// would escape it.
func (s *FSStore) objectPath(bucket, key string) (string, error) {
	if !validSegment(bucket) || key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidKey, bucket, key)
	}
	for _, part := range strings.Split(key, "/") {
		if !validSegment(part) {
			return "", fmt.Errorf("%w: %s/%s", ErrInvalidKey, bucket, key)
		}
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(key)), nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `\`+"\x00")
}
