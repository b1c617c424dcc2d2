package api

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"bi_dashboard/internal/config"
)

// TokenSource yields the bearer token. It is consulted on every request and
// never cached, so a token rotated on disk is picked up by the next call.
type TokenSource interface {
	Token() (string, error)
}

type StaticToken string

func (t StaticToken) Token() (string, error) {
	token := strings.TrimSpace(string(t))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

type FileToken struct {
	Path string
}

func (t FileToken) Token() (string, error) {
	if strings.TrimSpace(t.Path) == "" {
		return "", ErrMissingToken
	}
	data, err := os.ReadFile(t.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrMissingToken
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func NewTokenSource(cfg config.Config) TokenSource {
	if strings.TrimSpace(cfg.APIToken) != "" {
		return StaticToken(cfg.APIToken)
	}
	return FileToken{Path: cfg.TokenFile}
}
