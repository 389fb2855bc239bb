// Package saves manages named layouts on top of a store.
package saves

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/festmap/festmap/backend-go/internal/document"
	"github.com/festmap/festmap/backend-go/internal/store"
)

var (
	ErrNotFound    = store.ErrNotFound
	ErrInvalidName = errors.New("invalid save name")
)

type Service struct {
	store    store.Store
	validate *validator.Validate
}

func NewService(s store.Store) *Service {
	return &Service{store: s, validate: validator.New()}
}

type saveName struct {
	Name string `validate:"required,max=128"`
}

func (s *Service) checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if err := s.validate.Struct(saveName{Name: name}); err != nil {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return name, nil
}

// List returns the names of all saves in ascending order.
func (s *Service) List(ctx context.Context) ([]string, error) {
	names, err := s.store.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	return names, nil
}

// Save stores data under name, replacing an existing save. data must be a
// decodable layout.
func (s *Service) Save(ctx context.Context, name string, data []byte) error {
	name, err := s.checkName(name)
	if err != nil {
		return err
	}
	if _, err := document.Decode(source(name), data); err != nil {
		return err
	}
	if err := s.store.Set(ctx, name, string(data)); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	return nil
}

// Load decodes the save called name. A corrupt save yields a
// document.DeserializationError carrying the raw payload.
func (s *Service) Load(ctx context.Context, name string) (*document.Envelope, error) {
	raw, err := s.Raw(ctx, name)
	if err != nil {
		return nil, err
	}
	return document.Decode(source(name), []byte(raw))
}

// Raw returns the stored payload without decoding it.
func (s *Service) Raw(ctx context.Context, name string) (string, error) {
	raw, err := s.store.Get(ctx, name)
	if err != nil {
		return "", fmt.Errorf("load %q: %w", name, err)
	}
	return raw, nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.store.Remove(ctx, name); err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	return nil
}

func source(name string) string {
	return fmt.Sprintf("Save '%s'", name)
}
