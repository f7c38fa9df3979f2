package watch

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"chronikwatch/internal/models"
	"chronikwatch/internal/wallet"

	"github.com/google/uuid"
)

var (
	ErrMissingLabel      = errors.New("missing label")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidScript     = errors.New("invalid script identity")
	ErrXpubNotConfigured = errors.New("wallet xpub not configured")
)

// Registry is the slice of the store the service needs.
type Registry interface {
	NextDerivationIndex(ctx context.Context) (int64, error)
	CreateWatch(ctx context.Context, watch *models.Watch) error
	GetWatch(ctx context.Context, watchID string) (*models.Watch, error)
	GetWatchByScript(ctx context.Context, scriptType, payloadHex string) (*models.Watch, error)
	ListWatches(ctx context.Context) ([]*models.Watch, error)
}

type Service struct {
	Store   Registry
	Deriver wallet.AddressDeriver
}

// WatchAddress registers a watch for a legacy address.
func (s Service) WatchAddress(ctx context.Context, label, addr string) (*models.Watch, error) {
	if label == "" {
		return nil, ErrMissingLabel
	}
	scriptType, payload, err := wallet.ParseAddress(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return s.create(ctx, label, scriptType, hex.EncodeToString(payload), nil)
}

// WatchScript registers a watch for a raw script identity.
func (s Service) WatchScript(ctx context.Context, label, scriptType, payloadHex string) (*models.Watch, error) {
	if label == "" {
		return nil, ErrMissingLabel
	}
	if scriptType != wallet.ScriptTypeP2PKH && scriptType != wallet.ScriptTypeP2SH {
		return nil, fmt.Errorf("%w: script type %q", ErrInvalidScript, scriptType)
	}
	payload, err := hex.DecodeString(payloadHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if len(payload) != 20 {
		return nil, fmt.Errorf("%w: payload is %d bytes", ErrInvalidScript, len(payload))
	}
	return s.create(ctx, label, scriptType, hex.EncodeToString(payload), nil)
}

// WatchNextAddress derives the next receive address from the configured
// xpub and registers a watch for it. It returns the watch together with
// the rendered address.
func (s Service) WatchNextAddress(ctx context.Context, label string) (*models.Watch, string, error) {
	if label == "" {
		return nil, "", ErrMissingLabel
	}
	if s.Deriver.XPub == "" {
		return nil, "", ErrXpubNotConfigured
	}

	idx, err := s.Store.NextDerivationIndex(ctx)
	if err != nil {
		return nil, "", err
	}
	payload, err := s.Deriver.Derive(uint32(idx))
	if err != nil {
		return nil, "", err
	}

	watch, err := s.create(ctx, label, wallet.ScriptTypeP2PKH, hex.EncodeToString(payload), &idx)
	if err != nil {
		return nil, "", err
	}
	return watch, wallet.P2PKHAddress(payload), nil
}

func (s Service) GetWatch(ctx context.Context, watchID string) (*models.Watch, error) {
	return s.Store.GetWatch(ctx, watchID)
}

func (s Service) ListWatches(ctx context.Context) ([]*models.Watch, error) {
	return s.Store.ListWatches(ctx)
}

// create registers the watch, reusing an existing registration for the
// same script identity.
func (s Service) create(ctx context.Context, label, scriptType, payloadHex string, derivationIndex *int64) (*models.Watch, error) {
	if existing, err := s.Store.GetWatchByScript(ctx, scriptType, payloadHex); err == nil && existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	watch := &models.Watch{
		WatchID:         uuid.NewString(),
		Label:           label,
		ScriptType:      scriptType,
		PayloadHex:      payloadHex,
		DerivationIndex: derivationIndex,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Store.CreateWatch(ctx, watch); err != nil {
		return nil, err
	}
	return watch, nil
}
