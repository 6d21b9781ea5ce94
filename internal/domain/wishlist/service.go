// internal/domain/wishlist/service.go
package wishlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/catalog"
	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	"github.com/sirupsen/logrus"
)

// LocalStore is the durable key-value store holding each session's set
type LocalStore interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// ProfileStore reads and writes the wishlist on a user's remote profile
type ProfileStore interface {
	Wishlist(ctx context.Context, userID string) ([]string, error)
	SaveWishlist(ctx context.Context, userID string, ids []string) error
}

// Service keeps the local wishlist and mirrors it to the remote profile.
// The two writes are independent and never rolled back together.
type Service struct {
	local    LocalStore
	profiles ProfileStore
	catalog  *catalog.Catalog
	logger   logrus.FieldLogger

	mu sync.Mutex
}

// NewService creates a new wishlist service. profiles may be nil, in which
// case nothing is synchronized remotely.
func NewService(local LocalStore, profiles ProfileStore, cat *catalog.Catalog, logger logrus.FieldLogger) *Service {
	return &Service{
		local:    local,
		profiles: profiles,
		catalog:  cat,
		logger:   logger.WithField("component", "wishlist"),
	}
}

func localKey(sessionID string) string {
	return "wishlist:" + sessionID
}

// Get returns the session's set, empty when nothing was stored
func (s *Service) Get(ctx context.Context, sessionID string) (Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocal(sessionID)
}

// Products returns the wishlisted products in catalog order
func (s *Service) Products(ctx context.Context, sessionID string) ([]catalog.Product, error) {
	set, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(set))
	for _, p := range s.catalog.All() {
		if set.Contains(strconv.Itoa(p.ID)) {
			products = append(products, p)
		}
	}
	return products, nil
}

// Toggle flips productID's membership. The full set is written back to the
// local store; a failed write is logged and not retried. When userID is set
// the same change is applied to the remote profile on a best-effort basis.
func (s *Service) Toggle(ctx context.Context, sessionID, userID, productID string) (*ToggleResult, error) {
	p, err := s.catalog.FindString(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
	}
	productID = strconv.Itoa(p.ID)

	s.mu.Lock()
	current, err := s.readLocal(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	updated := current.Toggle(productID)
	s.writeLocal(sessionID, updated)
	s.mu.Unlock()

	wishlisted := updated.Contains(productID)
	if userID != "" {
		s.syncRemote(ctx, userID, productID, wishlisted)
	}

	return &ToggleResult{
		ProductID:  productID,
		Wishlisted: wishlisted,
		Items:      updated,
	}, nil
}

// FetchRemote returns the wishlist stored on the user's profile. A missing
// profile reads as empty.
func (s *Service) FetchRemote(ctx context.Context, userID string) (Set, error) {
	if s.profiles == nil {
		return Set{}, nil
	}
	ids, err := s.profiles.Wishlist(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return Set{}, nil
		}
		return nil, err
	}
	return Normalize(ids), nil
}

// Adopt merges the user's remote wishlist into the session's local set
func (s *Service) Adopt(ctx context.Context, sessionID, userID string) (Set, error) {
	remote, err := s.FetchRemote(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	local, err := s.readLocal(sessionID)
	if err != nil {
		return nil, err
	}
	merged := local.Union(remote)
	if len(merged) != len(local) {
		s.writeLocal(sessionID, merged)
	}
	return merged, nil
}

// OnIdentityChanged pulls the remote wishlist into the session when a user
// signs in.
func (s *Service) OnIdentityChanged(ev identity.Event) {
	if ev.Identity == nil || ev.SessionID == "" {
		return
	}
	ctx := context.Background()
	if _, err := s.Adopt(ctx, ev.SessionID, ev.Identity.UID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"session_id": ev.SessionID,
			"user_id":    ev.Identity.UID,
		}).Warn("failed to merge remote wishlist")
	}
}

func (s *Service) readLocal(sessionID string) (Set, error) {
	data, found, err := s.local.Get(localKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to read wishlist: %w", err)
	}
	if !found {
		return Set{}, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("discarding unreadable wishlist")
		return Set{}, nil
	}
	return Normalize(ids), nil
}

func (s *Service) writeLocal(sessionID string, set Set) {
	data, err := json.Marshal([]string(set))
	if err == nil {
		err = s.local.Put(localKey(sessionID), data)
	}
	if err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("failed to persist wishlist")
	}
}

func (s *Service) syncRemote(ctx context.Context, userID, productID string, wishlisted bool) {
	if s.profiles == nil {
		return
	}
	log := s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": productID,
	})

	ids, err := s.profiles.Wishlist(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			log.Debug("no remote profile, skipping wishlist sync")
			return
		}
		log.WithError(err).Warn("failed to read remote wishlist")
		return
	}

	remote := Normalize(ids)
	var updated Set
	if wishlisted {
		updated = remote.With(productID)
	} else {
		updated = remote.Without(productID)
	}

	if err := s.profiles.SaveWishlist(ctx, userID, updated); err != nil {
		log.WithError(err).Warn("failed to save remote wishlist")
	}
}
