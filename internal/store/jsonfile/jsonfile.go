// Package jsonfile persists the marketplace in a single JSON document. The
// whole document is rewritten after every mutation; there is no journal and
// no batching. A missing or unreadable document starts an empty store.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"marketplace/backend/internal/domain"
	"marketplace/backend/internal/store"
	"marketplace/backend/internal/store/memory"
)

const DefaultPath = "data.json"

type Store struct {
	// writeMu keeps a mutation and the save that follows it together, so the
	// file always reflects a state that existed in memory.
	writeMu sync.Mutex
	path    string
	state   *memory.Store
	log     *logrus.Entry
}

// Open loads path and makes sure an administrator exists. Only a failure to
// write the bootstrap administrator is reported; load problems are not.
func Open(path string, logger *logrus.Entry) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Store{
		path: path,
		log:  logger.WithField("component", "store.jsonfile"),
	}

	s.state = memory.FromSnapshot(s.load())
	if admin, created := s.state.EnsureAdmin(); created {
		s.log.WithFields(logrus.Fields{"user_id": admin.ID, "phone": admin.Phone}).Info("created bootstrap administrator")
		if err := s.save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() store.Snapshot {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.WithError(err).Warn("backing file unreadable, starting empty")
		}
		return store.EmptySnapshot()
	}
	snap, err := decodeDocument(raw)
	if err != nil {
		s.log.WithError(err).WithField("path", s.path).Warn("backing file corrupt, starting empty")
		return store.EmptySnapshot()
	}
	return snap
}

// save rewrites the whole document through a temporary file in the same
// directory followed by a rename.
func (s *Store) save() error {
	payload, err := encodeDocument(s.state.Snapshot())
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	_ = tmp.Chmod(0o644)
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

// mutate runs fn against the in-memory state and persists the result. The
// state change stands even when the save fails; the error tells the caller
// the file is behind.
func (s *Store) mutate(fn func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	return s.save()
}

func (s *Store) AddUser(ctx context.Context, username string, phone string, role domain.UserRole) (*domain.User, error) {
	var created *domain.User
	err := s.mutate(func() error {
		var err error
		created, err = s.state.AddUser(ctx, username, phone, role)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) FindUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return s.state.FindUserByPhone(ctx, phone)
}

func (s *Store) FindUserByID(ctx context.Context, id int) (*domain.User, error) {
	return s.state.FindUserByID(ctx, id)
}

func (s *Store) UpdateUserStatus(ctx context.Context, id int, status domain.UserStatus) error {
	return s.mutate(func() error {
		return s.state.UpdateUserStatus(ctx, id, status)
	})
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.state.ListUsers(ctx)
}

func (s *Store) AddProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	var created *domain.Product
	err := s.mutate(func() error {
		var err error
		created, err = s.state.AddProduct(ctx, product)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) FindProductByID(ctx context.Context, id int) (*domain.Product, error) {
	return s.state.FindProductByID(ctx, id)
}

func (s *Store) UpdateProductStatus(ctx context.Context, id int, status domain.ProductStatus) error {
	return s.mutate(func() error {
		return s.state.UpdateProductStatus(ctx, id, status)
	})
}

func (s *Store) DecreaseStock(ctx context.Context, id int, qty int) error {
	return s.mutate(func() error {
		return s.state.DecreaseStock(ctx, id, qty)
	})
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.state.ListProducts(ctx)
}

func (s *Store) AddOrder(ctx context.Context, buyerID int, productID int, quantity int, amount float64) (*domain.Order, error) {
	var created *domain.Order
	err := s.mutate(func() error {
		var err error
		created, err = s.state.AddOrder(ctx, buyerID, productID, quantity, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) FindOrderByID(ctx context.Context, id int) (*domain.Order, error) {
	return s.state.FindOrderByID(ctx, id)
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.state.ListOrders(ctx)
}

func (s *Store) AddComplaint(ctx context.Context, complaint domain.Complaint) (*domain.Complaint, error) {
	var created *domain.Complaint
	err := s.mutate(func() error {
		var err error
		created, err = s.state.AddComplaint(ctx, complaint)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	return s.state.ListComplaints(ctx)
}

func (s *Store) UpdateComplaintStatus(ctx context.Context, id int, status domain.ComplaintStatus, result string) error {
	return s.mutate(func() error {
		return s.state.UpdateComplaintStatus(ctx, id, status, result)
	})
}

var _ store.Repository = (*Store)(nil)
