package postgres

import (
	"context"
	"fmt"

	"github.com/nkiryanov/spbuhub/internal/repository"
)

type Storage struct {
	db DBTX
}

func NewStorage(db DBTX) repository.Storage {
	return &Storage{db: db}
}

func (s *Storage) User() repository.UserRepo {
	return &UserRepo{DB: s.db}
}

func (s *Storage) Brand() repository.BrandRepo {
	return &BrandRepo{DB: s.db}
}

func (s *Storage) Service() repository.ServiceRepo {
	return &ServiceRepo{DB: s.db}
}

func (s *Storage) Spbu() repository.SpbuRepo {
	return &SpbuRepo{DB: s.db}
}

func (s *Storage) FuelPrice() repository.FuelPriceRepo {
	return &FuelPriceRepo{DB: s.db}
}

func (s *Storage) SpbuService() repository.SpbuServiceRepo {
	return &SpbuServiceRepo{DB: s.db}
}

func (s *Storage) Review() repository.ReviewRepo {
	return &ReviewRepo{DB: s.db}
}

func (s *Storage) Wishlist() repository.WishlistRepo {
	return &WishlistRepo{DB: s.db}
}

func (s *Storage) Transaction() repository.TransactionRepo {
	return &TransactionRepo{DB: s.db}
}

// InTx runs fn in a db transaction
// Called on a storage that is already in transaction it opens a savepoint
func (s *Storage) InTx(ctx context.Context, fn func(repository.Storage) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("db tx error: %w", err)
	}

	defer func() {
		switch err {
		case nil:
			err = tx.Commit(ctx)
		default:
			_ = tx.Rollback(ctx)
		}
	}()

	err = fn(NewStorage(tx))

	return err
}
