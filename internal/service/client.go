package service

import (
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"github.com/umalmyha/leads/internal/cache"
	apperrors "github.com/umalmyha/leads/internal/errors"
	"github.com/umalmyha/leads/internal/model"
	"github.com/umalmyha/leads/internal/repository"
	"github.com/umalmyha/leads/pkg/db/transactor"
	"sync/atomic"
)

type ClientService interface {
	Add(context.Context, *model.Client) (*model.Client, error)
	FindAll(context.Context) ([]*model.Client, error)
	Ping(context.Context) error
}

type clientService struct {
	trx         transactor.Transactor
	clientRps   repository.ClientRepository
	clientCache cache.ClientCache
	// set when snapshot eviction failed, snapshots are bypassed until eviction succeeds
	staleSnapshot atomic.Bool
}

func NewClientService(trx transactor.Transactor, clientRps repository.ClientRepository, clientCache cache.ClientCache) ClientService {
	return &clientService{trx: trx, clientRps: clientRps, clientCache: clientCache}
}

// Add stores new lead unless its phone number is already registered.
// Uniqueness is finally guaranteed by datastore constraint, the lookup only
// short-circuits the common case.
func (s *clientService) Add(ctx context.Context, c *model.Client) (*model.Client, error) {
	stage := apperrors.OpLookup

	err := s.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.clientRps.ExistsByPhoneNumber(ctx, c.PhoneNumber)
		if err != nil {
			return apperrors.NewDatastoreErr(apperrors.OpLookup, err)
		}

		if exists {
			return apperrors.ErrDuplicateLead
		}

		stage = apperrors.OpInsert
		if err := s.clientRps.Create(ctx, c); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateLead) {
				return err
			}
			return apperrors.NewDatastoreErr(apperrors.OpInsert, err)
		}
		return nil
	})
	if err != nil {
		var dsErr *apperrors.DatastoreErr
		if errors.Is(err, apperrors.ErrDuplicateLead) || errors.As(err, &dsErr) {
			return nil, err
		}
		return nil, apperrors.NewDatastoreErr(stage, err)
	}

	s.evictSnapshot(ctx)
	return c, nil
}

// FindAll returns every lead ordered by lead id
func (s *clientService) FindAll(ctx context.Context) ([]*model.Client, error) {
	useCache := !s.staleSnapshot.Load() || s.evictSnapshot(ctx)

	var cached []*model.Client
	var version int64
	var cacheErr error
	if useCache {
		cached, version, cacheErr = s.clientCache.Snapshot(ctx)
		if cacheErr != nil {
			logrus.WithError(cacheErr).Warn("failed to read clients export snapshot")
		}
	}

	if cached != nil {
		return cached, nil
	}

	var clients []*model.Client
	err := s.trx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		clients, err = s.clientRps.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, apperrors.NewDatastoreErr(apperrors.OpRead, err)
	}

	if useCache && cacheErr == nil {
		if err := s.clientCache.Store(ctx, version, clients); err != nil {
			logrus.WithError(err).Warn("failed to store clients export snapshot")
		}
	}

	return clients, nil
}

func (s *clientService) evictSnapshot(ctx context.Context) bool {
	if err := s.clientCache.Evict(ctx); err != nil {
		s.staleSnapshot.Store(true)
		logrus.WithError(err).Warn("failed to evict clients export snapshot")
		return false
	}
	s.staleSnapshot.Store(false)
	return true
}

func (s *clientService) Ping(ctx context.Context) error {
	return s.clientRps.Ping(ctx)
}
