package usecase

import (
	"context"

	"triage-waitlist/internal/converter"
	"triage-waitlist/internal/delivery/dto"
	"triage-waitlist/internal/domain/repository"
	"triage-waitlist/internal/service"

	"github.com/sirupsen/logrus"
)

type PriorityUsecase interface {
	GetAllPriorities(ctx context.Context) (*dto.PriorityListResponse, error)
}

type priorityUsecase struct {
	store         repository.Store
	log           *logrus.Logger
	waitlistCache service.WaitlistCache
}

func NewPriorityUsecase(store repository.Store, log *logrus.Logger, waitlistCache service.WaitlistCache) PriorityUsecase {
	return &priorityUsecase{
		store:         store,
		log:           log,
		waitlistCache: waitlistCache,
	}
}

func (u *priorityUsecase) GetAllPriorities(ctx context.Context) (*dto.PriorityListResponse, error) {
	priorities, hit := u.waitlistCache.GetPriorities(ctx)
	if !hit {
		var err error
		priorities, err = u.store.Priorities().FindAll(ctx)
		if err != nil {
			u.log.Warnf("Failed to find priorities: %+v", err)
			return nil, storageFailure(err)
		}
		u.waitlistCache.SetPriorities(ctx, priorities)
	}

	return &dto.PriorityListResponse{
		Priorities: converter.PrioritiesToResponses(priorities),
		Total:      len(priorities),
	}, nil
}
