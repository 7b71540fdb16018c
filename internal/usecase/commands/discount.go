package commands

import (
	"context"
	"time"

	"solestore/internal/domain/discount"
	reqdto "solestore/internal/handler/dto/request"
	"solestore/internal/infra"
	"solestore/internal/pkg/clock"
	"solestore/internal/pkg/errs"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrDiscountNotFound   = errs.New("discount code not found")
	ErrDiscountCodeExists = errs.New("discount code already exists")
	ErrInvalidDiscount    = errs.New("invalid discount definition")
)

const defaultValidityDays = 30

type DiscountCommands interface {
	Create(ctx context.Context, req reqdto.CreateDiscountRequest) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, req reqdto.UpdateDiscountRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type discountCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewDiscountCommands(uow shared.UnitOfWork, clock clock.Clock) DiscountCommands {
	return &discountCommandsImpl{uow: uow, clock: clock}
}

func (d *discountCommandsImpl) Create(ctx context.Context, req reqdto.CreateDiscountRequest) (uuid.UUID, error) {
	params, err := d.toParams(req)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		insertedID, insErr := tx.Discounts().Insert(ctx, tx.DB(), params)
		if insErr != nil {
			if infra.IsKind(insErr, infra.KindDuplicateKey) {
				return ErrDiscountCodeExists
			}
			return errs.Mark(insErr, ErrDatabaseOperation)
		}
		id = insertedID
		return nil
	})
	return id, err
}

func (d *discountCommandsImpl) Update(ctx context.Context, id uuid.UUID, req reqdto.UpdateDiscountRequest) error {
	params, err := d.toParams(req.CreateDiscountRequest)
	if err != nil {
		return err
	}
	if req.Active != nil {
		params.Active = *req.Active
	}

	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, updErr := tx.Discounts().Update(ctx, tx.DB(), id, params)
		if updErr != nil {
			if infra.IsKind(updErr, infra.KindDuplicateKey) {
				return ErrDiscountCodeExists
			}
			return errs.Mark(updErr, ErrDatabaseOperation)
		}
		if !ok {
			return ErrDiscountNotFound
		}
		return nil
	})
}

func (d *discountCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return d.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, err := tx.Discounts().Delete(ctx, tx.DB(), id)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if !ok {
			return ErrDiscountNotFound
		}
		return nil
	})
}

// toParams canonicalizes the code and fills the historical defaults: a
// missing window starts now and runs 30 days.
func (d *discountCommandsImpl) toParams(req reqdto.CreateDiscountRequest) (shared.DiscountCodeParams, error) {
	code, err := discount.NewCode(req.Code)
	if err != nil {
		return shared.DiscountCodeParams{}, errs.Mark(err, ErrInvalidDiscount)
	}
	if _, err := discount.NewPercentage(req.Percentage); err != nil {
		return shared.DiscountCodeParams{}, errs.Mark(err, ErrInvalidDiscount)
	}

	now := d.clock.Now()
	validFrom := now
	if req.ValidFrom != nil {
		validFrom = *req.ValidFrom
	}
	validTo := now.Add(defaultValidityDays * 24 * time.Hour)
	if req.ValidTo != nil {
		validTo = *req.ValidTo
	}

	return shared.DiscountCodeParams{
		Code:          code.String(),
		Percentage:    req.Percentage,
		ValidFrom:     validFrom,
		ValidTo:       validTo,
		Active:        true,
		MinOrderValue: req.MinOrderValue,
		MaxDiscount:   req.MaxDiscount,
		UsageLimit:    req.UsageLimit,
	}, nil
}
