package commands

import (
	"context"

	"solestore/internal/infra"
	"solestore/internal/pkg/errs"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errs.New("product not found")
	ErrCartItemNotFound = errs.New("cart item not found")
	ErrInvalidQuantity  = errs.New("quantity must be at least 1")
)

type CartCommands interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*queries.CartItemView, error)
	// SetQuantity updates a line; zero or negative removes it, matching the
	// storefront's historical behavior.
	SetQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity int32) (removed bool, err error)
	RemoveItem(ctx context.Context, itemID, userID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartCommandsImpl struct {
	uow         shared.UnitOfWork
	cartQueries queries.CartQueries
}

func NewCartCommands(uow shared.UnitOfWork, cartQueries queries.CartQueries) CartCommands {
	return &cartCommandsImpl{uow: uow, cartQueries: cartQueries}
}

func (c *cartCommandsImpl) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*queries.CartItemView, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var itemID uuid.UUID
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if _, readErr := tx.Reads().ProductByID(ctx, productID); readErr != nil {
			if infra.IsKind(readErr, infra.KindNotFound) {
				return ErrProductNotFound
			}
			return errs.Mark(readErr, ErrDatabaseOperation)
		}

		id, addErr := tx.Carts().AddOrMerge(ctx, tx.DB(), userID, productID, quantity)
		if addErr != nil {
			return errs.Mark(addErr, ErrDatabaseOperation)
		}
		itemID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	items, err := c.cartQueries.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Mark(err, ErrDatabaseOperation)
	}
	for _, item := range items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, errs.Mark(errs.New("cart item missing after insert"), ErrDatabaseOperation)
}

func (c *cartCommandsImpl) SetQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity int32) (bool, error) {
	var removed bool
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if quantity <= 0 {
			ok, delErr := tx.Carts().DeleteItem(ctx, tx.DB(), itemID, userID)
			if delErr != nil {
				return errs.Mark(delErr, ErrDatabaseOperation)
			}
			if !ok {
				return ErrCartItemNotFound
			}
			removed = true
			return nil
		}

		ok, updErr := tx.Carts().SetQuantity(ctx, tx.DB(), itemID, userID, quantity)
		if updErr != nil {
			return errs.Mark(updErr, ErrDatabaseOperation)
		}
		if !ok {
			return ErrCartItemNotFound
		}
		return nil
	})
	return removed, err
}

func (c *cartCommandsImpl) RemoveItem(ctx context.Context, itemID, userID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, err := tx.Carts().DeleteItem(ctx, tx.DB(), itemID, userID)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if !ok {
			return ErrCartItemNotFound
		}
		return nil
	})
}

func (c *cartCommandsImpl) Clear(ctx context.Context, userID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Carts().DeleteByUser(ctx, tx.DB(), userID); err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		return nil
	})
}
