package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/infrastructure/postgres/generated"
)

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func uuidToPg(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func optionalUUIDToPg(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return uuidToPg(*id)
}

func rowToOperation(row generated.LedgerOperation) *domain.Operation {
	op := &domain.Operation{
		ID:             uuid.UUID(row.ID.Bytes),
		IdempotencyKey: row.IdempotencyKey,
		ReferenceType:  domain.ReferenceType(row.ReferenceType),
		ReferenceID:    row.ReferenceID,
		CreatedAt:      row.CreatedAt.Time.UTC(),
	}

	if row.ReversalOfID.Valid {
		reversed := uuid.UUID(row.ReversalOfID.Bytes)
		op.ReversalOfID = &reversed
	}

	return op
}

func rowToEntry(row generated.LedgerEntry) *domain.Entry {
	return &domain.Entry{
		ID:          row.ID,
		AccountID:   row.AccountID,
		EntryType:   domain.EntryType(row.EntryType),
		Amount:      numericToDecimal(row.Amount),
		Currency:    domain.Currency(row.Currency),
		OperationID: uuid.UUID(row.OperationID.Bytes),
		CreatedAt:   row.CreatedAt.Time.UTC(),
	}
}
