package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/mock/gomock"

	"github.com/banca/opledger/internal/domain"
	"github.com/banca/opledger/internal/usecase"
	"github.com/banca/opledger/internal/usecase/mocks"
)

func depositRequest(key string) usecase.OperationRequest {
	return usecase.OperationRequest{
		IdempotencyKey: key,
		ReferenceType:  domain.ReferenceTypeDeposit,
		ReferenceID:    "dep-1",
	}
}

func existingOperation(key string, refType domain.ReferenceType, refID string) *domain.Operation {
	return &domain.Operation{
		ID:             uuid.New(),
		IdempotencyKey: key,
		ReferenceType:  refType,
		ReferenceID:    refID,
		CreatedAt:      time.Now().UTC(),
	}
}

func TestIdempotencyResolver_Resolve(t *testing.T) {
	newID := uuid.New()
	insertErr := errors.New("connection reset")

	tests := []struct {
		name        string
		setup       func(repo *mocks.MockOperationRepository, idGen *mocks.MockIDGenerator)
		wantCreated bool
		wantID      *uuid.UUID
		wantErr     error
	}{
		{
			name: "existing operation with same reference is replayed",
			setup: func(repo *mocks.MockOperationRepository, _ *mocks.MockIDGenerator) {
				repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").
					Return(existingOperation("k1", domain.ReferenceTypeDeposit, "dep-1"), nil)
			},
		},
		{
			name: "existing operation with other reference conflicts",
			setup: func(repo *mocks.MockOperationRepository, _ *mocks.MockIDGenerator) {
				repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").
					Return(existingOperation("k1", domain.ReferenceTypeWithdrawal, "wd-9"), nil)
			},
			wantErr: domain.ErrIdempotencyKeyReused,
		},
		{
			name: "missing operation is inserted",
			setup: func(repo *mocks.MockOperationRepository, idGen *mocks.MockIDGenerator) {
				repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").Return(nil, nil)
				idGen.EXPECT().NewOperationID().Return(newID)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ usecase.Transaction, op *domain.Operation) error {
						if op.ID != newID || op.IdempotencyKey != "k1" || op.ReferenceID != "dep-1" {
							t.Errorf("unexpected operation inserted: %+v", op)
						}
						return nil
					})
			},
			wantCreated: true,
			wantID:      &newID,
		},
		{
			name: "lost race re-reads the winner",
			setup: func(repo *mocks.MockOperationRepository, idGen *mocks.MockIDGenerator) {
				gomock.InOrder(
					repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").Return(nil, nil),
					repo.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateIdempotencyKey),
					repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").
						Return(existingOperation("k1", domain.ReferenceTypeDeposit, "dep-1"), nil),
				)
				idGen.EXPECT().NewOperationID().Return(newID)
			},
		},
		{
			name: "lost race against other reference conflicts",
			setup: func(repo *mocks.MockOperationRepository, idGen *mocks.MockIDGenerator) {
				gomock.InOrder(
					repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").Return(nil, nil),
					repo.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateIdempotencyKey),
					repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").
						Return(existingOperation("k1", domain.ReferenceTypeDeposit, "other"), nil),
				)
				idGen.EXPECT().NewOperationID().Return(newID)
			},
			wantErr: domain.ErrConflict,
		},
		{
			name: "winner missing after conflict is inconsistent",
			setup: func(repo *mocks.MockOperationRepository, idGen *mocks.MockIDGenerator) {
				repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").Return(nil, nil).Times(2)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrDuplicateIdempotencyKey)
				idGen.EXPECT().NewOperationID().Return(newID)
			},
			wantErr: domain.ErrInconsistentState,
		},
		{
			name: "other insert errors propagate",
			setup: func(repo *mocks.MockOperationRepository, idGen *mocks.MockIDGenerator) {
				repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), "k1").Return(nil, nil)
				repo.EXPECT().Insert(gomock.Any(), gomock.Any(), gomock.Any()).Return(insertErr)
				idGen.EXPECT().NewOperationID().Return(newID)
			},
			wantErr: insertErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mocks.NewMockOperationRepository(ctrl)
			idGen := mocks.NewMockIDGenerator(ctrl)
			tt.setup(repo, idGen)

			resolver := usecase.NewIdempotencyResolver(repo, idGen)
			op, created, err := resolver.Resolve(context.Background(), mocks.NewMockTransaction(ctrl), depositRequest("k1"))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if op != nil {
					t.Fatalf("expected no operation on error, got %+v", op)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if created != tt.wantCreated {
				t.Errorf("created = %v, want %v", created, tt.wantCreated)
			}
			if tt.wantID != nil && op.ID != *tt.wantID {
				t.Errorf("expected operation %s, got %s", *tt.wantID, op.ID)
			}
		})
	}
}

func TestIdempotencyResolver_ReversalTargetMustMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockOperationRepository(ctrl)
	idGen := mocks.NewMockIDGenerator(ctrl)

	target := uuid.New()
	plain := existingOperation(domain.ReversalKey(target), domain.ReferenceTypeDeposit, "dep-1")
	repo.EXPECT().FindByIdempotencyKey(gomock.Any(), gomock.Any(), plain.IdempotencyKey).Return(plain, nil)

	resolver := usecase.NewIdempotencyResolver(repo, idGen)
	_, _, err := resolver.Resolve(context.Background(), nil, usecase.OperationRequest{
		IdempotencyKey: plain.IdempotencyKey,
		ReferenceType:  domain.ReferenceTypeDeposit,
		ReferenceID:    "dep-1",
		ReversalOfID:   &target,
	})

	if !errors.Is(err, domain.ErrIdempotencyKeyReused) {
		t.Fatalf("expected ErrIdempotencyKeyReused, got %v", err)
	}
}
