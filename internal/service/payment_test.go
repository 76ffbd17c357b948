package service

import (
	"context"
	"testing"

	"aetheria_skylands/internal/model"
	"aetheria_skylands/internal/repository"
	"aetheria_skylands/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testWallet = "0:abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"

func TestPaymentService_ConfirmEarlyAccessPayment(t *testing.T) {
	tests := []struct {
		name           string
		wallet         string
		setupMocks     func(repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier)
		expectedStatus PaymentStatus
		expectedError  error
		checkMocks     func(t *testing.T, repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier)
	}{
		{
			name:   "Account not found",
			wallet: testWallet,
			setupMocks: func(repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrAccountNotFound,
		},
		{
			name:   "Already paid short-circuits without verifier call",
			wallet: testWallet,
			setupMocks: func(repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet, HasPaidEarlyAccess: true}, nil)
			},
			expectedStatus: PaymentStatusAlreadyPaid,
			checkMocks: func(t *testing.T, repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				verifier.AssertNotCalled(t, "HasQualifyingPayment", mock.Anything, mock.Anything)
				repo.AssertNotCalled(t, "SetEarlyAccessPaid", mock.Anything, mock.Anything)
			},
		},
		{
			name:   "Payment not verified yet",
			wallet: testWallet,
			setupMocks: func(repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet}, nil)
				verifier.On("HasQualifyingPayment", mock.Anything, testWallet).Return(false)
				repo.On("RecordPaymentCheck", mock.Anything, testWallet, false).Return(nil)
			},
			expectedError: ErrPaymentPending,
			checkMocks: func(t *testing.T, repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				repo.AssertNotCalled(t, "SetEarlyAccessPaid", mock.Anything, mock.Anything)
			},
		},
		{
			name:   "Payment verified and flag flipped",
			wallet: testWallet,
			setupMocks: func(repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet}, nil).Once()
				verifier.On("HasQualifyingPayment", mock.Anything, testWallet).Return(true)
				repo.On("RecordPaymentCheck", mock.Anything, testWallet, true).Return(nil)
				repo.On("SetEarlyAccessPaid", mock.Anything, testWallet).Return(true, nil)
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet, HasPaidEarlyAccess: true}, nil).Once()
			},
			expectedStatus: PaymentStatusPaidNow,
		},
		{
			name:   "Concurrent winner already flipped the flag",
			wallet: testWallet,
			setupMocks: func(repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet}, nil).Once()
				verifier.On("HasQualifyingPayment", mock.Anything, testWallet).Return(true)
				repo.On("RecordPaymentCheck", mock.Anything, testWallet, true).Return(nil)
				repo.On("SetEarlyAccessPaid", mock.Anything, testWallet).Return(false, nil)
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet, HasPaidEarlyAccess: true}, nil).Once()
			},
			expectedStatus: PaymentStatusAlreadyPaid,
		},
		{
			name:   "Audit failure does not block confirmation",
			wallet: testWallet,
			setupMocks: func(repo *mocks.MockAccountRepository, verifier *mocks.MockPaymentVerifier) {
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet}, nil).Once()
				verifier.On("HasQualifyingPayment", mock.Anything, testWallet).Return(true)
				repo.On("RecordPaymentCheck", mock.Anything, testWallet, true).Return(assert.AnError)
				repo.On("SetEarlyAccessPaid", mock.Anything, testWallet).Return(true, nil)
				repo.On("GetAccountByWallet", mock.Anything, testWallet).
					Return(&model.Account{WalletAddress: testWallet, HasPaidEarlyAccess: true}, nil).Once()
			},
			expectedStatus: PaymentStatusPaidNow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockAccountRepository{}
			verifier := &mocks.MockPaymentVerifier{}
			svc := NewPaymentService(repo, verifier)

			tt.setupMocks(repo, verifier)

			account, status, err := svc.ConfirmEarlyAccessPayment(context.Background(), tt.wallet)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, account)
				assert.True(t, account.HasPaidEarlyAccess)
				assert.Equal(t, tt.expectedStatus, status)
			}

			if tt.checkMocks != nil {
				tt.checkMocks(t, repo, verifier)
			}

			repo.AssertExpectations(t)
			verifier.AssertExpectations(t)
		})
	}
}

func TestPaymentService_ConfirmEarlyAccessPayment_LowercasesWallet(t *testing.T) {
	repo := &mocks.MockAccountRepository{}
	verifier := &mocks.MockPaymentVerifier{}
	svc := NewPaymentService(repo, verifier)

	upper := "0:ABCDEF"
	repo.On("GetAccountByWallet", mock.Anything, "0:abcdef").
		Return(&model.Account{WalletAddress: "0:abcdef", HasPaidEarlyAccess: true}, nil)

	_, status, err := svc.ConfirmEarlyAccessPayment(context.Background(), upper)
	assert.NoError(t, err)
	assert.Equal(t, PaymentStatusAlreadyPaid, status)
	repo.AssertExpectations(t)
}
