package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_VerifyMint(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		body            string
		expectedSuccess bool
		expectedErr     error
		wantErr         bool
	}{
		{
			name:            "Confirmed payment",
			status:          http.StatusOK,
			body:            `{"success":true,"status":"paid_now","user":{}}`,
			expectedSuccess: true,
		},
		{
			name:            "Pending payment is not an error",
			status:          http.StatusPaymentRequired,
			body:            `{"success":false,"error":"payment not verified yet"}`,
			expectedSuccess: false,
		},
		{
			name:        "Missing account is terminal",
			status:      http.StatusNotFound,
			body:        `{"success":false,"error":"account not found"}`,
			expectedErr: ErrAccountNotFound,
			wantErr:     true,
		},
		{
			name:    "Server error",
			status:  http.StatusInternalServerError,
			body:    `{"success":false,"error":"boom"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/payment/verify-mint", r.URL.Path)
				assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := New(srv.URL, "test-token")
			result, err := c.VerifyMint(context.Background(), "0:abc")

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSuccess, result.Success)
		})
	}
}

func TestClient_VerifyMint_SendsWalletAddress(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		fmt.Fprint(w, `{"success":true,"status":"already_paid"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.VerifyMint(context.Background(), "0:deadbeef")
	require.NoError(t, err)
	assert.JSONEq(t, `{"walletAddress":"0:deadbeef"}`, gotBody)
}
