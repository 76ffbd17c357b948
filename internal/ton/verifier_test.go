package ton

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	receivingWallet = "EQReceivingWalletForTests"
	minPayment      = "150000000"
)

func userAddresses(t *testing.T) (friendly, raw string) {
	t.Helper()
	accountID := testAccountID()

	payload := make([]byte, 0, 36)
	payload = append(payload, 0x11, 0x00)
	payload = append(payload, accountID...)
	payload = append(payload, 0x00, 0x00)

	return base64.RawURLEncoding.EncodeToString(payload), "0:" + hex.EncodeToString(accountID)
}

func newTestVerifier(t *testing.T, handler http.HandlerFunc) (*Verifier, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL})
	verifier, err := NewVerifier(client, VerifierConfig{
		ReceivingWallet: receivingWallet,
		MinPayment:      minPayment,
	})
	require.NoError(t, err)

	return verifier, srv
}

func transactionsBody(txs ...string) string {
	out := `{"ok":true,"result":[`
	for i, tx := range txs {
		if i > 0 {
			out += ","
		}
		out += tx
	}
	return out + `]}`
}

func inMsg(source, value string) string {
	return fmt.Sprintf(`{"in_msg":{"source":%q,"destination":%q,"value":%q}}`, source, receivingWallet, value)
}

func TestVerifier_QualifyingPayment(t *testing.T) {
	friendly, raw := userAddresses(t)

	tests := []struct {
		name     string
		body     string
		wallet   string
		expected bool
	}{
		{
			name:     "Exact threshold qualifies",
			body:     transactionsBody(inMsg(raw, "150000000")),
			wallet:   raw,
			expected: true,
		},
		{
			name:     "One unit below threshold does not qualify",
			body:     transactionsBody(inMsg(raw, "149999999")),
			wallet:   raw,
			expected: false,
		},
		{
			name:     "Friendly source matches raw user address",
			body:     transactionsBody(inMsg(friendly, "150000000")),
			wallet:   raw,
			expected: true,
		},
		{
			name:     "Raw source matches friendly user address",
			body:     transactionsBody(inMsg(raw, "200000000")),
			wallet:   friendly,
			expected: true,
		},
		{
			name:     "Transfer from another wallet is ignored",
			body:     transactionsBody(inMsg("0:"+"ff00000000000000000000000000000000000000000000000000000000000000", "900000000")),
			wallet:   raw,
			expected: false,
		},
		{
			name: "Qualifying transfer found among noise",
			body: transactionsBody(
				`{"in_msg":null}`,
				inMsg("", "100"),
				inMsg(raw, "1"),
				inMsg(raw, "150000001"),
			),
			wallet:   raw,
			expected: true,
		},
		{
			name:     "Unparseable value skipped",
			body:     transactionsBody(inMsg(raw, "not-a-number")),
			wallet:   raw,
			expected: false,
		},
		{
			name:     "Indexer reports ok=false",
			body:     `{"ok":false,"result":[]}`,
			wallet:   raw,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/getTransactions", r.URL.Path)
				assert.Equal(t, receivingWallet, r.URL.Query().Get("address"))
				assert.Equal(t, "50", r.URL.Query().Get("limit"))
				assert.Equal(t, "true", r.URL.Query().Get("archival"))
				fmt.Fprint(w, tt.body)
			})

			got := verifier.HasQualifyingPayment(context.Background(), tt.wallet)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestVerifier_IndexerErrorsMeanNotVerified(t *testing.T) {
	_, raw := userAddresses(t)

	t.Run("HTTP error status", func(t *testing.T) {
		verifier, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		assert.False(t, verifier.HasQualifyingPayment(context.Background(), raw))
	})

	t.Run("Indexer unreachable", func(t *testing.T) {
		verifier, srv := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()
		assert.False(t, verifier.HasQualifyingPayment(context.Background(), raw))
	})

	t.Run("Malformed payload", func(t *testing.T) {
		verifier, _ := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok":`)
		})
		assert.False(t, verifier.HasQualifyingPayment(context.Background(), raw))
	})
}

func TestVerifier_APIKeyHeader(t *testing.T) {
	_, raw := userAddresses(t)
	var gotKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, APIKey: "secret-key"})
	verifier, err := NewVerifier(client, VerifierConfig{
		ReceivingWallet: receivingWallet,
		MinPayment:      minPayment,
	})
	require.NoError(t, err)

	verifier.HasQualifyingPayment(context.Background(), raw)
	assert.Equal(t, "secret-key", gotKey)
}

func TestNewVerifier_Validation(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://localhost"})

	_, err := NewVerifier(client, VerifierConfig{ReceivingWallet: receivingWallet, MinPayment: "abc"})
	assert.Error(t, err)

	_, err = NewVerifier(client, VerifierConfig{ReceivingWallet: receivingWallet, MinPayment: "-5"})
	assert.Error(t, err)

	_, err = NewVerifier(client, VerifierConfig{MinPayment: "100"})
	assert.Error(t, err)
}
