package walletclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client fala com o wallet-service. Toda movimentação de saldo passa pelo
// process-transaction, que é atômico e idempotente por referência no servidor.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(base string) *Client {
	return &Client{
		BaseURL: base,
		HTTP:    &http.Client{Timeout: 3 * time.Second},
	}
}

type processRequest struct {
	UserID      string `json:"userId"`
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference"`
	Description string `json:"description,omitempty"`
}

type processResponse struct {
	WalletID        string `json:"walletId"`
	NewBalanceCents int64  `json:"new_balance_cents"`
	Applied         bool   `json:"applied"` // false = referência já processada antes
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

// ProcessTransaction emite uma transação de saldo. Reaplicar a mesma
// referência devolve o resultado gravado sem mover dinheiro de novo.
func (c *Client) ProcessTransaction(ctx context.Context, userID, txType string, amountCents int64, reference, description string) (int64, error) {
	body, _ := json.Marshal(processRequest{
		UserID:      userID,
		Type:        txType,
		AmountCents: amountCents,
		Reference:   reference,
		Description: description,
	})
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/wallet/process-transaction", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return 0, fmt.Errorf("wallet process-transaction http %d", res.StatusCode)
	}

	var out processResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.NewBalanceCents, nil
}

// HasTransaction verifica se já existe lançamento no ledger com a referência
func (c *Client) HasTransaction(ctx context.Context, userID, reference string) (bool, error) {
	q := url.Values{}
	q.Set("userId", userID)
	q.Set("reference", reference)

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/wallet/transactions?"+q.Encode(), nil)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return false, fmt.Errorf("wallet transactions http %d", res.StatusCode)
	}

	var out existsResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Exists, nil
}
