package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/bet-service/dto"
	"github.com/wagerline/bet-companion/internal/bet-service/repo"
	"github.com/wagerline/bet-companion/internal/matchkey"
)

type fakeRepo struct {
	bets       map[string]*repo.Bet
	nextID     string
	cancelled  []string
	cashedOut  []string
	cashoutErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bets: map[string]*repo.Bet{}, nextID: "b1"}
}

func (f *fakeRepo) CreatePending(ctx context.Context, b *repo.Bet) (string, error) {
	id := f.nextID
	stored := *b
	stored.ID = id
	stored.Status = "PENDING"
	f.bets[id] = &stored
	return id, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, betID string) (*repo.Bet, error) {
	b, ok := f.bets[betID]
	if !ok {
		return nil, errors.New("no rows")
	}
	return b, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID, status string) ([]repo.Bet, error) {
	var out []repo.Bet
	for _, b := range f.bets {
		if b.UserID == userID && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkCancelled(ctx context.Context, betID string) error {
	f.cancelled = append(f.cancelled, betID)
	f.bets[betID].Status = "CANCELLED"
	return nil
}

func (f *fakeRepo) MarkCashedOut(ctx context.Context, betID string) error {
	if f.cashoutErr != nil {
		return f.cashoutErr
	}
	f.cashedOut = append(f.cashedOut, betID)
	f.bets[betID].Status = "CASHED_OUT"
	return nil
}

type fakeWallet struct {
	refs    []string
	balance int64
	err     error
}

func (f *fakeWallet) ProcessTransaction(ctx context.Context, userID, txType string, amountCents int64, reference, description string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.refs = append(f.refs, reference)
	return f.balance, nil
}

func placeRequest() dto.PlaceBetRequest {
	return dto.PlaceBetRequest{
		UserID:     "u1",
		HomeTeam:   "Los Angeles Lakers",
		AwayTeam:   "Boston Celtics",
		League:     "NBA",
		BetType:    dto.BetTypeMoneyline,
		Selection:  "Los Angeles Lakers",
		OddValue:   2.5,
		StakeCents: 1000,
	}
}

func doPlace(t *testing.T, srv *Server, req dto.PlaceBetRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(req)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bets", bytes.NewReader(body)))
	return rec
}

func TestPlaceBet(t *testing.T) {
	repoFake := newFakeRepo()
	wallet := &fakeWallet{balance: 4000}
	srv := NewServer(zap.NewNop(), repoFake, wallet)

	rec := doPlace(t, srv, placeRequest())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp dto.PlaceBetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "PENDING" || resp.PotentialPayoutCents != 2500 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.NewBalanceCents == nil || *resp.NewBalanceCents != 4000 {
		t.Errorf("balance not propagated: %+v", resp.NewBalanceCents)
	}

	bet := repoFake.bets[resp.BetID]
	wantKey := matchkey.Compute("Los Angeles Lakers", "Boston Celtics", "NBA")
	if bet.MatchKey != wantKey {
		t.Errorf("match key = %q, want %q", bet.MatchKey, wantKey)
	}
	if len(wallet.refs) != 1 || wallet.refs[0] != "bet-stake:"+resp.BetID {
		t.Errorf("stake debit reference = %v", wallet.refs)
	}
}

// Débito recusado: a aposta recém-criada é cancelada e o cliente recebe 409.
func TestPlaceBetDebitRefusedCancelsBet(t *testing.T) {
	repoFake := newFakeRepo()
	wallet := &fakeWallet{err: errors.New("insufficient funds")}
	srv := NewServer(zap.NewNop(), repoFake, wallet)

	rec := doPlace(t, srv, placeRequest())
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if len(repoFake.cancelled) != 1 {
		t.Fatalf("bet not cancelled after debit failure: %v", repoFake.cancelled)
	}
}

func TestPlaceBetValidation(t *testing.T) {
	srv := NewServer(zap.NewNop(), newFakeRepo(), &fakeWallet{})

	tests := []struct {
		name   string
		mutate func(*dto.PlaceBetRequest)
	}{
		{"missing user", func(r *dto.PlaceBetRequest) { r.UserID = "" }},
		{"missing teams", func(r *dto.PlaceBetRequest) { r.HomeTeam = "" }},
		{"missing selection", func(r *dto.PlaceBetRequest) { r.Selection = "" }},
		{"odd at 1.0", func(r *dto.PlaceBetRequest) { r.OddValue = 1.0 }},
		{"zero stake", func(r *dto.PlaceBetRequest) { r.StakeCents = 0 }},
		{"negative stake", func(r *dto.PlaceBetRequest) { r.StakeCents = -100 }},
		{"unknown bet type", func(r *dto.PlaceBetRequest) { r.BetType = "parlay" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := placeRequest()
			tt.mutate(&req)
			if rec := doPlace(t, srv, req); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestCashout(t *testing.T) {
	repoFake := newFakeRepo()
	wallet := &fakeWallet{balance: 1800}
	srv := NewServer(zap.NewNop(), repoFake, wallet)

	rec := doPlace(t, srv, placeRequest())
	var placed dto.PlaceBetResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &placed)

	body, _ := json.Marshal(dto.CashoutRequest{UserID: "u1", AmountCents: 800})
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/v1/bets/"+placed.BetID+"/cashout", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if repoFake.bets[placed.BetID].Status != "CASHED_OUT" {
		t.Errorf("bet status = %q, want CASHED_OUT", repoFake.bets[placed.BetID].Status)
	}
	// débito do stake + crédito do cashout
	if len(wallet.refs) != 2 || wallet.refs[1] != "bet-cashout:"+placed.BetID {
		t.Errorf("wallet refs = %v", wallet.refs)
	}
}

// Aposta já liquidada não pode ser encerrada por cashout.
func TestCashoutAlreadySettled(t *testing.T) {
	repoFake := newFakeRepo()
	repoFake.cashoutErr = repo.ErrNotPending
	wallet := &fakeWallet{}
	srv := NewServer(zap.NewNop(), repoFake, wallet)

	rec := doPlace(t, srv, placeRequest())
	var placed dto.PlaceBetResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &placed)
	wallet.refs = nil

	body, _ := json.Marshal(dto.CashoutRequest{UserID: "u1", AmountCents: 800})
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/v1/bets/"+placed.BetID+"/cashout", bytes.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if len(wallet.refs) != 0 {
		t.Errorf("no credit expected, got %v", wallet.refs)
	}
}

func TestCashoutWrongUser(t *testing.T) {
	repoFake := newFakeRepo()
	srv := NewServer(zap.NewNop(), repoFake, &fakeWallet{})

	rec := doPlace(t, srv, placeRequest())
	var placed dto.PlaceBetResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &placed)

	body, _ := json.Marshal(dto.CashoutRequest{UserID: "someone-else", AmountCents: 800})
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/v1/bets/"+placed.BetID+"/cashout", bytes.NewReader(body)))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestListBetsFilters(t *testing.T) {
	repoFake := newFakeRepo()
	srv := NewServer(zap.NewNop(), repoFake, &fakeWallet{})

	doPlace(t, srv, placeRequest())

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bets?userId=u1&status=PENDING", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var bets []dto.BetResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &bets); err != nil {
		t.Fatal(err)
	}
	if len(bets) != 1 {
		t.Fatalf("got %d bets, want 1", len(bets))
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bets", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing userId: status = %d, want 400", rec.Code)
	}
}
