package reconciler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/settlement/dto"
	"github.com/wagerline/bet-companion/internal/settlement/matcher"
	"github.com/wagerline/bet-companion/internal/settlement/outcome"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

// Tipos de transação de saldo emitidos pela liquidação
const (
	TxBetPayout       = "BET_PAYOUT"
	TxReconcileCredit = "RECONCILE_CREDIT"
)

// CreditReference é a chave de idempotência do crédito de uma aposta:
// aposta + transição têm no máximo um lançamento no ledger
func CreditReference(betID string) string { return "bet-settle:" + betID }

// BetRepo é a visão de persistência usada pelo reconciler
type BetRepo interface {
	ListPending(ctx context.Context) ([]dto.Bet, error)
	ListSettledWon(ctx context.Context, since time.Time) ([]dto.Bet, error)
	MarkSettled(ctx context.Context, betID, status string) (bool, error)
}

// EventSource fornece a visão corrente de eventos agregados
type EventSource interface {
	Events() []events.EventSnapshot
}

// Wallet emite transações de saldo (atômicas e idempotentes no servidor)
type Wallet interface {
	ProcessTransaction(ctx context.Context, userID, txType string, amountCents int64, reference, description string) (int64, error)
	HasTransaction(ctx context.Context, userID, reference string) (bool, error)
}

// Publisher publica o evento de liquidação (Kafka em produção)
type Publisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

// Reconciler liga matcher e outcome: varre as apostas pendentes contra a
// visão de eventos, liquida as que têm desfecho e emite o crédito do prêmio.
// Cada varredura trabalha sobre snapshots imutáveis (lista de apostas e de
// eventos lidas no início do tick).
type Reconciler struct {
	Log    *zap.Logger
	Bets   BetRepo
	Events EventSource
	Wallet Wallet
	Pub    Publisher

	SweepLookback time.Duration

	OnSettled func(status string) // métricas
	OnError   func(stage string)  // métricas por fase

	cr  *cron.Cron
	now func() time.Time
}

func New(log *zap.Logger, bets BetRepo, evs EventSource, w Wallet, pub Publisher, sweepLookback time.Duration) *Reconciler {
	return &Reconciler{
		Log:           log,
		Bets:          bets,
		Events:        evs,
		Wallet:        w,
		Pub:           pub,
		SweepLookback: sweepLookback,
		now:           time.Now,
	}
}

// Start agenda a varredura de liquidação e a de compensação em cadências
// independentes. Tick sobreposto é descartado, nunca enfileirado.
func (r *Reconciler) Start(ctx context.Context, scanInterval, sweepInterval time.Duration) error {
	r.cr = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := r.cr.AddFunc("@every "+scanInterval.String(), func() {
		if err := r.RunSettlementScan(ctx); err != nil && ctx.Err() == nil {
			r.Log.Warn("settlement scan failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	if _, err := r.cr.AddFunc("@every "+sweepInterval.String(), func() {
		if err := r.RunCompensationSweep(ctx); err != nil && ctx.Err() == nil {
			r.Log.Warn("compensation sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	r.cr.Start()
	return nil
}

// Stop cancela os timers e espera o tick corrente terminar
func (r *Reconciler) Stop() {
	if r.cr != nil {
		<-r.cr.Stop().Done()
	}
}

// RunSettlementScan executa um tick de liquidação: casa apostas pendentes
// com eventos encerrados e aplica a transição terminal de cada uma.
// Falha em uma aposta não derruba a varredura.
func (r *Reconciler) RunSettlementScan(ctx context.Context) error {
	pending, err := r.Bets.ListPending(ctx)
	if err != nil {
		if r.OnError != nil {
			r.OnError("list_pending")
		}
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	evs := r.Events.Events()

	for _, bet := range pending {
		if dto.Terminal(bet.Status) {
			continue // nunca reavalia status terminal
		}

		ev, ok := matcher.Match(bet, evs)
		if !ok {
			continue // sem casamento, segue pendente
		}

		res, ok := outcome.Decide(bet, ev)
		if !ok {
			continue // sem placar final ou sem regra pro tipo da aposta
		}

		if err := r.settle(ctx, bet, ev, res); err != nil {
			r.Log.Error("settle bet failed",
				zap.String("betId", bet.ID),
				zap.String("result", string(res)),
				zap.Error(err))
			if r.OnError != nil {
				r.OnError("settle")
			}
		}
	}
	return nil
}

// settle aplica uma transição terminal. Crédito antes do status: como o
// process-transaction é idempotente por referência, repetir a sequência
// depois de uma falha no UPDATE não paga duas vezes.
func (r *Reconciler) settle(ctx context.Context, bet dto.Bet, ev events.EventSnapshot, res outcome.Result) error {
	var payout int64
	ref := ""

	if res == outcome.Won {
		payout = bet.PotentialPayoutCents
		ref = CreditReference(bet.ID)
		if _, err := r.Wallet.ProcessTransaction(ctx, bet.UserID, TxBetPayout, payout, ref,
			"settlement payout bet "+bet.ID); err != nil {
			return err
		}
	}
	// LOST e PUSH não movimentam saldo: o stake foi debitado na colocação

	applied, err := r.Bets.MarkSettled(ctx, bet.ID, string(res))
	if err != nil {
		return err
	}
	if !applied {
		// outra execução liquidou antes; o crédito acima é inócuo (mesma referência)
		return nil
	}

	r.Log.Info("bet settled",
		zap.String("betId", bet.ID),
		zap.String("status", string(res)),
		zap.String("eventId", ev.EventID),
		zap.Int64("payout_cents", payout))

	if r.OnSettled != nil {
		r.OnSettled(string(res))
	}

	if r.Pub != nil {
		e := events.BetSettled{
			BetID:       bet.ID,
			UserID:      bet.UserID,
			EventID:     ev.EventID,
			Status:      string(res),
			PayoutCents: payout,
			CreditRef:   ref,
			Ts:          r.now(),
		}
		if ev.HomeScore != nil {
			e.HomeScore = *ev.HomeScore
		}
		if ev.AwayScore != nil {
			e.AwayScore = *ev.AwayScore
		}
		if err := r.Pub.PublishBetSettled(ctx, e); err != nil {
			// liquidação já está durável; só registra
			r.Log.Warn("publish bet_settled failed", zap.String("betId", bet.ID), zap.Error(err))
		}
	}
	return nil
}

// RunCompensationSweep fecha a janela de inconsistência do settle-then-credit:
// aposta WON sem lançamento correspondente no ledger recebe o crédito de
// reconciliação. A referência é a mesma da liquidação, então a varredura é
// segura mesmo correndo em paralelo com um crédito atrasado.
func (r *Reconciler) RunCompensationSweep(ctx context.Context) error {
	since := r.now().Add(-r.SweepLookback)

	won, err := r.Bets.ListSettledWon(ctx, since)
	if err != nil {
		if r.OnError != nil {
			r.OnError("list_won")
		}
		return err
	}

	for _, bet := range won {
		ref := CreditReference(bet.ID)

		exists, err := r.Wallet.HasTransaction(ctx, bet.UserID, ref)
		if err != nil {
			if r.OnError != nil {
				r.OnError("ledger_check")
			}
			continue
		}
		if exists {
			continue
		}

		if _, err := r.Wallet.ProcessTransaction(ctx, bet.UserID, TxReconcileCredit,
			bet.PotentialPayoutCents, ref, "reconciliation credit bet "+bet.ID); err != nil {
			r.Log.Error("reconciliation credit failed", zap.String("betId", bet.ID), zap.Error(err))
			if r.OnError != nil {
				r.OnError("reconcile_credit")
			}
			continue
		}

		r.Log.Warn("reconciliation credit issued",
			zap.String("betId", bet.ID),
			zap.Int64("payout_cents", bet.PotentialPayoutCents))
	}
	return nil
}
