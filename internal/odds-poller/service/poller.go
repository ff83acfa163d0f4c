package service

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wagerline/bet-companion/internal/odds-poller/aggregator"
	"github.com/wagerline/bet-companion/internal/odds-poller/provider"
	"github.com/wagerline/bet-companion/pkg/contracts/events"
)

// Publisher abstrai o destino das atualizações (Kafka em produção)
type Publisher interface {
	Publish(ctx context.Context, e events.EventSnapshot) error
}

// ViewWriter abstrai a materialização do snapshot por partição (Redis)
type ViewWriter interface {
	SetPartition(ctx context.Context, partition string, evs []events.EventSnapshot) error
}

// Poller é o Odds Aggregator: duas cadências de refresh (estrutural e
// odds-only) sobre o provedor, alimentando o Store em memória, o tópico
// Kafka e a view Redis. Cada ciclo tolera falha parcial por partição:
// a partição que falhou degrada, as demais seguem.
type Poller struct {
	Log      *zap.Logger
	Provider *provider.Client
	Store    *aggregator.Store
	Pub      Publisher
	View     ViewWriter

	Sports     []string
	Regions    []string
	BatchDelay time.Duration
	DaysFrom   int // janela do feed de placares

	// Callbacks de métricas e broadcast
	OnFetched    func(partition string)
	OnPublished  func()
	OnError      func(stage string)
	OnAfterApply func(ev events.EventSnapshot)

	cr *cron.Cron
}

// Start agenda as duas cadências. Ticks sobrepostos são descartados:
// cada tick trabalha sobre um snapshot imutável do seu início.
func (p *Poller) Start(ctx context.Context, fullInterval, oddsInterval time.Duration) error {
	p.cr = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := p.cr.AddFunc("@every "+fullInterval.String(), func() {
		p.RunFullRefresh(ctx)
	}); err != nil {
		return err
	}
	if _, err := p.cr.AddFunc("@every "+oddsInterval.String(), func() {
		p.RunOddsRefresh(ctx)
	}); err != nil {
		return err
	}

	// primeira carga imediata, sem esperar o primeiro tick
	go p.RunFullRefresh(ctx)

	p.cr.Start()
	return nil
}

// Stop cancela os timers; requisições em voo terminam e são descartadas
// pelos callbacks (contexto cancelado)
func (p *Poller) Stop() {
	if p.cr != nil {
		<-p.cr.Stop().Done()
	}
}

// RunFullRefresh executa o ciclo estrutural: times, horários, status e odds
func (p *Poller) RunFullRefresh(ctx context.Context) {
	p.runCycle(ctx, true)
}

// RunOddsRefresh executa o ciclo rápido: só campos voláteis de eventos conhecidos
func (p *Poller) RunOddsRefresh(ctx context.Context) {
	p.runCycle(ctx, false)
}

func (p *Poller) runCycle(ctx context.Context, full bool) {
	for _, sport := range p.Sports {
		scores := p.fetchScores(ctx, sport)

		for _, region := range p.Regions {
			if ctx.Err() != nil {
				return
			}

			key := aggregator.PartitionKey(sport, region)
			if !full && p.Store.Fresh(key) {
				continue // janela de cache ainda válida, sem chamada de rede
			}

			if quota := p.refreshPartition(ctx, sport, region, key, scores, full); quota {
				// cota estourada: para o laço inteiro em vez de insistir
				p.Log.Warn("provider quota exhausted, aborting cycle", zap.String("partition", key))
				return
			}

			// atraso fixo entre requisições do batch (rate limit do provedor)
			select {
			case <-time.After(p.BatchDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// refreshPartition atualiza uma partição sport/region. Retorna true somente
// quando o provedor sinalizou cota estourada (o chamador aborta o batch);
// qualquer outra falha degrada a partição e o ciclo continua.
func (p *Poller) refreshPartition(ctx context.Context, sport, region, key string, scores map[string]provider.Score, full bool) bool {
	p.Store.BeginRefresh(key)
	defer p.Store.EndRefresh(key)

	fixtures, err := p.Provider.ListOdds(ctx, sport, region)
	if err != nil {
		if p.OnError != nil {
			p.OnError("fetch")
		}
		if errors.Is(err, provider.ErrQuota) {
			return true
		}
		p.Log.Warn("odds fetch failed, keeping previous data",
			zap.String("partition", key), zap.Error(err))
		return false
	}

	now := time.Now()
	normalized := make([]events.EventSnapshot, 0, len(fixtures))
	for _, f := range fixtures {
		normalized = append(normalized, Normalize(f, region, scores, now))
	}

	var updated []events.EventSnapshot
	if full {
		updated = p.Store.ApplyFull(key, normalized)
	} else {
		updated = p.Store.ApplyOddsOnly(key, normalized)
	}

	if p.OnFetched != nil {
		p.OnFetched(key)
	}

	p.flush(ctx, key, updated)
	return false
}

// flush materializa a partição na view Redis e publica cada snapshot alterado
func (p *Poller) flush(ctx context.Context, key string, updated []events.EventSnapshot) {
	if p.View != nil {
		part := p.partitionEvents(key)
		if err := p.View.SetPartition(ctx, key, part); err != nil {
			p.Log.Warn("redis view set failed", zap.String("partition", key), zap.Error(err))
			if p.OnError != nil {
				p.OnError("view")
			}
		}
	}

	for _, ev := range updated {
		if p.Pub != nil {
			if err := p.Pub.Publish(ctx, ev); err != nil {
				if p.OnError != nil {
					p.OnError("publish")
				}
				continue
			}
			if p.OnPublished != nil {
				p.OnPublished()
			}
		}
		if p.OnAfterApply != nil {
			p.OnAfterApply(ev)
		}
	}
}

// partitionEvents filtra o snapshot global pela partição
func (p *Poller) partitionEvents(key string) []events.EventSnapshot {
	snap := p.Store.Snapshot()
	var out []events.EventSnapshot
	for _, ev := range snap.Events {
		if aggregator.PartitionKey(ev.SportKey, ev.Region) == key {
			out = append(out, ev)
		}
	}
	return out
}

// fetchScores busca o feed de placares do esporte; falha aqui não bloqueia
// o refresh de odds, só deixa os eventos sem placar neste ciclo
func (p *Poller) fetchScores(ctx context.Context, sport string) map[string]provider.Score {
	days := p.DaysFrom
	if days <= 0 {
		days = 2
	}

	list, err := p.Provider.ListScores(ctx, sport, days)
	if err != nil {
		p.Log.Warn("scores fetch failed", zap.String("sport", sport), zap.Error(err))
		if p.OnError != nil {
			p.OnError("scores")
		}
		return nil
	}

	out := make(map[string]provider.Score, len(list))
	for _, s := range list {
		out[s.ID] = s
	}
	return out
}
