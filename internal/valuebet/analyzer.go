package valuebet

import (
	"errors"
	"fmt"
	"math"

	"github.com/wagerline/bet-companion/internal/odds-poller/provider"
)

// Recomendações possíveis da análise.
const (
	RecommendationValue   = "VALUE"
	RecommendationNoValue = "NO_VALUE"
	RecommendationAvoid   = "AVOID"
)

var (
	ErrInvalidOdd     = errors.New("decimal odd must be greater than 1.0")
	ErrInvalidWinProb = errors.New("estimated win probability must be between 0 and 100")
)

// Analysis é o resultado determinístico da comparação entre a probabilidade
// implícita na odd e a estimativa de vitória do usuário.
type Analysis struct {
	DecimalOdds         float64 `json:"decimal_odds"`
	ImpliedProbability  float64 `json:"implied_probability_pct"`
	EstimatedWinPercent float64 `json:"estimated_win_pct"`
	ValuePercent        float64 `json:"value_pct"`
	Recommendation      string  `json:"recommendation"`
	Rationale           string  `json:"rationale"`
}

// Analyze calcula a margem de valor: estimativa do usuário menos a
// probabilidade implícita. Acima de 5 pontos percentuais é VALUE, positivo
// até 5 é NO_VALUE e margem não positiva é AVOID.
func Analyze(decimalOdds, estimatedWinPct float64) (Analysis, error) {
	if decimalOdds <= 1.0 || math.IsNaN(decimalOdds) || math.IsInf(decimalOdds, 0) {
		return Analysis{}, ErrInvalidOdd
	}
	if estimatedWinPct <= 0 || estimatedWinPct > 100 {
		return Analysis{}, ErrInvalidWinProb
	}

	implied := provider.ImpliedProbabilityPercent(decimalOdds)
	value := estimatedWinPct - implied

	a := Analysis{
		DecimalOdds:         decimalOdds,
		ImpliedProbability:  round2(implied),
		EstimatedWinPercent: estimatedWinPct,
		ValuePercent:        round2(value),
	}
	switch {
	case value > 5:
		a.Recommendation = RecommendationValue
		a.Rationale = fmt.Sprintf("estimated %.1f%% vs implied %.1f%%: edge of %.1f points", estimatedWinPct, a.ImpliedProbability, a.ValuePercent)
	case value > 0:
		a.Recommendation = RecommendationNoValue
		a.Rationale = fmt.Sprintf("edge of %.1f points is too thin to act on", a.ValuePercent)
	default:
		a.Recommendation = RecommendationAvoid
		a.Rationale = fmt.Sprintf("implied %.1f%% exceeds estimated %.1f%%: negative expectation", a.ImpliedProbability, estimatedWinPct)
	}
	return a, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
