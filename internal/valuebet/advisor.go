package valuebet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Advisor consulta um serviço remoto de análise por IA e, quando ele falha ou
// não está configurado, cai para a análise local determinística. O chamador
// sempre recebe uma recomendação.
type Advisor struct {
	log     *zap.Logger
	baseURL string
	http    *http.Client
}

func NewAdvisor(log *zap.Logger, baseURL string) *Advisor {
	return &Advisor{
		log:     log,
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

type adviceRequest struct {
	EventName           string  `json:"eventName,omitempty"`
	Selection           string  `json:"selection,omitempty"`
	DecimalOdds         float64 `json:"decimal_odds"`
	EstimatedWinPercent float64 `json:"estimated_win_pct"`
}

type adviceResponse struct {
	Recommendation string  `json:"recommendation"`
	ValuePercent   float64 `json:"value_pct"`
	Rationale      string  `json:"rationale"`
}

// Advise pede a análise remota e completa o resultado com os números locais.
// Qualquer erro remoto (timeout, status, recomendação desconhecida) degrada
// silenciosamente para Analyze.
func (a *Advisor) Advise(ctx context.Context, eventName, selection string, decimalOdds, estimatedWinPct float64) (Analysis, error) {
	local, err := Analyze(decimalOdds, estimatedWinPct)
	if err != nil {
		return Analysis{}, err
	}
	if a.baseURL == "" {
		return local, nil
	}

	remote, err := a.callRemote(ctx, adviceRequest{
		EventName:           eventName,
		Selection:           selection,
		DecimalOdds:         decimalOdds,
		EstimatedWinPercent: estimatedWinPct,
	})
	if err != nil {
		a.log.Warn("ai advisor unavailable, using local analysis", zap.Error(err))
		return local, nil
	}

	switch remote.Recommendation {
	case RecommendationValue, RecommendationNoValue, RecommendationAvoid:
	default:
		a.log.Warn("ai advisor returned unknown recommendation, using local analysis",
			zap.String("recommendation", remote.Recommendation))
		return local, nil
	}

	local.Recommendation = remote.Recommendation
	if remote.Rationale != "" {
		local.Rationale = remote.Rationale
	}
	return local, nil
}

func (a *Advisor) callRemote(ctx context.Context, req adviceRequest) (*adviceResponse, error) {
	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := a.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisor http %d", res.StatusCode)
	}

	var out adviceResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}
