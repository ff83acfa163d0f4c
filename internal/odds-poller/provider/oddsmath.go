package provider

// AmericanToDecimal converte odd americana para decimal europeia.
// +150 => 2.5, -200 => 1.5. Zero não é uma odd válida; retorna 0.
func AmericanToDecimal(american float64) float64 {
	switch {
	case american > 0:
		return (american / 100.0) + 1.0
	case american < 0:
		return (100.0 / -american) + 1.0
	default:
		return 0
	}
}

// DecimalToAmerican converte odd decimal para americana.
// Odds menores ou iguais a 1.0 não têm representação; retorna 0.
func DecimalToAmerican(decimal float64) float64 {
	switch {
	case decimal >= 2.0:
		return (decimal - 1.0) * 100.0
	case decimal > 1.0:
		return -100.0 / (decimal - 1.0)
	default:
		return 0
	}
}

// ImpliedProbabilityPercent retorna a probabilidade implícita (%) de uma odd decimal
func ImpliedProbabilityPercent(decimal float64) float64 {
	if decimal <= 0 {
		return 0
	}
	return 100.0 / decimal
}
