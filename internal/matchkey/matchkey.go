package matchkey

import "strings"

// Chave normalizada de confronto: par de times ordenado + liga.
// Calculada uma vez no momento da aposta e gravada junto dela, elimina a
// ambiguidade do casamento por substring em texto livre (não existe foreign
// key entre aposta e evento do provedor).

// Normalize reduz um nome a forma canônica: minúsculas, espaços colapsados
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Compute monta a chave "timeA|timeB|liga" com os times em ordem lexicográfica
func Compute(homeTeam, awayTeam, league string) string {
	a, b := Normalize(homeTeam), Normalize(awayTeam)
	if a > b {
		a, b = b, a
	}
	return a + "|" + b + "|" + Normalize(league)
}
