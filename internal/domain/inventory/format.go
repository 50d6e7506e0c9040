package inventory

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	unitFolder = cases.Fold()

	// unidades de masa que se muestran con 3 decimales
	weightUnits = map[string]struct{}{
		"kg": {}, "kgs": {}, "kilogramme": {}, "kilogrammes": {},
		"t": {}, "tonne": {}, "tonnes": {}, "tonne(s)": {},
	}

	half = decimal.NewFromFloat(0.5)
)

// IsWeightUnit indica si la unidad se formatea con decimales (kg y variantes de tonelada).
func IsWeightUnit(unit string) bool {
	_, ok := weightUnits[foldUnit(unit)]
	return ok
}

// FormatQuantity formatea una cantidad para mostrar:
// kg/tonelada con 3 decimales y coma decimal ("2,500"); el resto redondeado a la unidad ("3").
func FormatQuantity(q decimal.Decimal, unit string) string {
	if IsWeightUnit(unit) {
		return strings.Replace(q.StringFixed(3), ".", ",", 1)
	}
	// redondeo .5 hacia +∞
	return q.Add(half).Floor().String()
}

// SafeFileComponent limpia un nombre (producto) para usarlo dentro de un nombre de archivo:
// quita diacríticos y reemplaza separadores y caracteres reservados por "_".
func SafeFileComponent(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	clean, _, err := transform.String(t, name)
	if err != nil {
		clean = name
	}
	clean = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			return '_'
		case unicode.IsSpace(r):
			return '_'
		case r > unicode.MaxASCII:
			return '_'
		}
		return r
	}, strings.TrimSpace(clean))
	if clean == "" {
		return "produit"
	}
	return clean
}

func foldUnit(unit string) string {
	return unitFolder.String(strings.TrimSpace(unit))
}
