// Package l10n translates user-facing form and banner messages into the
// locale of the active number policy. Keys are the English texts, so an
// unknown locale prints them unchanged.
package l10n

import (
	"github.com/rustyeddy/tradesizer/numfmt"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var spanish = map[string]string{
	"is required":                              "es obligatorio",
	"must be a number":                         "debe ser un número",
	"must be greater than zero":                "debe ser mayor que cero",
	"must be at least %s":                      "debe ser como mínimo %s",
	"must be at most %s":                       "debe ser como máximo %s",
	"must have at most %d decimal places":      "admite como máximo %d decimales",
	"has an invalid format":                    "tiene un formato no válido",
	"must be one of %s":                        "debe ser uno de %s",
	"must be lower than the entry price":       "debe ser inferior al precio de entrada",
	"is required when the trade is closed":     "es obligatorio si la operación está cerrada",
	"trade not found":                          "operación no encontrada",
	"cannot sell more than %s remaining units": "no se pueden vender más de %s unidades restantes",
	"Please correct the highlighted fields":    "Corrija los campos marcados",
	"Request failed, please try again":         "La solicitud ha fallado, inténtelo de nuevo",
}

var cat = build()

func build() *catalog.Builder {
	b := catalog.NewBuilder()
	tag := language.MustParse(numfmt.ES.Name)
	for key, msg := range spanish {
		if err := b.SetString(tag, key, msg); err != nil {
			panic(err)
		}
	}
	return b
}

// Printer returns a printer for the locale named by p.
func Printer(p numfmt.Policy) *message.Printer {
	tag, err := language.Parse(p.Name)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return message.NewPrinter(tag, message.Catalog(cat))
}

// Sprintf translates key for p and formats it with args.
func Sprintf(p numfmt.Policy, key string, args ...any) string {
	return Printer(p).Sprintf(key, args...)
}
