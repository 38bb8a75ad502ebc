// Package i18n holds the storefront's display language and its flat
// translation table.
//
// Translations are looked up by Key. A string missing in the active
// language falls back to DefaultLanguage and then to the key itself, so
// Translate always returns something displayable:
//
//	lang := i18n.NewStore(kv, i18n.WithLocale(i18n.StaticLocale("fr-FR")))
//	lang.Init(ctx)
//	lang.T(i18n.CartTitle) // "Votre panier"
package i18n
