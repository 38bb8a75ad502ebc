package i18n

import "strings"

// Language is a language code such as "en".
type Language string

// DefaultLanguage is used when no preference or locale matches, and as the
// fallback for missing translations.
const DefaultLanguage Language = "en"

// Key identifies a piece of UI text.
type Key string

// Translation keys.
const (
	NavHome     Key = "nav.home"
	NavProducts Key = "nav.products"
	NavAbout    Key = "nav.about"
	NavContact  Key = "nav.contact"
	NavCart     Key = "nav.cart"

	HomeHeroTitle    Key = "home.hero.title"
	HomeHeroSubtitle Key = "home.hero.subtitle"
	HomeHeroCTA      Key = "home.hero.cta"

	ProductAddToCart Key = "product.addToCart"
	ProductPrice     Key = "product.price"
	ProductCategory  Key = "product.category"
	ProductSingle    Key = "product.category.single"
	ProductBlend     Key = "product.category.blend"
	ProductNotFound  Key = "product.notFound"

	CartTitle      Key = "cart.title"
	CartEmpty      Key = "cart.empty"
	CartQuantity   Key = "cart.quantity"
	CartRemove     Key = "cart.remove"
	CartClear      Key = "cart.clear"
	CartSubtotal   Key = "cart.subtotal"
	CartTotal      Key = "cart.total"
	CartItemCount  Key = "cart.itemCount"
	CartCheckout   Key = "cart.checkout"
	CartContinue   Key = "cart.continueShopping"
	CartAddedToast Key = "cart.added"

	LanguageLabel Key = "language.label"

	FooterRights  Key = "footer.rights"
	FooterPrivacy Key = "footer.privacy"
	FooterTerms   Key = "footer.terms"
)

var allKeys = []Key{
	NavHome, NavProducts, NavAbout, NavContact, NavCart,
	HomeHeroTitle, HomeHeroSubtitle, HomeHeroCTA,
	ProductAddToCart, ProductPrice, ProductCategory, ProductSingle, ProductBlend, ProductNotFound,
	CartTitle, CartEmpty, CartQuantity, CartRemove, CartClear, CartSubtotal, CartTotal,
	CartItemCount, CartCheckout, CartContinue, CartAddedToast,
	LanguageLabel,
	FooterRights, FooterPrivacy, FooterTerms,
}

// Keys returns every translation key the UI uses.
func Keys() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// PrimarySubtag returns the part of a locale string before the first "-",
// so "fr-FR" yields "fr".
func PrimarySubtag(locale string) Language {
	primary, _, _ := strings.Cut(strings.TrimSpace(locale), "-")
	return Language(primary)
}

// AcceptLanguage returns the first language range of an HTTP
// Accept-Language header, without its quality value.
func AcceptLanguage(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	first = strings.TrimSpace(first)
	if first == "*" {
		return ""
	}
	return first
}
