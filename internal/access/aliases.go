package access

// aliases maps legacy paths to their canonical replacements. These are
// permanent redirects, never view renders: bookmarked links from older
// releases must keep working. The mapping is 1:1 and literal.
var aliases = map[string]string{
	"/email-templates":  "/billing/email-templates",
	"/sms-templates":    "/billing/sms-templates",
	"/templates/email":  "/billing/email-templates",
	"/templates/sms":    "/billing/sms-templates",
	"/invoices":         "/billing",
	"/payments":         "/billing",
	"/billing/invoices": "/billing",
	"/subscription":     "/billing",
}

// CanonicalFor returns the canonical path for a legacy alias, or false when
// the path is not aliased.
func CanonicalFor(path string) (string, bool) {
	canonical, ok := aliases[path]
	return canonical, ok
}

// Aliases returns a copy of the alias table, used to mount redirects.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for legacy, canonical := range aliases {
		out[legacy] = canonical
	}
	return out
}
