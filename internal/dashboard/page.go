// Package dashboard maps fixed pathnames to top-level views and assembles the
// role dashboards from the domain services.
package dashboard

// Page names.
const (
	PageMarketing = "marketing"
	PageLogin     = "login"
	PagePatient   = "patient"
	PageDoctor    = "doctor"
	PageGuardian  = "guardian"
	PagePharmacy  = "pharmacy"
	PageAdmin     = "admin"
	PageNotFound  = "not-found"
)

var pages = map[string]string{
	"/":         PageMarketing,
	"/login":    PageLogin,
	"/patient":  PagePatient,
	"/doctor":   PageDoctor,
	"/guardian": PageGuardian,
	"/pharmacy": PagePharmacy,
	"/admin":    PageAdmin,
}

// Select returns the page for a pathname. Only the literal paths match;
// anything else, including a trailing slash or a sub-path, is not-found.
func Select(path string) string {
	if p, ok := pages[path]; ok {
		return p
	}
	return PageNotFound
}

// Paths returns the routable pathnames.
func Paths() []string {
	return []string{"/", "/login", "/patient", "/doctor", "/guardian", "/pharmacy", "/admin"}
}
