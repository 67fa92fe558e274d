package api

// Namespace selects which configured base URL an endpoint is resolved
// against. The three namespaces are mutually exclusive.
type Namespace int

const (
	// NamespaceApp is the application API (saved searches, favorites,
	// appointments, auth).
	NamespaceApp Namespace = iota
	// NamespaceSite is the site root, used for a handful of non-REST
	// endpoints.
	NamespaceSite
	// NamespaceMLD is the listing-data API serving MLS records.
	NamespaceMLD
)

// Endpoint describes one logical API call. Calling code produces these;
// the Client turns them into HTTP round-trips.
type Endpoint struct {
	Path         string
	Method       string
	Parameters   map[string]any
	RequiresAuth bool
	Namespace    Namespace
}
