// Package identity decides which cart a request belongs to. It reads and
// writes transport carriers only and never looks at cart contents.
package identity

import (
	"net/http"

	"github.com/dukerupert/harvansh/internal/cookie"
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/google/uuid"
)

// Transport carriers, in lookup order.
const (
	HeaderCartID = "X-Cart-ID"

	// HeaderSessionID is the legacy header older clients send.
	HeaderSessionID = "sessionid"
)

// Identity sources reported by Resolve.
const (
	SourceHeader  = "header"
	SourceSession = "session_header"
	SourceCookie  = "cookie"
	SourceMinted  = "minted"

	// SourceRequest marks an id the client named explicitly in a path,
	// query or body.
	SourceRequest = "request"
)

// Identity is the resolved cart id for one request.
type Identity struct {
	CartID string
	Minted bool
	Source string
}

// Resolver resolves and persists cart identities.
type Resolver struct {
	cookies *cookie.Config
	mint    func() string
}

func NewResolver(cookies *cookie.Config) *Resolver {
	return &Resolver{cookies: cookies, mint: uuid.NewString}
}

// Resolve returns the first valid id carried by r, or mints a new one.
// Malformed ids are ignored so they never reach logs or cookies.
func (res *Resolver) Resolve(r *http.Request) Identity {
	candidates := []struct {
		value  string
		source string
	}{
		{r.Header.Get(HeaderCartID), SourceHeader},
		{r.Header.Get(HeaderSessionID), SourceSession},
		{cookie.Get(r, cookie.CartCookieName), SourceCookie},
	}
	for _, c := range candidates {
		if domain.ValidCartID(c.value) {
			return Identity{CartID: c.value, Source: c.source}
		}
	}
	return Identity{CartID: res.mint(), Minted: true, Source: SourceMinted}
}

// Persist hands id back to the client on every carrier Resolve reads.
// Ids named explicitly in a path, query or body are not persisted: reading
// another cart by id must not rebind the caller's own session.
func (res *Resolver) Persist(w http.ResponseWriter, id Identity) {
	if id.Source == SourceRequest {
		return
	}
	w.Header().Set(HeaderCartID, id.CartID)
	w.Header().Set(HeaderSessionID, id.CartID)
	res.cookies.SetCart(w, id.CartID)
}
