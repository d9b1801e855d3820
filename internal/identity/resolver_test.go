package identity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/harvansh/internal/cookie"
	"github.com/dukerupert/harvansh/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver() *Resolver {
	r := NewResolver(cookie.NewConfig("", false))
	r.mint = func() string { return "minted-id" }
	return r
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		want   string
		source string
		minted bool
	}{
		{
			name:   "nothing present mints",
			setup:  func(r *http.Request) {},
			want:   "minted-id",
			source: SourceMinted,
			minted: true,
		},
		{
			name:   "cart header",
			setup:  func(r *http.Request) { r.Header.Set(HeaderCartID, "cart_1") },
			want:   "cart_1",
			source: SourceHeader,
		},
		{
			name:   "legacy session header",
			setup:  func(r *http.Request) { r.Header.Set(HeaderSessionID, "sess-2") },
			want:   "sess-2",
			source: SourceSession,
		},
		{
			name: "cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: cookie.CartCookieName, Value: "from-cookie"})
			},
			want:   "from-cookie",
			source: SourceCookie,
		},
		{
			name: "header wins over cookie",
			setup: func(r *http.Request) {
				r.Header.Set(HeaderCartID, "from-header")
				r.AddCookie(&http.Cookie{Name: cookie.CartCookieName, Value: "from-cookie"})
			},
			want:   "from-header",
			source: SourceHeader,
		},
		{
			name: "malformed header falls through to cookie",
			setup: func(r *http.Request) {
				r.Header.Set(HeaderCartID, "bad id<script>")
				r.AddCookie(&http.Cookie{Name: cookie.CartCookieName, Value: "from-cookie"})
			},
			want:   "from-cookie",
			source: SourceCookie,
		},
		{
			name:   "oversized id is ignored",
			setup:  func(r *http.Request) { r.Header.Set(HeaderCartID, strings.Repeat("x", domain.MaxCartIDLength+1)) },
			want:   "minted-id",
			source: SourceMinted,
			minted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			tt.setup(req)

			id := newTestResolver().Resolve(req)
			assert.Equal(t, tt.want, id.CartID)
			assert.Equal(t, tt.source, id.Source)
			assert.Equal(t, tt.minted, id.Minted)
		})
	}
}

func TestResolver_MintsUniqueIDs(t *testing.T) {
	res := NewResolver(cookie.NewConfig("", false))
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	a := res.Resolve(req)
	b := res.Resolve(req)
	assert.True(t, a.Minted)
	assert.NotEqual(t, a.CartID, b.CartID)
	assert.True(t, domain.ValidCartID(a.CartID))
}

func TestResolver_PersistRoundTrips(t *testing.T) {
	res := newTestResolver()
	rec := httptest.NewRecorder()

	res.Persist(rec, Identity{CartID: "cart-77", Minted: true, Source: SourceMinted})

	assert.Equal(t, "cart-77", rec.Header().Get(HeaderCartID))
	assert.Equal(t, "cart-77", rec.Header().Get(HeaderSessionID))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	id := res.Resolve(next)
	assert.Equal(t, "cart-77", id.CartID)
	assert.False(t, id.Minted)
}

func TestResolver_PersistSkipsExplicitIDs(t *testing.T) {
	res := newTestResolver()
	rec := httptest.NewRecorder()

	res.Persist(rec, Identity{CartID: "someone-elses-cart", Source: SourceRequest})

	assert.Empty(t, rec.Header().Get(HeaderCartID))
	assert.Empty(t, rec.Header().Get(HeaderSessionID))
	assert.Empty(t, rec.Result().Cookies())
}
