// Package visibility implements per-user product visibility. A product with
// no assignment edges is visible to everyone, anonymous visitors included. A
// product with one or more edges is visible only to the assigned users and to
// admins, who never need an explicit edge.
package visibility

// Assignment is an edge granting one user sight of one product.
type Assignment struct {
	ProductID int64 `json:"product_id"`
	UserID    int64 `json:"user_id"`
}

// Assignee is a row in the admin assignment editor.
type Assignee struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}

// Viewer identifies who is browsing the storefront.
type Viewer struct {
	UserID        int64
	IsAdmin       bool
	Authenticated bool
}

// Anonymous is the viewer for requests without a session user.
var Anonymous = Viewer{}

// LookupFailurePolicy names the behaviour when the restricted-set lookup
// cannot be completed.
type LookupFailurePolicy int

const (
	// FailOpen shows the full catalog when the restricted set is unknown.
	// Assignments are a merchandising feature, not a security boundary, so
	// availability wins over strict confidentiality.
	FailOpen LookupFailurePolicy = iota
	// FailClosed hides the catalog on lookup failure. Without the aggregate
	// there is no telling which products carry edges, so everything is
	// withheld. Not used by the storefront; kept so the tradeoff is an
	// explicit choice rather than an incidental catch-all.
	FailClosed
)

// Scope is the resolved visibility decision for one viewer.
type Scope struct {
	// All short-circuits every check: admins and fail-open degradation.
	All bool
	// None hides everything: fail-closed degradation.
	None bool
	// Restricted holds ids of products carrying at least one edge.
	Restricted map[int64]struct{}
	// Allowed holds the viewer's own assigned product ids.
	Allowed map[int64]struct{}
}

// Visible reports whether the scope permits seeing the product.
func (s Scope) Visible(productID int64) bool {
	if s.None {
		return false
	}
	if s.All {
		return true
	}
	if _, restricted := s.Restricted[productID]; !restricted {
		return true
	}
	_, allowed := s.Allowed[productID]
	return allowed
}
