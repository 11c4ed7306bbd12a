package middleware

import (
	"encoding/json"
	"net/http"

	internal "github.com/diogopimentels/capicash/internal"
)

// SellerID resolves the acting seller from the X-Seller-ID header and puts
// it on the request context. Identity management proper lives outside this
// service; the header is populated by the session layer in front of it.
func SellerID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sellerID := r.Header.Get("X-Seller-ID")
		if sellerID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "seller identification required",
			})
			return
		}

		ctx := internal.ContextWithSellerID(r.Context(), sellerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
