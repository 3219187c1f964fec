package httpapi

import (
	"net/http"
)

// NewMux returns the base mux with operational routes. Feature modules add their own.
func NewMux(dirs ...string) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, dirs)
	return mux
}
