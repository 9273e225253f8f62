package handler

import "net/http"

// Welcome answers the root path so load balancers and the curious get a
// friendly body instead of a 404.
//
// HTTP: GET /
func Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Welcome to the Twitter Clone API"})
}
