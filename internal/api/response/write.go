package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response. Score answers change with every submission so
// none of them may be cached.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Stored writes data with 201 Created when the request created a record and
// 200 OK otherwise
func Stored(w http.ResponseWriter, created bool, data any) {
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	JSON(w, status, data)
}
