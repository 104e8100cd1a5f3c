package handlers

import (
	"net/http"
	"strings"

	"cobranza/internal/convo"
)

// HandleRenderTemplate renders a named response template with query-string
// arguments, e.g. GET /templates/utter_greet?client_name=Mauricio.
func HandleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// extract template name from URL path
	name := strings.TrimPrefix(r.URL.Path, "/templates/")
	if name == "" {
		http.Error(w, "Template name is required", http.StatusBadRequest)
		return
	}

	args := make(map[string]string)
	for key, values := range r.URL.Query() {
		args[key] = values[0]
	}

	text, ok := convo.RenderTemplate(name, args)
	if !ok {
		http.Error(w, "Unknown template", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"response": name,
		"text":     text,
	})
}
