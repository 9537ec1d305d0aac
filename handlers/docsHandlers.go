package handlers

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
)

// RouteDoc describes one registered endpoint.
type RouteDoc struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
	Public  bool     `json:"public"`
}

// DocsHandler lists the routes registered on router.
func DocsHandler(router *mux.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		byPath := map[string]*RouteDoc{}
		var order []string
		err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
			tpl, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}
			methods, _ := route.GetMethods()
			doc, ok := byPath[tpl]
			if !ok {
				doc = &RouteDoc{Path: tpl, Public: isPublic(tpl)}
				byPath[tpl] = doc
				order = append(order, tpl)
			}
			doc.Methods = append(doc.Methods, methods...)
			return nil
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		sort.Strings(order)
		docs := make([]RouteDoc, 0, len(order))
		for _, p := range order {
			doc := byPath[p]
			sort.Strings(doc.Methods)
			docs = append(docs, *doc)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"title":  "kboard API",
			"auth":   strings.TrimSpace(bearerPrefix) + " token in the Authorization header",
			"routes": docs,
		})
	}
}
