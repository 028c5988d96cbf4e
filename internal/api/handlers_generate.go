package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/docgen/internal/generate"
	"github.com/dgallion1/docgen/internal/prompt"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req := prompt.DefaultRequest()
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		jsonError(w, "invalid_request", err.Error(), http.StatusBadRequest)
		return
	}

	sec, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		var ge *generate.Error
		if errors.As(err, &ge) {
			code := http.StatusBadGateway
			if ge.Kind == generate.KindMalformedJSON {
				code = http.StatusUnprocessableEntity
			}
			jsonError(w, string(ge.Kind), ge.Detail, code)
			return
		}
		jsonError(w, string(generate.KindGenerationFailed), err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"essay": sec})
}
