package api

import (
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/handlers"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/routes"
	"github.com/bhumika-04/EmailRpaSolution-sub001/pkg/storage"
)

// ArtifactHandler serves stored run artifacts by key.
type ArtifactHandler struct {
	store  storage.System
	logger *slog.Logger
}

func NewArtifactHandler(store storage.System, logger *slog.Logger) *ArtifactHandler {
	return &ArtifactHandler{
		store:  store,
		logger: logger.With("handler", "artifacts"),
	}
}

func (h *ArtifactHandler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/artifacts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.Download},
		},
	}
}

// Download writes the artifact at key with a sniffed content type.
func (h *ArtifactHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := storage.ValidateKey(key); err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	data, err := h.store.Get(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", "inline; filename="+strconv.Quote(path.Base(key)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
