package handlers

import (
	"net/http"

	"github.com/velmir/quizduel-server/middleware"
	"github.com/velmir/quizduel-server/services"
)

const maxUploadBytes = 5 << 20 // 5MB

type AssetHandler struct {
	assetService services.AssetService
}

func NewAssetHandler(assetService services.AssetService) *AssetHandler {
	return &AssetHandler{assetService: assetService}
}

func (h *AssetHandler) UploadAssetHandler(w http.ResponseWriter, r *http.Request) {
	uploader, ok := middleware.UsernameFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	asset, err := h.assetService.Upload(r.Context(), uploader, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"asset": asset}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AssetHandler) ListAssetsHandler(w http.ResponseWriter, r *http.Request) {
	assets, err := h.assetService.ListRecent(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"assets": assets}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
