package handler

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ginclub-dev/ginclub/shared/errors"
	"github.com/ginclub-dev/ginclub/shared/utils"
)

func (h *Handler) GetWidget(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["widget"]

	doc, err := h.widgets.Get(name)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

func (h *Handler) PutWidget(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["widget"]

	// Cap reads slightly above the widget limit so the service can answer
	// with its own 413 instead of a connection reset
	doc, err := io.ReadAll(http.MaxBytesReader(w, r.Body, (64<<10)+1))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, &errors.ErrorWithStatusCode{Message: "Widget document is too large", StatusCode: http.StatusRequestEntityTooLarge})
		return
	}

	if err := h.widgets.Put(name, doc); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type previewNotesRequest struct {
	Markdown string `validate:"required" json:"markdown"`
}

type previewNotesResponse struct {
	HTML string `json:"html"`
}

func (h *Handler) PreviewNotes(w http.ResponseWriter, r *http.Request) {
	var body previewNotesRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	html, err := h.widgets.RenderNotes(body.Markdown)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, previewNotesResponse{HTML: html})
}
